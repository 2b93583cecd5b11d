package eventbus

import (
	"context"
	"errors"
	"log/slog"
)

// TeePublisher sends every event to the broker first and, once the broker
// accepted it, to the local in-process subscribers. A broker failure is
// returned so the outbox retries; local failures are only logged because the
// broker already holds the event.
type TeePublisher struct {
	broker Publisher
	local  Publisher
	logger *slog.Logger
}

func NewTeePublisher(broker, local Publisher, logger *slog.Logger) *TeePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeePublisher{broker: broker, local: local, logger: logger}
}

func (p *TeePublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	if err := p.broker.Publish(ctx, routingKey, payload); err != nil {
		return err
	}
	if err := p.local.Publish(ctx, routingKey, payload); err != nil {
		p.logger.Warn("local event delivery failed", "routing_key", routingKey, "error", err)
	}
	return nil
}

func (p *TeePublisher) Close() error {
	return errors.Join(p.broker.Close(), p.local.Close())
}
