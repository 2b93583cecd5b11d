// Package eventbus delivers serialized domain events to subscribers, either
// in process or through a RabbitMQ topic exchange.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrBrokerUnavailable is returned while the broker is known to be down.
var ErrBrokerUnavailable = errors.New("event broker unavailable")

// Publisher sends a JSON event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Envelope is the part of every published event that subscribers rely on.
// Body keeps the full JSON for event-specific fields.
type Envelope struct {
	EventID       uuid.UUID `json:"event_id"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	AggregateType string    `json:"aggregate_type"`
	RoutingKey    string    `json:"routing_key"`
	OccurredAt    time.Time `json:"occurred_at"`
	Metadata      struct {
		CorrelationID string    `json:"correlation_id,omitempty"`
		ActorID       uuid.UUID `json:"actor_id,omitempty"`
	} `json:"metadata"`
	Body json.RawMessage `json:"-"`
}

// DecodeEnvelope parses payload, falling back to routingKey when the
// payload carries none.
func DecodeEnvelope(routingKey string, payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, err
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}
	env.Body = json.RawMessage(payload)
	return env, nil
}

// NoopPublisher drops every event.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("event dropped", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
