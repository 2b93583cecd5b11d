// Package subscribers reacts to scheduling events on behalf of insights.
package subscribers

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/eventbus"
)

// ForecastInvalidator drops cached forecasts whenever an appointment
// changes, so the next forecast sees the new history.
type ForecastInvalidator struct {
	cache  domain.ForecastCache
	logger *slog.Logger
}

// NewForecastInvalidator creates a new ForecastInvalidator.
func NewForecastInvalidator(cache domain.ForecastCache, logger *slog.Logger) *ForecastInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the routing key patterns this subscriber handles.
func (s *ForecastInvalidator) EventTypes() []string {
	return []string{"scheduling.appointment.#"}
}

// Register subscribes the invalidator on bus.
func (s *ForecastInvalidator) Register(bus *eventbus.InProcessBus) {
	for _, pattern := range s.EventTypes() {
		bus.Subscribe(pattern, s.Handle)
	}
}

// Handle processes an event.
func (s *ForecastInvalidator) Handle(ctx context.Context, event eventbus.Envelope) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "forecast cache invalidation failed",
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return err
	}
	s.logger.DebugContext(ctx, "forecast cache invalidated", "routing_key", event.RoutingKey)
	return nil
}
