package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// AppointmentEventPattern matches every appointment lifecycle event.
const AppointmentEventPattern = "scheduling.appointment.*"

// AppointmentLogger writes one structured log line per appointment event.
// It is the local-mode stand-in for downstream consumers of the broker.
type AppointmentLogger struct {
	logger *slog.Logger
}

// NewAppointmentLogger creates a new AppointmentLogger.
func NewAppointmentLogger(logger *slog.Logger) *AppointmentLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentLogger{logger: logger}
}

// Register subscribes the logger on bus.
func (s *AppointmentLogger) Register(bus *eventbus.InProcessBus) {
	bus.Subscribe(AppointmentEventPattern, s.Handle)
}

// appointmentPayload holds the fields shared by the appointment events.
type appointmentPayload struct {
	DoctorID uuid.UUID     `json:"doctor_id"`
	Start    time.Time     `json:"start"`
	NewStart time.Time     `json:"new_start"`
	Status   domain.Status `json:"status"`
}

// Handle processes an event.
func (s *AppointmentLogger) Handle(ctx context.Context, event eventbus.Envelope) error {
	var payload appointmentPayload
	if err := json.Unmarshal(event.Body, &payload); err != nil {
		s.logger.WarnContext(ctx, "unreadable appointment event",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}

	attrs := []any{
		"routing_key", event.RoutingKey,
		"appointment_id", event.AggregateID,
		"doctor_id", payload.DoctorID,
	}
	switch event.RoutingKey {
	case domain.RoutingKeyAppointmentBooked:
		attrs = append(attrs, "start", payload.Start)
	case domain.RoutingKeyAppointmentRescheduled:
		attrs = append(attrs, "new_start", payload.NewStart)
	default:
		attrs = append(attrs, "status", payload.Status)
	}
	if event.Metadata.ActorID != uuid.Nil {
		attrs = append(attrs, "actor_id", event.Metadata.ActorID)
	}

	s.logger.InfoContext(ctx, "appointment event", attrs...)
	return nil
}
