package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

// FindAvailableSlotsQuery asks for a doctor's free slots on one day. Zero
// fields fall back to the configured working hours.
type FindAvailableSlotsQuery struct {
	DoctorID        uuid.UUID
	Date            time.Time
	DurationMinutes int
	Stride          time.Duration
	DayStart        time.Duration
	DayEnd          time.Duration
}

// AvailableSlots lists free slot starts inside Window.
type AvailableSlots struct {
	Window   domain.TimeRange
	Duration time.Duration
	Slots    []time.Time
}

// FindAvailableSlotsHandler handles FindAvailableSlotsQuery.
type FindAvailableSlotsHandler struct {
	repo    domain.AppointmentRepository
	hours   WorkingHours
	metrics observability.Metrics
}

// NewFindAvailableSlotsHandler creates a new FindAvailableSlotsHandler.
func NewFindAvailableSlotsHandler(repo domain.AppointmentRepository, hours WorkingHours, metrics observability.Metrics) *FindAvailableSlotsHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &FindAvailableSlotsHandler{repo: repo, hours: hours.withDefaults(), metrics: metrics}
}

// Handle executes the FindAvailableSlotsQuery.
func (h *FindAvailableSlotsHandler) Handle(ctx context.Context, query FindAvailableSlotsQuery) (*AvailableSlots, error) {
	hours := h.hours
	if query.DayStart != 0 || query.DayEnd != 0 {
		hours.Start, hours.End = query.DayStart, query.DayEnd
	}
	if query.Stride > 0 {
		hours.Stride = query.Stride
	}
	duration := hours.DefaultDuration
	if query.DurationMinutes != 0 {
		duration = time.Duration(query.DurationMinutes) * time.Minute
	}
	window := hours.Window(query.Date)

	from, _ := dayRange(query.Date)
	existing, err := h.repo.FindByDoctor(ctx, query.DoctorID, from.AddDate(0, 0, -1), window.End)
	if err != nil {
		return nil, err
	}

	slots := domain.FindAvailableSlots(domain.Occupancies(existing), window, duration, hours.Stride)
	h.metrics.Counter(observability.MetricSlotsSearched, 1)

	return &AvailableSlots{Window: window, Duration: duration, Slots: slots}, nil
}
