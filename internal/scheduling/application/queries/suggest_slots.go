package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

// SuggestSlotsQuery looks for free slots over Days days starting at From's
// calendar day and ranks them by patient preference.
type SuggestSlotsQuery struct {
	DoctorID        uuid.UUID
	From            time.Time
	Days            int
	DurationMinutes int
	Preferences     domain.Preferences
	Limit           int
}

// SuggestSlotsResult holds the ranked suggestions. Matched is false when no
// slot fit the preferences and the unfiltered list was returned.
type SuggestSlotsResult struct {
	Slots   []time.Time
	Matched bool
}

// SuggestSlotsHandler handles SuggestSlotsQuery.
type SuggestSlotsHandler struct {
	repo    domain.AppointmentRepository
	hours   WorkingHours
	metrics observability.Metrics
}

// NewSuggestSlotsHandler creates a new SuggestSlotsHandler.
func NewSuggestSlotsHandler(repo domain.AppointmentRepository, hours WorkingHours, metrics observability.Metrics) *SuggestSlotsHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &SuggestSlotsHandler{repo: repo, hours: hours.withDefaults(), metrics: metrics}
}

// Handle executes the SuggestSlotsQuery.
func (h *SuggestSlotsHandler) Handle(ctx context.Context, query SuggestSlotsQuery) (*SuggestSlotsResult, error) {
	days := query.Days
	if days <= 0 {
		days = 7
	}
	duration := h.hours.DefaultDuration
	if query.DurationMinutes != 0 {
		duration = time.Duration(query.DurationMinutes) * time.Minute
	}

	first := domain.StartOfDay(query.From)
	existing, err := h.repo.FindByDoctor(ctx, query.DoctorID, first.AddDate(0, 0, -1), first.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	occupied := domain.Occupancies(existing)

	var candidates []time.Time
	for i := 0; i < days; i++ {
		window := h.hours.Window(first.AddDate(0, 0, i))
		candidates = append(candidates, domain.FindAvailableSlots(occupied, window, duration, h.hours.Stride)...)
	}
	h.metrics.Counter(observability.MetricSlotsSearched, int64(days))

	ranked := domain.RankSlots(candidates, query.Preferences)
	matched := len(ranked) == 0 || query.Preferences.IsEmpty() || query.Preferences.Matches(ranked[0])
	if query.Limit > 0 && len(ranked) > query.Limit {
		ranked = ranked[:query.Limit]
	}
	return &SuggestSlotsResult{Slots: ranked, Matched: matched}, nil
}
