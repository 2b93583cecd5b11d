package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	scheduling "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
)

// AppointmentPatternsQuery analyzes appointments between From and To, both
// inclusive dates. Weekdays and hours are counted in From's location.
type AppointmentPatternsQuery struct {
	From time.Time
	To   time.Time
}

// AppointmentPatternsHandler handles AppointmentPatternsQuery.
type AppointmentPatternsHandler struct {
	repo scheduling.AppointmentRepository
}

// NewAppointmentPatternsHandler creates a new AppointmentPatternsHandler.
func NewAppointmentPatternsHandler(repo scheduling.AppointmentRepository) *AppointmentPatternsHandler {
	return &AppointmentPatternsHandler{repo: repo}
}

// Handle executes the AppointmentPatternsQuery.
func (h *AppointmentPatternsHandler) Handle(ctx context.Context, query AppointmentPatternsQuery) (*domain.Patterns, error) {
	from := scheduling.StartOfDay(query.From)
	to := scheduling.StartOfDay(query.To).AddDate(0, 0, 1)

	var appointments []*scheduling.Appointment
	if from.Before(to) {
		var err error
		appointments, err = h.repo.FindInRange(ctx, from, to)
		if err != nil {
			return nil, err
		}
	}

	patterns := domain.AnalyzePatterns(scheduling.Occupancies(appointments), query.From.Location())
	return &patterns, nil
}
