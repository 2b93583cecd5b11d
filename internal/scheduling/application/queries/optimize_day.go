package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
)

// OptimizeDayQuery reviews one doctor's day for idle gaps.
type OptimizeDayQuery struct {
	DoctorID  uuid.UUID
	Date      time.Time
	Threshold time.Duration
}

// OptimizeDayHandler handles OptimizeDayQuery.
type OptimizeDayHandler struct {
	repo             domain.AppointmentRepository
	defaultThreshold time.Duration
}

// NewOptimizeDayHandler creates a new OptimizeDayHandler.
func NewOptimizeDayHandler(repo domain.AppointmentRepository, defaultThreshold time.Duration) *OptimizeDayHandler {
	return &OptimizeDayHandler{repo: repo, defaultThreshold: defaultThreshold}
}

// Handle returns the day's active appointments in order, with gap notes.
func (h *OptimizeDayHandler) Handle(ctx context.Context, query OptimizeDayQuery) ([]domain.AnnotatedOccupancy, error) {
	from, to := dayRange(query.Date)
	appointments, err := h.repo.FindByDoctor(ctx, query.DoctorID, from, to)
	if err != nil {
		return nil, err
	}

	threshold := query.Threshold
	if threshold <= 0 {
		threshold = h.defaultThreshold
	}
	return domain.OptimizeDay(domain.Occupancies(appointments), query.Date, threshold), nil
}
