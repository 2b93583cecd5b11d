package queries

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

// DetectConflictsQuery scans [From, To) for double bookings. A nil DoctorID
// checks every doctor separately.
type DetectConflictsQuery struct {
	DoctorID uuid.UUID
	From     time.Time
	To       time.Time
}

// DetectConflictsHandler handles DetectConflictsQuery.
type DetectConflictsHandler struct {
	repo    domain.AppointmentRepository
	metrics observability.Metrics
}

// NewDetectConflictsHandler creates a new DetectConflictsHandler.
func NewDetectConflictsHandler(repo domain.AppointmentRepository, metrics observability.Metrics) *DetectConflictsHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &DetectConflictsHandler{repo: repo, metrics: metrics}
}

// Handle returns conflicting pairs ordered by the earlier start. Two
// doctors seeing patients at the same time is not a conflict.
func (h *DetectConflictsHandler) Handle(ctx context.Context, query DetectConflictsQuery) ([]domain.ConflictPair, error) {
	var (
		appointments []*domain.Appointment
		err          error
	)
	if query.DoctorID != uuid.Nil {
		appointments, err = h.repo.FindByDoctor(ctx, query.DoctorID, query.From, query.To)
	} else {
		appointments, err = h.repo.FindInRange(ctx, query.From, query.To)
	}
	if err != nil {
		return nil, err
	}

	byDoctor := make(map[uuid.UUID][]domain.Occupancy)
	var order []uuid.UUID
	for _, a := range appointments {
		if _, ok := byDoctor[a.DoctorID()]; !ok {
			order = append(order, a.DoctorID())
		}
		byDoctor[a.DoctorID()] = append(byDoctor[a.DoctorID()], a.Occupancy())
	}

	var pairs []domain.ConflictPair
	for _, doctorID := range order {
		pairs = append(pairs, domain.DetectConflicts(byDoctor[doctorID])...)
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Earlier.Start.Before(pairs[j].Earlier.Start)
	})

	h.metrics.Counter(observability.MetricConflictsDetected, int64(len(pairs)))
	return pairs, nil
}
