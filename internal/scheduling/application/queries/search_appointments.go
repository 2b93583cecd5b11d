package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
)

// SearchAppointmentsQuery lists appointments between two calendar dates,
// both inclusive. DoctorID, PatientID and Status filter when set.
type SearchAppointmentsQuery struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	From      time.Time
	To        time.Time
	Status    domain.Status
}

// SearchAppointmentsHandler handles SearchAppointmentsQuery.
type SearchAppointmentsHandler struct {
	repo domain.AppointmentRepository
}

// NewSearchAppointmentsHandler creates a new SearchAppointmentsHandler.
func NewSearchAppointmentsHandler(repo domain.AppointmentRepository) *SearchAppointmentsHandler {
	return &SearchAppointmentsHandler{repo: repo}
}

// Handle returns matching appointments ordered by start.
func (h *SearchAppointmentsHandler) Handle(ctx context.Context, query SearchAppointmentsQuery) ([]AppointmentDTO, error) {
	from := domain.StartOfDay(query.From)
	to := domain.StartOfDay(query.To).AddDate(0, 0, 1)
	if !from.Before(to) {
		return []AppointmentDTO{}, nil
	}

	var (
		appointments []*domain.Appointment
		err          error
	)
	switch {
	case query.DoctorID != uuid.Nil:
		appointments, err = h.repo.FindByDoctor(ctx, query.DoctorID, from, to)
	case query.PatientID != uuid.Nil:
		appointments, err = h.repo.FindByPatient(ctx, query.PatientID, from, to)
	default:
		appointments, err = h.repo.FindInRange(ctx, from, to)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]AppointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		if query.PatientID != uuid.Nil && a.PatientID() != query.PatientID {
			continue
		}
		if query.Status != "" && a.Status() != query.Status {
			continue
		}
		dtos = append(dtos, toAppointmentDTO(a))
	}
	return dtos, nil
}
