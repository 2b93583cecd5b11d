package queries

import (
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
)

// AppointmentDTO is a data transfer object for appointments.
type AppointmentDTO struct {
	ID              uuid.UUID     `json:"id"`
	PatientID       uuid.UUID     `json:"patient_id"`
	DoctorID        uuid.UUID     `json:"doctor_id"`
	Start           time.Time     `json:"start"`
	End             time.Time     `json:"end"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          domain.Status `json:"status"`
	Notes           string        `json:"notes,omitempty"`
}

func toAppointmentDTO(a *domain.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:              a.ID(),
		PatientID:       a.PatientID(),
		DoctorID:        a.DoctorID(),
		Start:           a.Start(),
		End:             a.End(),
		DurationMinutes: a.DurationMinutes(),
		Status:          a.Status(),
		Notes:           a.Notes(),
	}
}
