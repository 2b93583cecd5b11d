package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned when a concurrent writer saved first.
var ErrVersionConflict = errors.New("appointment was modified concurrently")

// AppointmentRepository persists appointments. Range lookups use the
// half-open interval [from, to) on the appointment start.
type AppointmentRepository interface {
	// Save inserts or updates an appointment.
	Save(ctx context.Context, appointment *Appointment) error

	// FindByID returns nil, nil when no appointment matches.
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindByDoctor returns a doctor's appointments ordered by start.
	FindByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)

	// FindByPatient returns a patient's appointments ordered by start.
	FindByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*Appointment, error)

	// FindInRange returns every appointment ordered by start.
	FindInRange(ctx context.Context, from, to time.Time) ([]*Appointment, error)
}
