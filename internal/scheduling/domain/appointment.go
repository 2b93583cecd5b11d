package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/meditrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidDuration     = errors.New("appointment duration must be positive")
	ErrAppointmentClosed   = errors.New("appointment is already closed")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrTimeUnavailable     = errors.New("the selected time conflicts with an existing appointment")
	ErrUnknownStatus       = errors.New("unknown appointment status")
	ErrUnknownWeekday      = errors.New("unknown weekday")
	ErrInvalidHourRange    = errors.New("invalid hour range, use START-END")
)

// Appointment is a booked visit between a patient and a doctor.
type Appointment struct {
	sharedDomain.BaseAggregateRoot
	patientID       uuid.UUID
	doctorID        uuid.UUID
	start           time.Time
	durationMinutes int
	status          Status
	notes           string
}

// NewAppointment books a visit in the scheduled state.
func NewAppointment(patientID, doctorID uuid.UUID, start time.Time, durationMinutes int, notes string) (*Appointment, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	a := &Appointment{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		patientID:         patientID,
		doctorID:          doctorID,
		start:             start.Truncate(time.Minute),
		durationMinutes:   durationMinutes,
		status:            StatusScheduled,
		notes:             notes,
	}
	a.AddDomainEvent(NewAppointmentBooked(a))
	return a, nil
}

func (a *Appointment) PatientID() uuid.UUID { return a.patientID }
func (a *Appointment) DoctorID() uuid.UUID  { return a.doctorID }
func (a *Appointment) Start() time.Time     { return a.start }
func (a *Appointment) DurationMinutes() int { return a.durationMinutes }
func (a *Appointment) Status() Status       { return a.status }
func (a *Appointment) Notes() string        { return a.notes }
func (a *Appointment) End() time.Time       { return a.Occupancy().End() }

// Occupancy projects the appointment onto the scheduling core.
func (a *Appointment) Occupancy() Occupancy {
	return Occupancy{
		ID:              a.ID(),
		DoctorID:        a.doctorID,
		Start:           a.start,
		DurationMinutes: a.durationMinutes,
		Status:          a.status,
	}
}

// Reschedule moves the appointment and marks it rescheduled.
func (a *Appointment) Reschedule(newStart time.Time) error {
	if a.status.IsClosed() {
		return ErrAppointmentClosed
	}
	oldStart := a.start
	a.start = newStart.Truncate(time.Minute)
	a.status = StatusRescheduled
	a.Touch()
	a.AddDomainEvent(NewAppointmentRescheduled(a, oldStart))
	return nil
}

// Cancel frees the appointment's time.
func (a *Appointment) Cancel() error {
	if a.status.IsClosed() {
		return ErrAppointmentClosed
	}
	a.status = StatusCancelled
	a.Touch()
	a.AddDomainEvent(NewAppointmentStatusChanged(a, RoutingKeyAppointmentCancelled))
	return nil
}

// Complete records that the visit took place.
func (a *Appointment) Complete() error {
	if a.status.IsClosed() {
		return ErrAppointmentClosed
	}
	a.status = StatusCompleted
	a.Touch()
	a.AddDomainEvent(NewAppointmentStatusChanged(a, RoutingKeyAppointmentCompleted))
	return nil
}

// MarkNoShow records that the patient did not attend.
func (a *Appointment) MarkNoShow() error {
	if a.status.IsClosed() {
		return ErrAppointmentClosed
	}
	a.status = StatusNoShow
	a.Touch()
	a.AddDomainEvent(NewAppointmentStatusChanged(a, RoutingKeyAppointmentNoShow))
	return nil
}

// RehydrateAppointment rebuilds an appointment from storage without events.
func RehydrateAppointment(
	id, patientID, doctorID uuid.UUID,
	start time.Time,
	durationMinutes int,
	status Status,
	notes string,
	version int,
	createdAt, updatedAt time.Time,
) *Appointment {
	return &Appointment{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
			version,
		),
		patientID:       patientID,
		doctorID:        doctorID,
		start:           start,
		durationMinutes: durationMinutes,
		status:          status,
		notes:           notes,
	}
}

// Occupancies projects a list of appointments onto the scheduling core.
func Occupancies(appointments []*Appointment) []Occupancy {
	out := make([]Occupancy, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, a.Occupancy())
	}
	return out
}
