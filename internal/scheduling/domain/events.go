package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/meditrack/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Appointment"

	RoutingKeyAppointmentBooked      = "scheduling.appointment.booked"
	RoutingKeyAppointmentRescheduled = "scheduling.appointment.rescheduled"
	RoutingKeyAppointmentCancelled   = "scheduling.appointment.cancelled"
	RoutingKeyAppointmentCompleted   = "scheduling.appointment.completed"
	RoutingKeyAppointmentNoShow      = "scheduling.appointment.no_show"
)

// AppointmentBooked is emitted when a new appointment is created.
type AppointmentBooked struct {
	sharedDomain.BaseEvent
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

func NewAppointmentBooked(a *Appointment) *AppointmentBooked {
	return &AppointmentBooked{
		BaseEvent:       sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyAppointmentBooked),
		PatientID:       a.patientID,
		DoctorID:        a.doctorID,
		Start:           a.start,
		DurationMinutes: a.durationMinutes,
	}
}

// AppointmentRescheduled is emitted when an appointment moves.
type AppointmentRescheduled struct {
	sharedDomain.BaseEvent
	DoctorID uuid.UUID `json:"doctor_id"`
	OldStart time.Time `json:"old_start"`
	NewStart time.Time `json:"new_start"`
}

func NewAppointmentRescheduled(a *Appointment, oldStart time.Time) *AppointmentRescheduled {
	return &AppointmentRescheduled{
		BaseEvent: sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyAppointmentRescheduled),
		DoctorID:  a.doctorID,
		OldStart:  oldStart,
		NewStart:  a.start,
	}
}

// AppointmentStatusChanged covers cancel, complete and no-show; the
// routing key tells them apart.
type AppointmentStatusChanged struct {
	sharedDomain.BaseEvent
	DoctorID uuid.UUID `json:"doctor_id"`
	Status   Status    `json:"status"`
}

func NewAppointmentStatusChanged(a *Appointment, routingKey string) *AppointmentStatusChanged {
	return &AppointmentStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(a.ID(), AggregateType, routingKey),
		DoctorID:  a.doctorID,
		Status:    a.status,
	}
}
