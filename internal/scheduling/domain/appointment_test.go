package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppointment(t *testing.T) {
	patientID, doctorID := uuid.New(), uuid.New()

	a, err := domain.NewAppointment(patientID, doctorID, at(9, 0).Add(17*time.Second), 30, "follow-up")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID())
	assert.Equal(t, patientID, a.PatientID())
	assert.Equal(t, doctorID, a.DoctorID())
	assert.Equal(t, at(9, 0), a.Start(), "start is kept at minute precision")
	assert.Equal(t, at(9, 30), a.End())
	assert.Equal(t, domain.StatusScheduled, a.Status())
	assert.Equal(t, "follow-up", a.Notes())

	events := a.DomainEvents()
	require.Len(t, events, 1)
	booked, ok := events[0].(*domain.AppointmentBooked)
	require.True(t, ok)
	assert.Equal(t, domain.RoutingKeyAppointmentBooked, booked.RoutingKey())
	assert.Equal(t, a.ID(), booked.AggregateID())
}

func TestNewAppointment_InvalidDuration(t *testing.T) {
	_, err := domain.NewAppointment(uuid.New(), uuid.New(), at(9, 0), 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestAppointment_Reschedule(t *testing.T) {
	a, err := domain.NewAppointment(uuid.New(), uuid.New(), at(9, 0), 30, "")
	require.NoError(t, err)
	a.ClearDomainEvents()

	require.NoError(t, a.Reschedule(at(14, 0)))

	assert.Equal(t, at(14, 0), a.Start())
	assert.Equal(t, domain.StatusRescheduled, a.Status())
	events := a.DomainEvents()
	require.Len(t, events, 1)
	moved, ok := events[0].(*domain.AppointmentRescheduled)
	require.True(t, ok)
	assert.Equal(t, at(9, 0), moved.OldStart)
	assert.Equal(t, at(14, 0), moved.NewStart)
}

func TestAppointment_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		apply      func(*domain.Appointment) error
		wantStatus domain.Status
		wantKey    string
	}{
		{"cancel", (*domain.Appointment).Cancel, domain.StatusCancelled, domain.RoutingKeyAppointmentCancelled},
		{"complete", (*domain.Appointment).Complete, domain.StatusCompleted, domain.RoutingKeyAppointmentCompleted},
		{"no-show", (*domain.Appointment).MarkNoShow, domain.StatusNoShow, domain.RoutingKeyAppointmentNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := domain.NewAppointment(uuid.New(), uuid.New(), at(9, 0), 30, "")
			require.NoError(t, err)
			a.ClearDomainEvents()

			require.NoError(t, tt.apply(a))
			assert.Equal(t, tt.wantStatus, a.Status())
			require.Len(t, a.DomainEvents(), 1)
			assert.Equal(t, tt.wantKey, a.DomainEvents()[0].RoutingKey())

			assert.ErrorIs(t, tt.apply(a), domain.ErrAppointmentClosed)
			assert.ErrorIs(t, a.Reschedule(at(15, 0)), domain.ErrAppointmentClosed)
		})
	}
}

func TestRehydrateAppointment(t *testing.T) {
	id := uuid.New()
	created := at(8, 0)

	a := domain.RehydrateAppointment(id, uuid.New(), uuid.New(), at(9, 0), 45, domain.StatusCompleted, "", 3, created, created)

	assert.Equal(t, id, a.ID())
	assert.Equal(t, 3, a.Version())
	assert.Empty(t, a.DomainEvents())
	assert.Equal(t, domain.Occupancy{
		ID:              id,
		DoctorID:        a.DoctorID(),
		Start:           at(9, 0),
		DurationMinutes: 45,
		Status:          domain.StatusCompleted,
	}, a.Occupancy())
	assert.Len(t, domain.Occupancies([]*domain.Appointment{a}), 1)
}
