package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockAppointmentRepo is a mock implementation of domain.AppointmentRepository.
type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Save(ctx context.Context, a *domain.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*domain.Appointment, error) {
	args := m.Called(ctx, doctorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*domain.Appointment, error) {
	args := m.Called(ctx, patientID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindInRange(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

// 2024-01-15 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func appointment(patientID, doctorID uuid.UUID, start time.Time, minutes int, status domain.Status) *domain.Appointment {
	now := time.Now()
	return domain.RehydrateAppointment(uuid.New(), patientID, doctorID, start, minutes, status, "", 1, now, now)
}
