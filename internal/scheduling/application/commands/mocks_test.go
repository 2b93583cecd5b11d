package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/locking"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockAppointmentRepo is a mock implementation of domain.AppointmentRepository.
type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Save(ctx context.Context, a *domain.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
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

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) Pending(ctx context.Context, now time.Time, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, reason, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

func (m *mockOutboxRepo) Counts(ctx context.Context) (outbox.Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(outbox.Counts), args.Error(1)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// mockLocker is a mock implementation of locking.Locker.
type mockLocker struct {
	mock.Mock
	released int
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (locking.ReleaseFunc, error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, nil
}

// routingKeys matches an outbox batch by its routing keys.
func routingKeys(keys ...string) any {
	return mock.MatchedBy(func(msgs []*outbox.Message) bool {
		if len(msgs) != len(keys) {
			return false
		}
		for i, m := range msgs {
			if m.RoutingKey != keys[i] {
				return false
			}
		}
		return true
	})
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 15, hour, minute, 0, 0, time.UTC)
}

func existingAppointment(doctorID uuid.UUID, start time.Time, minutes int, status domain.Status) *domain.Appointment {
	now := time.Now()
	return domain.RehydrateAppointment(uuid.New(), uuid.New(), doctorID, start, minutes, status, "", 1, now, now)
}

// expectCommit wires a unit of work that hands back ctx and commits.
func expectCommit(uow *mockUnitOfWork, ctx context.Context) {
	uow.On("Begin", ctx).Return(ctx, nil)
	uow.On("Commit", ctx).Return(nil)
}

// expectRollback wires a unit of work that hands back ctx and rolls back.
func expectRollback(uow *mockUnitOfWork, ctx context.Context) {
	uow.On("Begin", ctx).Return(ctx, nil)
	uow.On("Rollback", ctx).Return(nil)
}
