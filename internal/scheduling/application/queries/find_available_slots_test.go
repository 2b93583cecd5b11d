package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFindAvailableSlotsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()
	repo := new(mockAppointmentRepo)
	metrics := observability.NewInMemoryMetrics()

	repo.On("FindByDoctor", ctx, doctorID, at(14, 0, 0), at(15, 17, 0)).
		Return([]*domain.Appointment{
			appointment(uuid.New(), doctorID, at(15, 9, 0), 60, domain.StatusScheduled),
			appointment(uuid.New(), doctorID, at(15, 11, 0), 30, domain.StatusCancelled),
		}, nil)

	handler := NewFindAvailableSlotsHandler(repo, DefaultWorkingHours(), metrics)
	result, err := handler.Handle(ctx, FindAvailableSlotsQuery{
		DoctorID:        doctorID,
		Date:            at(15, 13, 45),
		DurationMinutes: 30,
	})

	require.NoError(t, err)
	assert.Equal(t, at(15, 9, 0), result.Window.Start)
	assert.Equal(t, at(15, 17, 0), result.Window.End)
	assert.Len(t, result.Slots, 14)
	assert.Equal(t, at(15, 10, 0), result.Slots[0])
	assert.Contains(t, result.Slots, at(15, 11, 0))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSlotsSearched))
	repo.AssertExpectations(t)
}

func TestFindAvailableSlotsHandler_Overrides(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()
	repo := new(mockAppointmentRepo)
	repo.On("FindByDoctor", ctx, doctorID, mock.Anything, at(15, 10, 0)).
		Return([]*domain.Appointment{}, nil)

	handler := NewFindAvailableSlotsHandler(repo, WorkingHours{}, nil)
	result, err := handler.Handle(ctx, FindAvailableSlotsQuery{
		DoctorID:        doctorID,
		Date:            at(15, 0, 0),
		DurationMinutes: 45,
		Stride:          15 * time.Minute,
		DayStart:        8 * time.Hour,
		DayEnd:          10 * time.Hour,
	})

	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, result.Duration)
	assert.Equal(t, []time.Time{
		at(15, 8, 0), at(15, 8, 15), at(15, 8, 30), at(15, 8, 45), at(15, 9, 0), at(15, 9, 15),
	}, result.Slots)
}

func TestFindAvailableSlotsHandler_DefaultDuration(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppointmentRepo)
	repo.On("FindByDoctor", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.Appointment{}, nil)

	handler := NewFindAvailableSlotsHandler(repo, DefaultWorkingHours(), nil)
	result, err := handler.Handle(ctx, FindAvailableSlotsQuery{DoctorID: uuid.New(), Date: at(15, 0, 0)})

	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, result.Duration)
	assert.Len(t, result.Slots, 16)
}

func TestFindAvailableSlotsHandler_RepoError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppointmentRepo)
	repo.On("FindByDoctor", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	handler := NewFindAvailableSlotsHandler(repo, DefaultWorkingHours(), nil)
	_, err := handler.Handle(ctx, FindAvailableSlotsQuery{DoctorID: uuid.New(), Date: at(15, 0, 0)})

	assert.EqualError(t, err, "db down")
}
