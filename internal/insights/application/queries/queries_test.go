package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	scheduling "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Save(ctx context.Context, a *scheduling.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduling.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*scheduling.Appointment, error) {
	args := m.Called(ctx, doctorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*scheduling.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*scheduling.Appointment, error) {
	args := m.Called(ctx, patientID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*scheduling.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindInRange(ctx context.Context, from, to time.Time) ([]*scheduling.Appointment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*scheduling.Appointment), args.Error(1)
}

// mapCache is an in-memory domain.ForecastCache.
type mapCache struct {
	entries map[string]domain.Forecast
	getErr  error
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]domain.Forecast)}
}

func (c *mapCache) Get(_ context.Context, key domain.ForecastKey) (*domain.Forecast, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	f, ok := c.entries[key.String()]
	if !ok {
		return nil, false, nil
	}
	return &f, true, nil
}

func (c *mapCache) Set(_ context.Context, key domain.ForecastKey, f domain.Forecast) error {
	c.sets++
	c.entries[key.String()] = f
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.entries = make(map[string]domain.Forecast)
	return nil
}

func day(d, hour int) time.Time {
	return time.Date(2024, 1, d, hour, 0, 0, 0, time.UTC)
}

func appointment(doctorID uuid.UUID, start time.Time, status scheduling.Status) *scheduling.Appointment {
	now := time.Now()
	return scheduling.RehydrateAppointment(uuid.New(), uuid.New(), doctorID, start, 30, status, "", 1, now, now)
}

// Mondays 2024-01-01 (two visits) and 2024-01-08 (one visit).
func mondayHistory(doctorID uuid.UUID) []*scheduling.Appointment {
	return []*scheduling.Appointment{
		appointment(doctorID, day(1, 9), scheduling.StatusCompleted),
		appointment(doctorID, day(1, 10), scheduling.StatusCompleted),
		appointment(doctorID, day(3, 10), scheduling.StatusCancelled),
		appointment(doctorID, day(8, 9), scheduling.StatusCompleted),
	}
}

func TestForecastDemandHandler_Modes(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()

	tests := []struct {
		name       string
		mode       domain.ForecastMode
		wantMonday float64
	}{
		{name: "default cumulative", wantMonday: 1.3},
		{name: "daily mean", mode: domain.ForecastModeDailyMean, wantMonday: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockAppointmentRepo)
			repo.On("FindByDoctor", ctx, doctorID, day(1, 0), day(14, 0)).Return(mondayHistory(doctorID), nil)

			handler := NewForecastDemandHandler(repo, nil, 0, "", nil, nil)
			forecast, err := handler.Handle(ctx, ForecastDemandQuery{
				DoctorID:    doctorID,
				From:        day(1, 0),
				To:          day(13, 0),
				HorizonDays: 7,
				Mode:        tt.mode,
				Today:       day(14, 12),
			})

			require.NoError(t, err)
			require.Len(t, forecast.Predicted, 7)
			assert.Equal(t, day(15, 0), forecast.Predicted[0].Date)
			assert.Equal(t, tt.wantMonday, forecast.Predicted[0].Expected)
			assert.Equal(t, 0.0, forecast.Predicted[1].Expected)
			assert.Len(t, forecast.WeekdayAverages, 7)
			repo.AssertExpectations(t)
		})
	}
}

func TestForecastDemandHandler_DefaultsAndWholePractice(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppointmentRepo)
	repo.On("FindInRange", ctx, day(1, 0), day(14, 0)).Return([]*scheduling.Appointment{}, nil)

	handler := NewForecastDemandHandler(repo, nil, 10, domain.ForecastModeDailyMean, nil, nil)
	handler.now = func() time.Time { return day(20, 8) }

	forecast, err := handler.Handle(ctx, ForecastDemandQuery{From: day(1, 0), To: day(13, 0)})

	require.NoError(t, err)
	assert.Equal(t, domain.ForecastModeDailyMean, forecast.Mode)
	require.Len(t, forecast.Predicted, 10)
	assert.Equal(t, day(21, 0), forecast.Predicted[0].Date)
	for _, p := range forecast.Predicted {
		assert.Zero(t, p.Expected)
	}
}

func TestForecastDemandHandler_Cache(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()
	repo := new(mockAppointmentRepo)
	repo.On("FindByDoctor", ctx, doctorID, day(1, 0), day(14, 0)).Return(mondayHistory(doctorID), nil).Once()

	cache := newMapCache()
	metrics := observability.NewInMemoryMetrics()
	handler := NewForecastDemandHandler(repo, cache, 7, "", nil, metrics)
	query := ForecastDemandQuery{DoctorID: doctorID, From: day(1, 0), To: day(13, 0), Today: day(14, 0)}

	first, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	second, err := handler.Handle(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricForecastCacheMiss))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricForecastCacheHit))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricOperationTotal, observability.T(observability.OperationKey, "forecast_demand")))
	repo.AssertExpectations(t)
}

func TestForecastDemandHandler_CacheErrorFallsThrough(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppointmentRepo)
	repo.On("FindInRange", ctx, day(1, 0), day(2, 0)).Return([]*scheduling.Appointment{}, nil)

	cache := newMapCache()
	cache.getErr = errors.New("redis down")
	handler := NewForecastDemandHandler(repo, cache, 7, "", nil, nil)

	forecast, err := handler.Handle(ctx, ForecastDemandQuery{From: day(1, 0), To: day(1, 0), Today: day(14, 0)})

	require.NoError(t, err)
	assert.Len(t, forecast.Predicted, 7)
}

func TestForecastDemandHandler_RepoError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppointmentRepo)
	repo.On("FindInRange", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	handler := NewForecastDemandHandler(repo, nil, 7, "", nil, nil)
	_, err := handler.Handle(ctx, ForecastDemandQuery{From: day(1, 0), To: day(2, 0), Today: day(14, 0)})

	assert.EqualError(t, err, "db down")
}

func TestForecastKey_String(t *testing.T) {
	doctorID := uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")
	key := domain.ForecastKey{
		Mode:        domain.ForecastModeCumulative,
		From:        day(1, 0),
		To:          day(13, 0),
		Today:       day(14, 0),
		HorizonDays: 30,
	}
	assert.Equal(t, "cumulative:all:2024-01-01:2024-01-13:2024-01-14:30", key.String())

	key.DoctorID = doctorID
	assert.Equal(t, "cumulative:6f1c2d3e-0000-4000-8000-000000000001:2024-01-01:2024-01-13:2024-01-14:30", key.String())
}

func TestAppointmentPatternsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	repo := new(mockAppointmentRepo)
	repo.On("FindInRange", ctx, day(1, 0), day(8, 0)).Return([]*scheduling.Appointment{
		appointment(alice, day(1, 9), scheduling.StatusCompleted),
		appointment(alice, day(2, 9), scheduling.StatusCancelled),
		appointment(bob, day(2, 14), scheduling.StatusNoShow),
		appointment(alice, day(3, 9), scheduling.StatusScheduled),
	}, nil)

	patterns, err := NewAppointmentPatternsHandler(repo).Handle(ctx, AppointmentPatternsQuery{From: day(1, 0), To: day(7, 0)})

	require.NoError(t, err)
	assert.Equal(t, 4, patterns.Total)
	assert.Equal(t, 2, patterns.ByWeekday[time.Tuesday])
	assert.Equal(t, 0, patterns.ByWeekday[time.Sunday])
	assert.Equal(t, 3, patterns.ByHour[9])
	assert.Equal(t, 25.0, patterns.CancellationRate)
	assert.Equal(t, 25.0, patterns.NoShowRate)
	require.NotEmpty(t, patterns.TopDoctors)
	assert.Equal(t, alice, patterns.TopDoctors[0].DoctorID)
}

func TestAppointmentPatternsHandler_InvertedRange(t *testing.T) {
	repo := new(mockAppointmentRepo)

	patterns, err := NewAppointmentPatternsHandler(repo).Handle(context.Background(), AppointmentPatternsQuery{From: day(7, 0), To: day(1, 0)})

	require.NoError(t, err)
	assert.Zero(t, patterns.Total)
	repo.AssertNotCalled(t, "FindInRange", mock.Anything, mock.Anything, mock.Anything)
}
