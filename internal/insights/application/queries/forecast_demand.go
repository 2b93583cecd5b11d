package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	scheduling "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

// ForecastDemandQuery projects demand from the appointments between From and
// To, both inclusive dates. A nil DoctorID forecasts the whole practice. A
// zero Today means the current date.
type ForecastDemandQuery struct {
	DoctorID    uuid.UUID
	From        time.Time
	To          time.Time
	HorizonDays int
	Mode        domain.ForecastMode
	Today       time.Time
}

// ForecastDemandHandler handles ForecastDemandQuery.
type ForecastDemandHandler struct {
	repo           scheduling.AppointmentRepository
	cache          domain.ForecastCache
	defaultHorizon int
	defaultMode    domain.ForecastMode
	logger         *slog.Logger
	metrics        observability.Metrics
	now            func() time.Time
}

// NewForecastDemandHandler creates a new ForecastDemandHandler. cache may be
// nil.
func NewForecastDemandHandler(
	repo scheduling.AppointmentRepository,
	cache domain.ForecastCache,
	defaultHorizon int,
	defaultMode domain.ForecastMode,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ForecastDemandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if defaultHorizon <= 0 {
		defaultHorizon = domain.DefaultHorizonDays
	}
	if defaultMode == "" {
		defaultMode = domain.ForecastModeCumulative
	}
	return &ForecastDemandHandler{
		repo:           repo,
		cache:          cache,
		defaultHorizon: defaultHorizon,
		defaultMode:    defaultMode,
		logger:         logger,
		metrics:        metrics,
		now:            time.Now,
	}
}

// Handle executes the ForecastDemandQuery. Cache failures are logged and
// the forecast is computed from the repository.
func (h *ForecastDemandHandler) Handle(ctx context.Context, query ForecastDemandQuery) (*domain.Forecast, error) {
	today := query.Today
	if today.IsZero() {
		today = h.now()
	}
	key := domain.ForecastKey{
		Mode:        query.Mode,
		DoctorID:    query.DoctorID,
		From:        scheduling.StartOfDay(query.From),
		To:          scheduling.StartOfDay(query.To),
		Today:       scheduling.StartOfDay(today),
		HorizonDays: query.HorizonDays,
	}
	if key.Mode == "" {
		key.Mode = h.defaultMode
	}
	if key.HorizonDays <= 0 {
		key.HorizonDays = h.defaultHorizon
	}

	if h.cache != nil {
		cached, ok, err := h.cache.Get(ctx, key)
		if err != nil {
			h.logger.Warn("forecast cache read failed", "key", key.String(), "error", err)
		} else if ok {
			h.metrics.Counter(observability.MetricForecastCacheHit, 1)
			return cached, nil
		}
		h.metrics.Counter(observability.MetricForecastCacheMiss, 1)
	}

	forecast, err := observability.TimeOperationResult(h.logger, h.metrics, "forecast_demand", func() (domain.Forecast, error) {
		history, err := h.history(ctx, query.DoctorID, key.From, key.To.AddDate(0, 0, 1))
		if err != nil {
			return domain.Forecast{}, err
		}
		return domain.ForecastDemand(scheduling.Occupancies(history), key.HorizonDays, today, key.Mode), nil
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, forecast); err != nil {
			h.logger.Warn("forecast cache write failed", "key", key.String(), "error", err)
		}
	}
	return &forecast, nil
}

func (h *ForecastDemandHandler) history(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*scheduling.Appointment, error) {
	if !from.Before(to) {
		return nil, nil
	}
	if doctorID != uuid.Nil {
		return h.repo.FindByDoctor(ctx, doctorID, from, to)
	}
	return h.repo.FindInRange(ctx, from, to)
}
