package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	insightsQueries "github.com/felixgeelhaar/meditrack/internal/insights/application/queries"
	insightsSubs "github.com/felixgeelhaar/meditrack/internal/insights/application/subscribers"
	insightsDomain "github.com/felixgeelhaar/meditrack/internal/insights/domain"
	forecastCache "github.com/felixgeelhaar/meditrack/internal/insights/infrastructure/cache"
	scheduleCommands "github.com/felixgeelhaar/meditrack/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	scheduleSubs "github.com/felixgeelhaar/meditrack/internal/scheduling/application/subscribers"
	schedulingDomain "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	schedulePersistence "github.com/felixgeelhaar/meditrack/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/meditrack/internal/shared/application"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/locking"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/meditrack/pkg/config"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil when REDIS_URL is empty or unreachable in development
	RedisClient *redis.Client

	// Observability
	Registry *prometheus.Registry
	Metrics  observability.Metrics
	Health   *observability.HealthRegistry

	// Repositories
	AppointmentRepo schedulingDomain.AppointmentRepository
	OutboxRepo      outbox.Repository
	UnitOfWork      sharedApplication.UnitOfWork

	// Infrastructure
	Locker            locking.Locker
	ForecastCache     insightsDomain.ForecastCache
	EventPublisher    eventbus.Publisher
	Breaker           *eventbus.BreakerPublisher
	InProcessEventBus *eventbus.InProcessBus
	OutboxProcessor   *outbox.Processor

	// Appointment Command Handlers
	BookAppointmentHandler       *scheduleCommands.BookAppointmentHandler
	RescheduleAppointmentHandler *scheduleCommands.RescheduleAppointmentHandler
	CancelAppointmentHandler     *scheduleCommands.CancelAppointmentHandler
	CompleteAppointmentHandler   *scheduleCommands.CompleteAppointmentHandler
	MarkNoShowHandler            *scheduleCommands.MarkNoShowHandler

	// Schedule Query Handlers
	FindAvailableSlotsHandler *scheduleQueries.FindAvailableSlotsHandler
	DetectConflictsHandler    *scheduleQueries.DetectConflictsHandler
	OptimizeDayHandler        *scheduleQueries.OptimizeDayHandler
	SuggestSlotsHandler       *scheduleQueries.SuggestSlotsHandler
	SearchAppointmentsHandler *scheduleQueries.SearchAppointmentsHandler

	// Insights Query Handlers
	ForecastDemandHandler      *insightsQueries.ForecastDemandHandler
	AppointmentPatternsHandler *insightsQueries.AppointmentPatternsHandler
}

// NewContainer wires the application from cfg. In development, Redis and
// RabbitMQ failures fall back to in-process implementations; elsewhere they
// are fatal.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initMetrics()

	var repoOpts []schedulePersistence.Option
	if cfg.NotesEncryptionKey != "" {
		notesCipher, err := crypto.NewFieldCipher(cfg.NotesEncryptionKey)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("invalid NOTES_ENCRYPTION_KEY: %w", err)
		}
		repoOpts = append(repoOpts, schedulePersistence.WithNotesCipher(notesCipher))
	}
	c.AppointmentRepo = schedulePersistence.NewSQLAppointmentRepository(c.DBConn, repoOpts...)
	c.OutboxRepo = outbox.NewSQLRepository(c.DBConn)
	c.UnitOfWork = database.NewUnitOfWork(c.DBConn)

	if c.RedisClient != nil {
		c.Locker = locking.NewRedisLocker(c.RedisClient, locking.DefaultWait)
		c.ForecastCache = forecastCache.NewRedisForecastCache(c.RedisClient, cfg.ForecastCacheTTL)
	} else {
		c.Locker = locking.NewLocalLocker(locking.DefaultWait)
		c.ForecastCache = forecastCache.NoopForecastCache{}
	}

	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: outbox.DefaultProcessorConfig().RetryBackoffBase,
		RetryBackoffMax:  outbox.DefaultProcessorConfig().RetryBackoffMax,
	}, logger, c.Metrics)

	c.initHandlers()
	c.registerHealthChecks()
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	conn, err := database.Open(ctx, database.Config{
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Logger.Info("running migrations", "driver", conn.Driver())
	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, using in-process locks and no forecast cache", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, using in-process locks and no forecast cache", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = observability.NewPrometheusMetrics(c.Registry)
}

// dialBroker connects the RabbitMQ publisher. Tests replace it.
var dialBroker = func(url string, logger *slog.Logger) (eventbus.Publisher, error) {
	return eventbus.NewRabbitMQPublisher(url, logger)
}

func (c *Container) initPublisher() error {
	bus := eventbus.NewInProcessBus(c.Logger)
	scheduleSubs.NewAppointmentLogger(c.Logger).Register(bus)
	insightsSubs.NewForecastInvalidator(c.ForecastCache, c.Logger).Register(bus)
	c.InProcessEventBus = bus

	var broker eventbus.Publisher
	if c.Config.RabbitMQURL != "" {
		publisher, err := dialBroker(c.Config.RabbitMQURL, c.Logger)
		switch {
		case err == nil:
			broker = publisher
		case c.Config.IsDevelopment():
			c.Logger.Warn("RabbitMQ not available, delivering events in process", "error", err)
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}

	next := eventbus.Publisher(bus)
	if broker != nil {
		next = broker
	}
	c.Breaker = eventbus.NewBreakerPublisher(next, eventbus.BreakerConfig{
		ConsecutiveFailures: uint32(max(c.Config.BreakerFailures, 1)),
		OpenTimeout:         c.Config.BreakerTimeout,
	}, c.Logger, func(to string) {
		c.Metrics.Counter(observability.MetricBreakerTransitions, 1, observability.T("to", to))
	})

	// Local subscribers such as the forecast invalidator run even when
	// events also go to the broker.
	c.EventPublisher = c.Breaker
	if broker != nil {
		c.EventPublisher = eventbus.NewTeePublisher(c.Breaker, bus, c.Logger)
	}
	return nil
}

func (c *Container) initHandlers() {
	cfg, logger, metrics := c.Config, c.Logger, c.Metrics

	c.BookAppointmentHandler = scheduleCommands.NewBookAppointmentHandler(
		c.AppointmentRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.BookingLockTTL, logger, metrics)
	c.RescheduleAppointmentHandler = scheduleCommands.NewRescheduleAppointmentHandler(
		c.AppointmentRepo, c.OutboxRepo, c.UnitOfWork, c.Locker, cfg.BookingLockTTL, logger, metrics)
	c.CancelAppointmentHandler = scheduleCommands.NewCancelAppointmentHandler(c.AppointmentRepo, c.OutboxRepo, c.UnitOfWork, logger, metrics)
	c.CompleteAppointmentHandler = scheduleCommands.NewCompleteAppointmentHandler(c.AppointmentRepo, c.OutboxRepo, c.UnitOfWork, logger, metrics)
	c.MarkNoShowHandler = scheduleCommands.NewMarkNoShowHandler(c.AppointmentRepo, c.OutboxRepo, c.UnitOfWork, logger, metrics)

	hours := scheduleQueries.WorkingHours{
		Start:           cfg.WorkdayStart,
		End:             cfg.WorkdayEnd,
		Stride:          cfg.SlotStride,
		DefaultDuration: cfg.DefaultAppointmentDuration,
	}
	c.FindAvailableSlotsHandler = scheduleQueries.NewFindAvailableSlotsHandler(c.AppointmentRepo, hours, metrics)
	c.DetectConflictsHandler = scheduleQueries.NewDetectConflictsHandler(c.AppointmentRepo, metrics)
	c.OptimizeDayHandler = scheduleQueries.NewOptimizeDayHandler(c.AppointmentRepo, cfg.GapThreshold)
	c.SuggestSlotsHandler = scheduleQueries.NewSuggestSlotsHandler(c.AppointmentRepo, hours, metrics)
	c.SearchAppointmentsHandler = scheduleQueries.NewSearchAppointmentsHandler(c.AppointmentRepo)

	mode, err := insightsDomain.ParseForecastMode(cfg.ForecastMode)
	if err != nil {
		logger.Warn("unknown FORECAST_MODE, using cumulative", "mode", cfg.ForecastMode)
		mode = insightsDomain.ForecastModeCumulative
	}
	c.ForecastDemandHandler = insightsQueries.NewForecastDemandHandler(
		c.AppointmentRepo, c.ForecastCache, cfg.ForecastHorizonDays, mode, logger, metrics)
	c.AppointmentPatternsHandler = insightsQueries.NewAppointmentPatternsHandler(c.AppointmentRepo)
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.PingChecker(
		c.DBDriver.String(), observability.HealthStatusUnhealthy, c.DBConn.Ping))

	if c.RedisClient != nil {
		c.Health.Register("redis", observability.PingChecker(
			"redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
				return c.RedisClient.Ping(ctx).Err()
			}))
	}

	c.Health.Register("event_publisher", observability.PingChecker(
		"event publisher", observability.HealthStatusDegraded, func(context.Context) error {
			if state := c.Breaker.State(); state == "open" {
				return errors.New("circuit " + state)
			}
			return nil
		}))
}

// Close releases every resource the container opened.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
