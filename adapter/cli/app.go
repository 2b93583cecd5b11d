package cli

import (
	"context"
	"errors"
	"log/slog"

	internalApp "github.com/felixgeelhaar/meditrack/internal/app"
	insightsQueries "github.com/felixgeelhaar/meditrack/internal/insights/application/queries"
	scheduleCommands "github.com/felixgeelhaar/meditrack/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotInitialized is returned by commands run without a database.
var ErrNotInitialized = errors.New("meditrack is not initialized, check DATABASE_URL or SQLITE_PATH")

// App holds the CLI application dependencies.
type App struct {
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

	// Outbox
	OutboxProcessor *outbox.Processor
	OutboxRepo      outbox.Repository

	// Observability
	Health   *observability.HealthRegistry
	Gatherer prometheus.Gatherer

	DefaultDurationMinutes int
}

// NewApp exposes the container's handlers to the CLI.
func NewApp(c *internalApp.Container) *App {
	return &App{
		BookAppointmentHandler:       c.BookAppointmentHandler,
		RescheduleAppointmentHandler: c.RescheduleAppointmentHandler,
		CancelAppointmentHandler:     c.CancelAppointmentHandler,
		CompleteAppointmentHandler:   c.CompleteAppointmentHandler,
		MarkNoShowHandler:            c.MarkNoShowHandler,
		FindAvailableSlotsHandler:    c.FindAvailableSlotsHandler,
		DetectConflictsHandler:       c.DetectConflictsHandler,
		OptimizeDayHandler:           c.OptimizeDayHandler,
		SuggestSlotsHandler:          c.SuggestSlotsHandler,
		SearchAppointmentsHandler:    c.SearchAppointmentsHandler,
		ForecastDemandHandler:        c.ForecastDemandHandler,
		AppointmentPatternsHandler:   c.AppointmentPatternsHandler,
		OutboxProcessor:              c.OutboxProcessor,
		OutboxRepo:                   c.OutboxRepo,
		Health:                       c.Health,
		Gatherer:                     c.Registry,
		DefaultDurationMinutes:       c.Config.DefaultAppointmentMinutes(),
	}
}

// FlushOutbox relays pending events right away so subscribers see a change
// before the command exits. Failures stay in the outbox for the relay.
func (a *App) FlushOutbox(ctx context.Context) {
	if a.OutboxProcessor == nil {
		return
	}
	res, err := a.OutboxProcessor.ProcessOnce(ctx)
	if err != nil {
		Logger().WarnContext(ctx, "outbox flush failed", "error", err)
		return
	}
	if res.Failed > 0 || res.Deferred > 0 {
		Logger().WarnContext(ctx, "events left in outbox",
			slog.Int("failed", res.Failed),
			slog.Int("deferred", res.Deferred),
		)
	}
}

var app *App

// SetApp sets the global CLI application.
func SetApp(a *App) {
	app = a
}

// RequireApp returns the App or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
