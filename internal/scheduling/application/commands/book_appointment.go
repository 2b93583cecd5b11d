package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/meditrack/internal/shared/application"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/locking"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

// BookAppointmentCommand contains the data needed to book a visit.
type BookAppointmentCommand struct {
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	Start           time.Time
	DurationMinutes int
	Notes           string
}

// BookAppointmentResult identifies the booked appointment.
type BookAppointmentResult struct {
	AppointmentID uuid.UUID
	Start         time.Time
	End           time.Time
}

// BookAppointmentHandler books appointments one doctor-day at a time.
type BookAppointmentHandler struct {
	repo       domain.AppointmentRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	locker     locking.Locker
	lockTTL    time.Duration
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewBookAppointmentHandler creates a new BookAppointmentHandler.
func NewBookAppointmentHandler(
	repo domain.AppointmentRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker locking.Locker,
	lockTTL time.Duration,
	logger *slog.Logger,
	metrics observability.Metrics,
) *BookAppointmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &BookAppointmentHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		locker:     locker,
		lockTTL:    lockTTL,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle books the visit unless it overlaps an active appointment of the
// same doctor.
func (h *BookAppointmentHandler) Handle(ctx context.Context, cmd BookAppointmentCommand) (*BookAppointmentResult, error) {
	appointment, err := domain.NewAppointment(cmd.PatientID, cmd.DoctorID, cmd.Start, cmd.DurationMinutes, cmd.Notes)
	if err != nil {
		h.metrics.Counter(observability.MetricBookingRejected, 1, observability.T("reason", "invalid"))
		return nil, err
	}

	keys := locking.DoctorDayKeys(cmd.DoctorID, appointment.Start(), appointment.End())
	release, err := locking.AcquireAll(ctx, h.locker, keys, h.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			h.logger.WarnContext(ctx, "release booking lock", "error", err)
		}
	}()

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		occupied, err := doctorOccupancies(txCtx, h.repo, cmd.DoctorID, appointment.Start(), appointment.End(), uuid.Nil)
		if err != nil {
			return err
		}
		if !domain.IsAvailable(occupied, appointment.Start(), appointment.Occupancy().Range().Duration()) {
			return domain.ErrTimeUnavailable
		}
		return saveWithEvents(txCtx, h.repo, h.outboxRepo, appointment, cmd.PatientID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrTimeUnavailable) {
			h.metrics.Counter(observability.MetricBookingRejected, 1, observability.T("reason", "overlap"))
		}
		return nil, err
	}

	h.metrics.Counter(observability.MetricAppointmentsBooked, 1)
	h.logger.InfoContext(ctx, "appointment booked",
		"appointment_id", appointment.ID(),
		"doctor_id", cmd.DoctorID,
		"start", appointment.Start(),
	)

	return &BookAppointmentResult{
		AppointmentID: appointment.ID(),
		Start:         appointment.Start(),
		End:           appointment.End(),
	}, nil
}
