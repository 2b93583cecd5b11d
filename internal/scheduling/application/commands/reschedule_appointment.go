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

// RescheduleAppointmentCommand moves an appointment to NewStart.
type RescheduleAppointmentCommand struct {
	AppointmentID uuid.UUID
	NewStart      time.Time
	ActorID       uuid.UUID
}

// RescheduleAppointmentResult reports where the appointment moved.
type RescheduleAppointmentResult struct {
	AppointmentID uuid.UUID
	OldStart      time.Time
	NewStart      time.Time
}

// RescheduleAppointmentHandler handles RescheduleAppointmentCommand.
type RescheduleAppointmentHandler struct {
	repo       domain.AppointmentRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	locker     locking.Locker
	lockTTL    time.Duration
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewRescheduleAppointmentHandler creates a new RescheduleAppointmentHandler.
func NewRescheduleAppointmentHandler(
	repo domain.AppointmentRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker locking.Locker,
	lockTTL time.Duration,
	logger *slog.Logger,
	metrics observability.Metrics,
) *RescheduleAppointmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RescheduleAppointmentHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		locker:     locker,
		lockTTL:    lockTTL,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle moves the appointment when the new time is free, ignoring the
// appointment's own current slot.
func (h *RescheduleAppointmentHandler) Handle(ctx context.Context, cmd RescheduleAppointmentCommand) (*RescheduleAppointmentResult, error) {
	current, err := h.repo.FindByID(ctx, cmd.AppointmentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrAppointmentNotFound
	}

	newStart := cmd.NewStart.Truncate(time.Minute)
	newEnd := newStart.Add(time.Duration(current.DurationMinutes()) * time.Minute)
	keys := locking.DoctorDayKeys(current.DoctorID(), newStart, newEnd)
	release, err := locking.AcquireAll(ctx, h.locker, keys, h.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			h.logger.WarnContext(ctx, "release booking lock", "error", err)
		}
	}()

	var result *RescheduleAppointmentResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		appointment, err := h.repo.FindByID(txCtx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if appointment == nil {
			return domain.ErrAppointmentNotFound
		}
		if appointment.Status().IsClosed() {
			return domain.ErrAppointmentClosed
		}

		duration := time.Duration(appointment.DurationMinutes()) * time.Minute
		occupied, err := doctorOccupancies(txCtx, h.repo, appointment.DoctorID(), newStart, newStart.Add(duration), appointment.ID())
		if err != nil {
			return err
		}
		if !domain.IsAvailable(occupied, newStart, duration) {
			return domain.ErrTimeUnavailable
		}

		oldStart := appointment.Start()
		if err := appointment.Reschedule(newStart); err != nil {
			return err
		}
		if err := saveWithEvents(txCtx, h.repo, h.outboxRepo, appointment, cmd.ActorID); err != nil {
			return err
		}

		result = &RescheduleAppointmentResult{
			AppointmentID: appointment.ID(),
			OldStart:      oldStart,
			NewStart:      appointment.Start(),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTimeUnavailable) {
			h.metrics.Counter(observability.MetricBookingRejected, 1, observability.T("reason", "overlap"))
		}
		return nil, err
	}

	h.metrics.Counter(observability.MetricAppointmentTransitions, 1, observability.T("status", string(domain.StatusRescheduled)))
	h.logger.InfoContext(ctx, "appointment rescheduled",
		"appointment_id", result.AppointmentID,
		"old_start", result.OldStart,
		"new_start", result.NewStart,
	)
	return result, nil
}
