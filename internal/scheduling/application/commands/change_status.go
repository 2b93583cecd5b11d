package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/meditrack/internal/shared/application"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

// CancelAppointmentCommand frees an appointment's time.
type CancelAppointmentCommand struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
}

// CompleteAppointmentCommand records that the visit happened.
type CompleteAppointmentCommand struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
}

// MarkNoShowCommand records that the patient did not attend.
type MarkNoShowCommand struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
}

// StatusChangeResult reports the appointment's new status.
type StatusChangeResult struct {
	AppointmentID uuid.UUID
	Status        domain.Status
}

// statusChanger runs one lifecycle transition inside a unit of work.
type statusChanger struct {
	repo       domain.AppointmentRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	metrics    observability.Metrics
}

func newStatusChanger(
	repo domain.AppointmentRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) statusChanger {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return statusChanger{repo: repo, outboxRepo: outboxRepo, uow: uow, logger: logger, metrics: metrics}
}

func (s statusChanger) change(ctx context.Context, id, actorID uuid.UUID, transition func(*domain.Appointment) error) (*StatusChangeResult, error) {
	var result *StatusChangeResult

	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		appointment, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return domain.ErrAppointmentNotFound
		}
		if err := transition(appointment); err != nil {
			return err
		}
		if err := saveWithEvents(txCtx, s.repo, s.outboxRepo, appointment, actorID); err != nil {
			return err
		}
		result = &StatusChangeResult{AppointmentID: appointment.ID(), Status: appointment.Status()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Counter(observability.MetricAppointmentTransitions, 1, observability.T("status", string(result.Status)))
	s.logger.InfoContext(ctx, "appointment status changed",
		"appointment_id", result.AppointmentID,
		"status", result.Status,
	)
	return result, nil
}

// CancelAppointmentHandler handles CancelAppointmentCommand.
type CancelAppointmentHandler struct {
	statusChanger
}

func NewCancelAppointmentHandler(repo domain.AppointmentRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger, metrics observability.Metrics) *CancelAppointmentHandler {
	return &CancelAppointmentHandler{newStatusChanger(repo, outboxRepo, uow, logger, metrics)}
}

func (h *CancelAppointmentHandler) Handle(ctx context.Context, cmd CancelAppointmentCommand) (*StatusChangeResult, error) {
	return h.change(ctx, cmd.AppointmentID, cmd.ActorID, (*domain.Appointment).Cancel)
}

// CompleteAppointmentHandler handles CompleteAppointmentCommand.
type CompleteAppointmentHandler struct {
	statusChanger
}

func NewCompleteAppointmentHandler(repo domain.AppointmentRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger, metrics observability.Metrics) *CompleteAppointmentHandler {
	return &CompleteAppointmentHandler{newStatusChanger(repo, outboxRepo, uow, logger, metrics)}
}

func (h *CompleteAppointmentHandler) Handle(ctx context.Context, cmd CompleteAppointmentCommand) (*StatusChangeResult, error) {
	return h.change(ctx, cmd.AppointmentID, cmd.ActorID, (*domain.Appointment).Complete)
}

// MarkNoShowHandler handles MarkNoShowCommand.
type MarkNoShowHandler struct {
	statusChanger
}

func NewMarkNoShowHandler(repo domain.AppointmentRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger, metrics observability.Metrics) *MarkNoShowHandler {
	return &MarkNoShowHandler{newStatusChanger(repo, outboxRepo, uow, logger, metrics)}
}

func (h *MarkNoShowHandler) Handle(ctx context.Context, cmd MarkNoShowCommand) (*StatusChangeResult, error) {
	return h.change(ctx, cmd.AppointmentID, cmd.ActorID, (*domain.Appointment).MarkNoShow)
}
