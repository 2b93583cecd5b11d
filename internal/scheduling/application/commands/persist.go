package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/meditrack/internal/shared/application"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// saveWithEvents stores the appointment and its pending events in the
// transaction bound to txCtx.
func saveWithEvents(txCtx context.Context, repo domain.AppointmentRepository, outboxRepo outbox.Repository, a *domain.Appointment, actorID uuid.UUID) error {
	if err := repo.Save(txCtx, a); err != nil {
		return err
	}

	events := a.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(txCtx, actorID))

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := outboxRepo.SaveBatch(txCtx, msgs); err != nil {
		return fmt.Errorf("save outbox messages: %w", err)
	}

	a.ClearDomainEvents()
	return nil
}

// doctorOccupancies loads what could overlap [start, end) for the doctor.
// The lookback of a day covers appointments that began before start and
// are still running.
func doctorOccupancies(txCtx context.Context, repo domain.AppointmentRepository, doctorID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]domain.Occupancy, error) {
	existing, err := repo.FindByDoctor(txCtx, doctorID, domain.StartOfDay(start).AddDate(0, 0, -1), end)
	if err != nil {
		return nil, err
	}

	occ := make([]domain.Occupancy, 0, len(existing))
	for _, a := range existing {
		if a.ID() == exclude {
			continue
		}
		occ = append(occ, a.Occupancy())
	}
	return occ, nil
}
