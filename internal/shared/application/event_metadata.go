package application

import (
	"context"

	"github.com/felixgeelhaar/meditrack/internal/shared/domain"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(meta domain.EventMetadata)
}

// EventMetadataFromContext links events to the correlation ID of the
// running command, minting one when the context carries none.
func EventMetadataFromContext(ctx context.Context, actorID uuid.UUID) domain.EventMetadata {
	correlationID := observability.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return domain.EventMetadata{CorrelationID: correlationID, ActorID: actorID}
}

// ApplyEventMetadata stamps meta on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, meta domain.EventMetadata) {
	for _, e := range events {
		if s, ok := e.(metadataSetter); ok {
			s.SetMetadata(meta)
		}
	}
}
