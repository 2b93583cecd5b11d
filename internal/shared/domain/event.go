package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata links an event to the command that caused it.
type EventMetadata struct {
	CorrelationID string    `json:"correlation_id,omitempty"`
	ActorID       uuid.UUID `json:"actor_id,omitempty"`
}

// BaseEvent implements DomainEvent for embedding in concrete events.
type BaseEvent struct {
	ID        uuid.UUID     `json:"event_id"`
	Aggregate uuid.UUID     `json:"aggregate_id"`
	Type      string        `json:"aggregate_type"`
	Key       string        `json:"routing_key"`
	Occurred  time.Time     `json:"occurred_at"`
	Meta      EventMetadata `json:"metadata"`
}

// NewBaseEvent stamps a new event for the given aggregate.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Aggregate: aggregateID,
		Type:      aggregateType,
		Key:       routingKey,
		Occurred:  time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.ID }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.Aggregate }
func (e BaseEvent) AggregateType() string   { return e.Type }
func (e BaseEvent) RoutingKey() string      { return e.Key }
func (e BaseEvent) OccurredAt() time.Time   { return e.Occurred }
func (e BaseEvent) Metadata() EventMetadata { return e.Meta }

// SetMetadata attaches correlation data.
func (e *BaseEvent) SetMetadata(meta EventMetadata) {
	e.Meta = meta
}
