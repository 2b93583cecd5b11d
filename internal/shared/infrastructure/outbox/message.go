// Package outbox stores domain events next to the state change that raised
// them and relays them to the event bus after commit.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is one stored event awaiting delivery.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	RetryCount       int
	NextRetryAt      *time.Time
	LastError        string
	DeadLetteredAt   *time.Time
	DeadLetterReason string
}

// NewMessage serializes event as JSON.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.RoutingKey(), err)
	}
	meta, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, fmt.Errorf("marshal %s metadata: %w", event.RoutingKey(), err)
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      meta,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages converts a batch of events, failing on the first error.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, e := range events {
		m, err := NewMessage(e)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// IsPublished reports whether the message was delivered.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CorrelationID reads the correlation ID from the stored metadata.
func (m *Message) CorrelationID() string {
	var meta domain.EventMetadata
	if len(m.Metadata) == 0 || json.Unmarshal(m.Metadata, &meta) != nil {
		return ""
	}
	return meta.CorrelationID
}
