package outbox

import (
	"context"
	"time"
)

// Counts summarizes the outbox backlog.
type Counts struct {
	Pending      int
	DeadLettered int
	Published    int
}

// Repository persists outbox messages. SaveBatch honors a transaction bound
// to ctx so messages commit together with the aggregate.
type Repository interface {
	SaveBatch(ctx context.Context, msgs []*Message) error

	// Pending returns undelivered, live messages whose retry time has come,
	// oldest first.
	Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	Counts(ctx context.Context) (Counts, error)

	// DeleteOld drops published messages created before cutoff.
	DeleteOld(ctx context.Context, cutoff time.Time) (int64, error)
}
