package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// UUID and JSON columns are cast to text so both drivers scan them into
// strings.
const messageColumns = `id, CAST(event_id AS TEXT), aggregate_type, CAST(aggregate_id AS TEXT), routing_key,
	CAST(payload AS TEXT), CAST(metadata AS TEXT), created_at, published_at, retry_count, next_retry_at,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository for SQLite and PostgreSQL.
type SQLRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLRepository returns a repository over conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLRepository) q(query string) string {
	return database.Rebind(r.driver, query)
}

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	query := r.q(`INSERT INTO outbox_messages
		(event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	exec := r.exec(ctx)
	for _, m := range msgs {
		var meta any
		if len(m.Metadata) > 0 {
			meta = string(m.Metadata)
		}
		err := exec.QueryRow(ctx, query,
			m.EventID.String(),
			m.AggregateType,
			m.AggregateID.String(),
			m.RoutingKey,
			string(m.Payload),
			meta,
			database.TimeArg(r.driver, m.CreatedAt),
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert outbox message %s: %w", m.RoutingKey, err)
		}
	}
	return nil
}

func (r *SQLRepository) Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.exec(ctx).Query(ctx, r.q(`SELECT `+messageColumns+`
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`), database.TimeArg(r.driver, now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.exec(ctx).Exec(ctx, r.q(`UPDATE outbox_messages SET published_at = ? WHERE id = ?`),
		database.TimeArg(r.driver, at), id)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.exec(ctx).Exec(ctx, r.q(`UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`), reason, database.TimeArg(r.driver, nextRetryAt), id)
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.exec(ctx).Exec(ctx, r.q(`UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?`), reason, database.TimeArg(r.driver, at), reason, id)
	return err
}

func (r *SQLRepository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.exec(ctx).QueryRow(ctx, `SELECT
		COALESCE(SUM(CASE WHEN published_at IS NULL AND dead_lettered_at IS NULL THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN dead_lettered_at IS NOT NULL THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN published_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM outbox_messages`).Scan(&c.Pending, &c.DeadLettered, &c.Published)
	return c, err
}

func (r *SQLRepository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.exec(ctx).Exec(ctx, r.q(`DELETE FROM outbox_messages
		WHERE published_at IS NOT NULL AND created_at < ?`), database.TimeArg(r.driver, cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		m                         Message
		eventID, aggregateID      string
		payload                   string
		meta, lastErr, deadReason sql.NullString
		created                   database.Time
		published, next, dead     database.Time
	)
	err := row.Scan(&m.ID, &eventID, &m.AggregateType, &aggregateID, &m.RoutingKey, &payload, &meta,
		&created, &published, &m.RetryCount, &next, &lastErr, &dead, &deadReason)
	if err != nil {
		return nil, err
	}

	if m.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox message %d: event id: %w", m.ID, err)
	}
	if m.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox message %d: aggregate id: %w", m.ID, err)
	}
	m.Payload = json.RawMessage(payload)
	if meta.Valid {
		m.Metadata = json.RawMessage(meta.String)
	}
	m.CreatedAt = created.Time
	m.PublishedAt = published.Ptr()
	m.NextRetryAt = next.Ptr()
	m.DeadLetteredAt = dead.Ptr()
	m.LastError = lastErr.String
	m.DeadLetterReason = deadReason.String
	return &m, nil
}
