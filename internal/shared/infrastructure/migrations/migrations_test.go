package migrations_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Run(ctx, conn))
	require.NoError(t, migrations.Run(ctx, conn), "migrations are idempotent")

	for _, table := range []string{"appointments", "outbox_messages"} {
		var name string
		err := conn.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestRun_RejectsInvalidDuration(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, migrations.Run(ctx, conn))

	_, err = conn.Exec(ctx, `INSERT INTO appointments
		(id, patient_id, doctor_id, start_at, duration_minutes, created_at, updated_at)
		VALUES ('a', 'p', 'd', '2024-01-15T09:00:00Z', 0, '', '')`)
	assert.Error(t, err)
}
