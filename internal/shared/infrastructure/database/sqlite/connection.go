// Package sqlite registers the pure-Go SQLite backend with the database
// package.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/security"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

func init() {
	database.Register(database.DriverSQLite, Open)
}

// pragmas applied to every connection: WAL journaling, enforced foreign
// keys and a 5s busy wait instead of immediate SQLITE_BUSY.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Connection implements database.Connection over *sql.DB.
type Connection struct {
	database.SQLExecutor
	db *sql.DB
}

// Open connects to cfg.SQLitePath, creating its directory if needed.
func Open(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	dsn := "file::memory:"
	if path != MemoryPath {
		clean, err := security.CleanPath(path)
		if err != nil {
			return nil, fmt.Errorf("sqlite path: %w", err)
		}
		path = clean
		if err := database.EnsureDirectory(path); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path
	}
	dsn = withPragmas(dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time; a single connection also keeps an in-memory
	// database alive for the life of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return &Connection{SQLExecutor: database.NewSQLExecutor(db), db: db}, nil
}

func withPragmas(dsn string) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// DB exposes the pool for migrations and tests.
func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Driver() database.Driver { return database.DriverSQLite }

func (c *Connection) Close() error { return c.db.Close() }

func (c *Connection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &transaction{SQLExecutor: database.NewSQLExecutor(tx), tx: tx}, nil
}

type transaction struct {
	database.SQLExecutor
	tx *sql.Tx
}

func (t *transaction) Commit(context.Context) error   { return t.tx.Commit() }
func (t *transaction) Rollback(context.Context) error { return t.tx.Rollback() }
