package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and parameterizes a backend.
type Config struct {
	// URL is a postgres:// URL, a sqlite:// URL or empty for SQLitePath.
	URL string

	// SQLitePath is used when URL is empty. ":memory:" opens a private
	// in-memory database.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool; zero keeps the pgx default.
	MaxConns int
}

// Opener builds a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register makes a driver available to Open. Driver packages call it from
// init, so importing them for side effects is enough.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// Open detects the driver from cfg.URL and connects.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver, err := DetectDriver(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.URL)
	}
	if driver == DriverSQLite && cfg.URL != "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not linked in", ErrUnsupportedDriver, driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is ~/.meditrack/data.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".meditrack", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o750)
}
