// Package database hides the SQL driver behind a small executor interface so
// repositories and the unit of work run unchanged on SQLite and PostgreSQL.
package database

import (
	"errors"
	"strings"
)

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ErrUnsupportedDriver is returned for URLs no backend understands.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether d is a known backend.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// DetectDriver infers the backend from a connection URL. An empty URL selects
// SQLite so the CLI works without any setup.
func DetectDriver(url string) (Driver, error) {
	switch {
	case url == "":
		return DriverSQLite, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		url == ":memory:",
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite, nil
	}
	return "", ErrUnsupportedDriver
}

// SQLitePathFromURL strips the sqlite:// scheme, leaving file paths as is.
func SQLitePathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}
