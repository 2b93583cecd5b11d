package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SQLiteTimeLayout is fixed width so stored instants sort as text.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL. Queries
// must not contain literal question marks.
func Rebind(driver Driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TimeArg encodes t as a query argument: UTC text on SQLite, a native
// timestamp on PostgreSQL.
func TimeArg(driver Driver, t time.Time) any {
	if driver == DriverSQLite {
		return t.UTC().Format(SQLiteTimeLayout)
	}
	return t.UTC()
}

// NullTimeArg is TimeArg for optional instants.
func NullTimeArg(driver Driver, t *time.Time) any {
	if t == nil {
		return nil
	}
	return TimeArg(driver, *t)
}

// Time scans either driver's timestamp representation. Values come back in
// UTC.
type Time struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Time{}
		return nil
	case time.Time:
		*t = Time{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into database.Time", src)
}

func (t *Time) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse stored time %q: %w", s, err)
	}
	*t = Time{Time: parsed.UTC(), Valid: true}
	return nil
}

// Ptr returns nil for NULL.
func (t Time) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
