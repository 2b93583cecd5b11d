package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Location is the zone dates and times on the command line are read in.
var Location = time.Local

var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
}

// ParseDate reads YYYY-MM-DD. Empty means today.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().In(Location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseDateTime reads "YYYY-MM-DD HH:MM" or RFC 3339.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use \"YYYY-MM-DD HH:MM\"", value)
}

// ParseID reads a required UUID flag.
func ParseID(flag, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, fmt.Errorf("--%s is required", flag)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return id, nil
}

// ParseOptionalID reads a UUID flag that may be empty.
func ParseOptionalID(flag, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, nil
	}
	return ParseID(flag, value)
}
