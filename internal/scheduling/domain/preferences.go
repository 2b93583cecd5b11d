package domain

import (
	"fmt"
	"strings"
	"time"
)

// HourRange accepts hours h with Start <= h < End.
type HourRange struct {
	Start int
	End   int
}

// Contains reports whether hour falls in the range.
func (r HourRange) Contains(hour int) bool {
	return r.Start <= hour && hour < r.End
}

// Preferences describe when a patient would like to be seen. An empty Days
// or Hours list accepts anything on that axis.
type Preferences struct {
	Days  []time.Weekday
	Hours []HourRange
}

// IsEmpty is true when the preferences accept every slot.
func (p Preferences) IsEmpty() bool {
	return len(p.Days) == 0 && len(p.Hours) == 0
}

// Matches tests a single candidate start.
func (p Preferences) Matches(t time.Time) bool {
	return p.matchesDay(t.Weekday()) && p.matchesHour(t.Hour())
}

func (p Preferences) matchesDay(day time.Weekday) bool {
	if len(p.Days) == 0 {
		return true
	}
	for _, d := range p.Days {
		if d == day {
			return true
		}
	}
	return false
}

func (p Preferences) matchesHour(hour int) bool {
	if len(p.Hours) == 0 {
		return true
	}
	for _, r := range p.Hours {
		if r.Contains(hour) {
			return true
		}
	}
	return false
}

// RankSlots keeps the candidates that match prefs in their original order.
// Preferences are advisory: when candidates is non-empty and nothing
// matches, the candidates are returned unfiltered.
func RankSlots(candidates []time.Time, prefs Preferences) []time.Time {
	matched := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		if prefs.Matches(c) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 && len(candidates) > 0 {
		return candidates
	}
	return matched
}

// ParseWeekday accepts full or three-letter English day names in any case.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
}

// ParseHourRange parses "9-12" into HourRange{9, 12}.
func ParseHourRange(s string) (HourRange, error) {
	var r HourRange
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d-%d", &r.Start, &r.End); err != nil {
		return HourRange{}, fmt.Errorf("%w: %q", ErrInvalidHourRange, s)
	}
	if r.Start < 0 || r.End > 24 || r.Start >= r.End {
		return HourRange{}, fmt.Errorf("%w: %q", ErrInvalidHourRange, s)
	}
	return r, nil
}
