// Package domain contains the scheduling core: the occupancy model and the
// pure algorithms that find free slots, detect double bookings, flag idle
// gaps and rank candidate times against patient preferences.
//
// Nothing in this package performs I/O, logs or reads configuration. Every
// function takes its inputs explicitly and never mutates caller data.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusRescheduled Status = "rescheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no-show"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusScheduled,
	StatusRescheduled,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsClosed reports whether no further transitions are allowed.
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps is strict: ranges that only touch do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// IsEmpty is true for zero-length and inverted ranges.
func (r TimeRange) IsEmpty() bool {
	return !r.End.After(r.Start)
}

// Occupancy is a scheduled block of a doctor's time.
// ID and DoctorID are optional for pure computations.
type Occupancy struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	Start           time.Time
	DurationMinutes int
	Status          Status
}

// End is Start plus the duration.
func (o Occupancy) End() time.Time {
	return o.Start.Add(time.Duration(o.DurationMinutes) * time.Minute)
}

// Range returns the occupied interval.
func (o Occupancy) Range() TimeRange {
	return TimeRange{Start: o.Start, End: o.End()}
}

// IsCancelled reports whether the occupancy frees its time.
func (o Occupancy) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// Overlaps tests two occupancies for strict overlap. Callers exclude
// cancelled occupancies before asking.
func Overlaps(a, b Occupancy) bool {
	return a.Range().Overlaps(b.Range())
}

// IsAvailable reports whether [start, start+duration) is free of every
// non-cancelled occupancy.
func IsAvailable(occupancies []Occupancy, start time.Time, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	candidate := TimeRange{Start: start, End: start.Add(duration)}
	for _, o := range occupancies {
		if o.IsCancelled() {
			continue
		}
		if candidate.Overlaps(o.Range()) {
			return false
		}
	}
	return true
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar dates, each in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
