package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultGapThreshold is the idle time after which a gap is flagged.
const DefaultGapThreshold = 30 * time.Minute

// AnnotatedOccupancy pairs an occupancy with an optional advisory note about
// the idle time that follows it.
type AnnotatedOccupancy struct {
	Occupancy
	Gap  time.Duration
	Note string
}

// HasNote reports whether the optimizer flagged this occupancy.
func (a AnnotatedOccupancy) HasNote() bool {
	return a.Note != ""
}

// OptimizeDay returns the non-cancelled occupancies starting on date, in
// chronological order, annotating each one followed by more than threshold
// of idle time. Nothing is moved, added or removed and the input is left
// untouched. A non-positive threshold uses DefaultGapThreshold.
func OptimizeDay(occupancies []Occupancy, date time.Time, threshold time.Duration) []AnnotatedOccupancy {
	if threshold <= 0 {
		threshold = DefaultGapThreshold
	}

	day := make([]AnnotatedOccupancy, 0, len(occupancies))
	for _, o := range occupancies {
		if o.IsCancelled() {
			continue
		}
		if !SameDay(o.Start.In(date.Location()), date) {
			continue
		}
		day = append(day, AnnotatedOccupancy{Occupancy: o})
	}

	sort.SliceStable(day, func(i, j int) bool {
		return day[i].Start.Before(day[j].Start)
	})

	for i := 0; i+1 < len(day); i++ {
		gap := day[i+1].Start.Sub(day[i].End())
		if gap > threshold {
			day[i].Gap = gap
			day[i].Note = gapNote(gap)
		}
	}
	return day
}

// Notes returns the occupancy ID to note side table for flagged entries.
func Notes(annotated []AnnotatedOccupancy) map[uuid.UUID]string {
	notes := make(map[uuid.UUID]string)
	for _, a := range annotated {
		if a.HasNote() {
			notes[a.ID] = a.Note
		}
	}
	return notes
}

func gapNote(gap time.Duration) string {
	return fmt.Sprintf("Large gap of %d minutes before next appointment", int(gap.Minutes()))
}
