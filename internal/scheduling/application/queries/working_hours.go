package queries

import (
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
)

// WorkingHours is the daily window slots are offered in. Start and End are
// offsets from midnight.
type WorkingHours struct {
	Start           time.Duration
	End             time.Duration
	Stride          time.Duration
	DefaultDuration time.Duration
}

// DefaultWorkingHours is 09:00 to 17:00 with 30 minute slots.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		Start:           9 * time.Hour,
		End:             17 * time.Hour,
		Stride:          domain.DefaultStride,
		DefaultDuration: 30 * time.Minute,
	}
}

// Window returns the working window on date's calendar day. Start and End
// are read as wall-clock times, so the window keeps its hours on days with a
// DST change.
func (w WorkingHours) Window(date time.Time) domain.TimeRange {
	return domain.TimeRange{Start: clockOn(date, w.Start), End: clockOn(date, w.End)}
}

func clockOn(date time.Time, offset time.Duration) time.Time {
	y, m, d := date.Date()
	hour := int(offset / time.Hour)
	minute := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, hour, minute, 0, 0, date.Location())
}

// withDefaults fills zero fields from DefaultWorkingHours.
func (w WorkingHours) withDefaults() WorkingHours {
	d := DefaultWorkingHours()
	if w.Start == 0 && w.End == 0 {
		w.Start, w.End = d.Start, d.End
	}
	if w.Stride <= 0 {
		w.Stride = d.Stride
	}
	if w.DefaultDuration <= 0 {
		w.DefaultDuration = d.DefaultDuration
	}
	return w
}

// dayRange is [midnight of date, next midnight).
func dayRange(date time.Time) (time.Time, time.Time) {
	day := domain.StartOfDay(date)
	return day, day.AddDate(0, 0, 1)
}
