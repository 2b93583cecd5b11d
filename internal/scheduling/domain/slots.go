package domain

import "time"

// DefaultStride is the spacing between candidate slot starts.
const DefaultStride = 30 * time.Minute

// CandidateStarts enumerates slot starts across window at the given stride.
// A candidate is emitted only when the full duration fits before window.End.
func CandidateStarts(window TimeRange, duration, stride time.Duration) []time.Time {
	if window.IsEmpty() || duration <= 0 {
		return nil
	}
	if stride <= 0 {
		stride = DefaultStride
	}

	var starts []time.Time
	for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(stride) {
		starts = append(starts, t)
	}
	return starts
}

// FindAvailableSlots returns, in ascending order, every candidate start in
// window whose [start, start+duration) overlaps no non-cancelled occupancy.
// Inverted windows and non-positive durations yield no slots.
func FindAvailableSlots(occupancies []Occupancy, window TimeRange, duration, stride time.Duration) []time.Time {
	candidates := CandidateStarts(window, duration, stride)
	if len(candidates) == 0 {
		return nil
	}

	busy := make([]TimeRange, 0, len(occupancies))
	for _, o := range occupancies {
		if o.IsCancelled() {
			continue
		}
		busy = append(busy, o.Range())
	}

	slots := make([]time.Time, 0, len(candidates))
	for _, start := range candidates {
		slot := TimeRange{Start: start, End: start.Add(duration)}
		free := true
		for _, b := range busy {
			if slot.Overlaps(b) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, start)
		}
	}
	return slots
}
