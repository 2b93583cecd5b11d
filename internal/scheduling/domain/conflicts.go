package domain

import (
	"sort"
	"time"
)

// ConflictPair is two occupancies whose intervals overlap. Earlier never
// starts after Later.
type ConflictPair struct {
	Earlier Occupancy
	Later   Occupancy
}

// Overlap returns how long the two occupancies share.
func (p ConflictPair) Overlap() time.Duration {
	end := p.Earlier.End()
	if p.Later.End().Before(end) {
		end = p.Later.End()
	}
	return end.Sub(p.Later.Start)
}

// DetectConflicts reports every overlapping pair of non-cancelled
// occupancies exactly once.
//
// The input is copied and stable-sorted by start. For each occupancy the
// forward scan stops at the first later occupancy that starts at or after its
// end, so the cost is O(n log n + k) for k reported pairs.
func DetectConflicts(occupancies []Occupancy) []ConflictPair {
	if len(occupancies) < 2 {
		return nil
	}

	sorted := make([]Occupancy, len(occupancies))
	copy(sorted, occupancies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var pairs []ConflictPair
	for i := range sorted {
		current := sorted[i]
		if current.IsCancelled() {
			continue
		}
		end := current.End()

		for j := i + 1; j < len(sorted); j++ {
			next := sorted[j]
			if next.IsCancelled() {
				continue
			}
			if !next.Start.Before(end) {
				break
			}
			pairs = append(pairs, ConflictPair{Earlier: current, Later: next})
		}
	}
	return pairs
}
