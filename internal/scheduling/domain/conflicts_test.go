package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConflicts_SinglePair(t *testing.T) {
	first := occ(at(9, 0), 30, domain.StatusScheduled)
	second := occ(at(9, 15), 30, domain.StatusScheduled)
	third := occ(at(10, 0), 60, domain.StatusScheduled)

	pairs := domain.DetectConflicts([]domain.Occupancy{third, second, first})

	require.Len(t, pairs, 1)
	assert.Equal(t, first, pairs[0].Earlier)
	assert.Equal(t, second, pairs[0].Later)
	assert.Equal(t, 15*time.Minute, pairs[0].Overlap())
}

func TestDetectConflicts_CancelledNeverConflict(t *testing.T) {
	pairs := domain.DetectConflicts([]domain.Occupancy{
		occ(at(9, 0), 60, domain.StatusScheduled),
		occ(at(9, 15), 30, domain.StatusCancelled),
	})
	assert.Empty(t, pairs)
}

func TestDetectConflicts_FewerThanTwo(t *testing.T) {
	assert.Empty(t, domain.DetectConflicts(nil))
	assert.Empty(t, domain.DetectConflicts([]domain.Occupancy{occ(at(9, 0), 30, domain.StatusScheduled)}))
}

func TestDetectConflicts_ChainedOverlaps(t *testing.T) {
	long := occ(at(9, 0), 120, domain.StatusScheduled)
	a := occ(at(9, 30), 30, domain.StatusScheduled)
	b := occ(at(10, 30), 30, domain.StatusScheduled)
	touching := occ(at(11, 0), 30, domain.StatusScheduled)

	pairs := domain.DetectConflicts([]domain.Occupancy{touching, b, a, long})

	require.Len(t, pairs, 2)
	assert.Equal(t, long, pairs[0].Earlier)
	assert.Equal(t, a, pairs[0].Later)
	assert.Equal(t, long, pairs[1].Earlier)
	assert.Equal(t, b, pairs[1].Later)
}

func TestDetectConflicts_EveryPairOnce(t *testing.T) {
	input := []domain.Occupancy{
		occ(at(9, 0), 60, domain.StatusScheduled),
		occ(at(9, 20), 60, domain.StatusScheduled),
		occ(at(9, 40), 60, domain.StatusScheduled),
		occ(at(12, 0), 30, domain.StatusScheduled),
	}

	pairs := domain.DetectConflicts(input)

	expected := 0
	for i := range input {
		for j := i + 1; j < len(input); j++ {
			if domain.Overlaps(input[i], input[j]) {
				expected++
			}
		}
	}
	assert.Len(t, pairs, expected)
	for _, p := range pairs {
		assert.True(t, domain.Overlaps(p.Earlier, p.Later))
		assert.False(t, p.Earlier.Start.After(p.Later.Start))
	}
}

func TestDetectConflicts_DoesNotMutateInput(t *testing.T) {
	input := []domain.Occupancy{
		occ(at(11, 0), 30, domain.StatusScheduled),
		occ(at(9, 0), 30, domain.StatusScheduled),
	}
	domain.DetectConflicts(input)
	assert.Equal(t, at(11, 0), input[0].Start)
}
