package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeDay(t *testing.T) {
	a := occ(at(9, 0), 30, domain.StatusScheduled)
	b := occ(at(9, 30), 30, domain.StatusScheduled)
	c := occ(at(11, 0), 30, domain.StatusCompleted)
	d := occ(at(13, 0), 30, domain.StatusScheduled)
	cancelled := occ(at(10, 0), 30, domain.StatusCancelled)
	nextDay := occ(at(9, 0).AddDate(0, 0, 1), 30, domain.StatusScheduled)
	for _, o := range []*domain.Occupancy{&a, &b, &c, &d, &cancelled, &nextDay} {
		o.ID = uuid.New()
	}

	day := domain.OptimizeDay([]domain.Occupancy{d, cancelled, b, nextDay, a, c}, at(0, 0), domain.DefaultGapThreshold)

	require.Len(t, day, 4)
	assert.Equal(t, a.ID, day[0].ID)
	assert.Equal(t, b.ID, day[1].ID)
	assert.Equal(t, c.ID, day[2].ID)
	assert.Equal(t, d.ID, day[3].ID)

	assert.False(t, day[0].HasNote())
	assert.Equal(t, "Large gap of 60 minutes before next appointment", day[1].Note)
	assert.Equal(t, 60*time.Minute, day[1].Gap)
	assert.Equal(t, "Large gap of 90 minutes before next appointment", day[2].Note)
	assert.False(t, day[3].HasNote())

	notes := domain.Notes(day)
	assert.Len(t, notes, 2)
	assert.Contains(t, notes, b.ID)
	assert.Contains(t, notes, c.ID)
}

func TestOptimizeDay_GapEqualToThresholdIsNotFlagged(t *testing.T) {
	day := domain.OptimizeDay([]domain.Occupancy{
		occ(at(9, 0), 30, domain.StatusScheduled),
		occ(at(10, 0), 30, domain.StatusScheduled),
	}, at(0, 0), 0)

	require.Len(t, day, 2)
	assert.False(t, day[0].HasNote())
}

func TestOptimizeDay_Empty(t *testing.T) {
	assert.Empty(t, domain.OptimizeDay(nil, at(0, 0), time.Hour))
}
