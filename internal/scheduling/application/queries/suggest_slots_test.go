package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestSlotsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()
	hours := WorkingHours{Start: 9 * time.Hour, End: 11 * time.Hour, Stride: time.Hour, DefaultDuration: time.Hour}

	repo := new(mockAppointmentRepo)
	repo.On("FindByDoctor", ctx, doctorID, at(14, 0, 0), at(18, 0, 0)).
		Return([]*domain.Appointment{
			appointment(uuid.New(), doctorID, at(16, 9, 0), 60, domain.StatusScheduled),
		}, nil)

	handler := NewSuggestSlotsHandler(repo, hours, nil)

	tests := []struct {
		name        string
		prefs       domain.Preferences
		limit       int
		want        []time.Time
		wantMatched bool
	}{
		{
			name:        "no preferences",
			want:        []time.Time{at(15, 9, 0), at(15, 10, 0), at(16, 10, 0), at(17, 9, 0), at(17, 10, 0)},
			wantMatched: true,
		},
		{
			name:        "tuesday only",
			prefs:       domain.Preferences{Days: []time.Weekday{time.Tuesday}},
			want:        []time.Time{at(16, 10, 0)},
			wantMatched: true,
		},
		{
			name:        "morning hours with limit",
			prefs:       domain.Preferences{Hours: []domain.HourRange{{Start: 9, End: 10}}},
			limit:       1,
			want:        []time.Time{at(15, 9, 0)},
			wantMatched: true,
		},
		{
			name:  "unmatched preferences fall back",
			prefs: domain.Preferences{Days: []time.Weekday{time.Sunday}},
			limit: 2,
			want:  []time.Time{at(15, 9, 0), at(15, 10, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler.Handle(ctx, SuggestSlotsQuery{
				DoctorID:    doctorID,
				From:        at(15, 14, 0),
				Days:        3,
				Preferences: tt.prefs,
				Limit:       tt.limit,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Slots)
			assert.Equal(t, tt.wantMatched, result.Matched)
		})
	}
}
