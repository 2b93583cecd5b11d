package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/adapter/cli/clitest"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var doctorID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// at is 2024-01-15 (a Monday) plus day days, in UTC.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, 15+day, hour, minute, 0, 0, time.UTC)
}

func book(t *testing.T, app *cli.App, start time.Time, minutes int) {
	t.Helper()
	_, err := app.BookAppointmentHandler.Handle(context.Background(), commands.BookAppointmentCommand{
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		Start:           start,
		DurationMinutes: minutes,
	})
	require.NoError(t, err)
}

func TestAvailable(t *testing.T) {
	app, _ := clitest.NewApp(t, nil)
	book(t, app, at(0, 9, 0), 60)

	out, err := clitest.Run(t, NewCmd(), "available", "--doctor", doctorID.String(), "--date", "2024-01-15")

	require.NoError(t, err)
	assert.Contains(t, out, "Available slots for Monday, January 15, 2024")
	assert.Contains(t, out, "Working hours: 09:00 - 17:00")
	assert.Contains(t, out, "Duration: 30m")
	assert.NotContains(t, out, "  09:00 - 09:30")
	assert.NotContains(t, out, "  09:30 - 10:00")
	assert.Contains(t, out, "  10:00 - 10:30")
	assert.Contains(t, out, "  16:30 - 17:00")
	assert.Contains(t, out, "Total: 14 slots")
}

func TestAvailable_CustomWindow(t *testing.T) {
	clitest.NewApp(t, nil)

	out, err := clitest.Run(t, NewCmd(), "available",
		"--doctor", doctorID.String(),
		"--date", "2024-01-15",
		"--start", "08:00",
		"--end", "10:00",
		"--duration", "60",
		"--stride", "15m",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Working hours: 08:00 - 10:00")
	assert.Contains(t, out, "Duration: 1h")
	assert.Contains(t, out, "  08:45 - 09:45")
	assert.Contains(t, out, "Total: 5 slots")
}

func TestAvailable_FullyBooked(t *testing.T) {
	app, _ := clitest.NewApp(t, nil)
	book(t, app, at(0, 9, 0), 8*60)

	out, err := clitest.Run(t, NewCmd(), "available", "--doctor", doctorID.String(), "--date", "2024-01-15")

	require.NoError(t, err)
	assert.Contains(t, out, "No available slots found.")
}

func TestAvailable_InvalidFlags(t *testing.T) {
	clitest.NewApp(t, nil)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing doctor", args: []string{"available"}, wantErr: "--doctor is required"},
		{name: "bad date", args: []string{"available", "--doctor", doctorID.String(), "--date", "15/01/2024"}, wantErr: "invalid date"},
		{name: "start without end", args: []string{"available", "--doctor", doctorID.String(), "--start", "08:00"}, wantErr: "given together"},
		{name: "bad clock", args: []string{"available", "--doctor", doctorID.String(), "--start", "8am", "--end", "12:00"}, wantErr: "invalid --start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clitest.Run(t, NewCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConflicts(t *testing.T) {
	_, c := clitest.NewApp(t, nil)
	ctx := context.Background()

	// Bookings refuse overlaps, so double bookings are written straight to storage.
	first, err := domain.NewAppointment(uuid.New(), doctorID, at(1, 9, 0), 60, "")
	require.NoError(t, err)
	second, err := domain.NewAppointment(uuid.New(), doctorID, at(1, 9, 30), 30, "")
	require.NoError(t, err)
	otherDoctor, err := domain.NewAppointment(uuid.New(), uuid.New(), at(1, 9, 15), 30, "")
	require.NoError(t, err)
	for _, a := range []*domain.Appointment{first, second, otherDoctor} {
		require.NoError(t, c.AppointmentRepo.Save(ctx, a))
	}

	t.Run("found", func(t *testing.T) {
		out, err := clitest.Run(t, NewCmd(), "conflicts", "--from", "2024-01-15", "--to", "2024-01-16")

		require.NoError(t, err)
		assert.Contains(t, out, first.ID().String())
		assert.Contains(t, out, second.ID().String())
		assert.NotContains(t, out, otherDoctor.ID().String())
		assert.Contains(t, out, "by 30m")
		assert.Contains(t, out, "Total: 1 conflicts")
	})

	t.Run("outside range", func(t *testing.T) {
		out, err := clitest.Run(t, NewCmd(), "conflicts", "--from", "2024-01-15")

		require.NoError(t, err)
		assert.Equal(t, "No conflicts found.\n", out)
	})

	t.Run("other doctor", func(t *testing.T) {
		out, err := clitest.Run(t, NewCmd(), "conflicts", "--from", "2024-01-16", "--doctor", uuid.NewString())

		require.NoError(t, err)
		assert.Equal(t, "No conflicts found.\n", out)
	})
}

func TestOptimize(t *testing.T) {
	app, _ := clitest.NewApp(t, nil)
	book(t, app, at(0, 9, 0), 30)
	book(t, app, at(0, 9, 30), 30)
	book(t, app, at(0, 12, 0), 30)

	out, err := clitest.Run(t, NewCmd(), "optimize", "--doctor", doctorID.String(), "--date", "2024-01-15")

	require.NoError(t, err)
	assert.Contains(t, out, "  09:00 - 09:30")
	assert.Contains(t, out, "! Large gap of 120 minutes before next appointment")
	assert.Contains(t, out, "Total: 3 appointments, 1 gaps flagged")
}

func TestOptimize_Threshold(t *testing.T) {
	app, _ := clitest.NewApp(t, nil)
	book(t, app, at(0, 9, 0), 30)
	book(t, app, at(0, 12, 0), 30)

	out, err := clitest.Run(t, NewCmd(), "optimize", "--doctor", doctorID.String(), "--date", "2024-01-15", "--threshold", "3h")

	require.NoError(t, err)
	assert.Contains(t, out, "0 gaps flagged")
}

func TestOptimize_EmptyDay(t *testing.T) {
	clitest.NewApp(t, nil)

	out, err := clitest.Run(t, NewCmd(), "optimize", "--doctor", doctorID.String(), "--date", "2024-01-15")

	require.NoError(t, err)
	assert.Contains(t, out, "No appointments.")
}

func TestSuggest(t *testing.T) {
	app, _ := clitest.NewApp(t, nil)
	book(t, app, at(2, 9, 0), 60)

	t.Run("matching preferences", func(t *testing.T) {
		out, err := clitest.Run(t, NewCmd(), "suggest",
			"--doctor", doctorID.String(),
			"--from", "2024-01-15",
			"--day", "wed",
			"--hours", "9-11",
		)

		require.NoError(t, err)
		assert.NotContains(t, out, "showing all free slots")
		assert.NotContains(t, out, "Wed 2024-01-17 09:00")
		assert.Contains(t, out, "Wed 2024-01-17 10:00")
		assert.Contains(t, out, "Wed 2024-01-17 10:30")
		assert.Contains(t, out, "Total: 2 slots")
	})

	t.Run("no match falls back", func(t *testing.T) {
		out, err := clitest.Run(t, NewCmd(), "suggest",
			"--doctor", doctorID.String(),
			"--from", "2024-01-15",
			"--days", "1",
			"--hours", "20-22",
			"--limit", "3",
		)

		require.NoError(t, err)
		assert.Contains(t, out, "No slot matches the preferences; showing all free slots.")
		assert.Contains(t, out, "Mon 2024-01-15 09:00")
		assert.Contains(t, out, "Total: 3 slots")
	})

	t.Run("unknown weekday", func(t *testing.T) {
		_, err := clitest.Run(t, NewCmd(), "suggest", "--doctor", doctorID.String(), "--day", "someday")

		assert.ErrorIs(t, err, domain.ErrUnknownWeekday)
	})

	t.Run("bad hours", func(t *testing.T) {
		_, err := clitest.Run(t, NewCmd(), "suggest", "--doctor", doctorID.String(), "--hours", "12-9")

		assert.ErrorIs(t, err, domain.ErrInvalidHourRange)
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 30 * time.Minute, want: "30m"},
		{in: time.Hour, want: "1h"},
		{in: 90 * time.Minute, want: "1h 30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}
