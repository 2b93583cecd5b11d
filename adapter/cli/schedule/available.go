package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/meditrack/pkg/config"
	"github.com/spf13/cobra"
)

func newAvailableCmd() *cobra.Command {
	var (
		doctor       string
		date         string
		duration     int
		stride       time.Duration
		workdayStart string
		workdayEnd   string
	)

	cmd := &cobra.Command{
		Use:   "available",
		Short: "Find a doctor's free slots on one day",
		Long: `Find free slots in a doctor's working day.

Examples:
  meditrack schedule available --doctor <id>
  meditrack schedule available --doctor <id> --date 2024-01-15 -d 45
  meditrack schedule available --doctor <id> --start 08:00 --end 12:00 --stride 15m`,
		Aliases: []string{"slots", "free"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.FindAvailableSlotsQuery{DurationMinutes: duration, Stride: stride}
			if query.DoctorID, err = cli.ParseID("doctor", doctor); err != nil {
				return err
			}
			if query.Date, err = cli.ParseDate(date); err != nil {
				return err
			}
			if (workdayStart == "") != (workdayEnd == "") {
				return fmt.Errorf("--start and --end must be given together")
			}
			if workdayStart != "" {
				if query.DayStart, err = config.ParseClock(workdayStart); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				if query.DayEnd, err = config.ParseClock(workdayEnd); err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
			}

			result, err := app.FindAvailableSlotsHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to find available slots: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available slots for %s\n", query.Date.Format("Monday, January 2, 2006"))
			fmt.Fprintf(out, "Working hours: %s - %s\n",
				result.Window.Start.In(cli.Location).Format("15:04"),
				result.Window.End.In(cli.Location).Format("15:04"),
			)
			fmt.Fprintf(out, "Duration: %s\n", formatDuration(result.Duration))
			fmt.Fprintln(out, strings.Repeat("-", 50))

			if len(result.Slots) == 0 {
				fmt.Fprintln(out, "\n  No available slots found.")
				return nil
			}
			for _, slot := range result.Slots {
				fmt.Fprintf(out, "  %s - %s\n",
					slot.In(cli.Location).Format("15:04"),
					slot.Add(result.Duration).In(cli.Location).Format("15:04"),
				)
			}
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fmt.Fprintf(out, "Total: %d slots\n", len(result.Slots))
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "doctor ID")
	cmd.Flags().StringVar(&date, "date", "", "date to check (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "slot length in minutes (default from DEFAULT_APPOINTMENT_DURATION)")
	cmd.Flags().DurationVar(&stride, "stride", 0, "spacing between slot starts (default from SLOT_STRIDE)")
	cmd.Flags().StringVar(&workdayStart, "start", "", "workday start (HH:MM, default WORKDAY_START)")
	cmd.Flags().StringVar(&workdayEnd, "end", "", "workday end (HH:MM, default WORKDAY_END)")
	return cmd
}
