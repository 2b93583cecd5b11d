package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

func newOptimizeCmd() *cobra.Command {
	var (
		doctor    string
		date      string
		threshold time.Duration
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Flag idle gaps in a doctor's day",
		Long: `List a doctor's active appointments for one day in order and flag
every appointment followed by more than --threshold of idle time. Nothing
is moved.

Examples:
  meditrack schedule optimize --doctor <id> --date 2024-01-15
  meditrack schedule optimize --doctor <id> --threshold 45m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.OptimizeDayQuery{Threshold: threshold}
			if query.DoctorID, err = cli.ParseID("doctor", doctor); err != nil {
				return err
			}
			if query.Date, err = cli.ParseDate(date); err != nil {
				return err
			}

			day, err := app.OptimizeDayHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to review schedule: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schedule for %s\n", query.Date.Format("Monday, January 2, 2006"))
			fmt.Fprintln(out, strings.Repeat("-", 50))
			if len(day) == 0 {
				fmt.Fprintln(out, "\n  No appointments.")
				return nil
			}

			flagged := 0
			for _, a := range day {
				fmt.Fprintf(out, "  %s - %s  %s  %s\n",
					a.Start.In(cli.Location).Format("15:04"),
					a.End().In(cli.Location).Format("15:04"),
					a.ID,
					a.Status,
				)
				if a.HasNote() {
					flagged++
					fmt.Fprintf(out, "    ! %s\n", a.Note)
				}
			}
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fmt.Fprintf(out, "Total: %d appointments, %d gaps flagged\n", len(day), flagged)
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "doctor ID")
	cmd.Flags().StringVar(&date, "date", "", "date to review (YYYY-MM-DD, default today)")
	cmd.Flags().DurationVar(&threshold, "threshold", 0, "idle time that gets flagged (default GAP_THRESHOLD)")
	return cmd
}
