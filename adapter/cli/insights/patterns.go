package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/insights/application/queries"
	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	scheduling "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var statusOrder = []scheduling.Status{
	scheduling.StatusScheduled,
	scheduling.StatusRescheduled,
	scheduling.StatusCompleted,
	scheduling.StatusCancelled,
	scheduling.StatusNoShow,
}

func newPatternsCmd() *cobra.Command {
	var (
		from   string
		to     string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Break appointments down by weekday, hour and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.AppointmentPatternsQuery{}
			if query.To, err = cli.ParseDate(to); err != nil {
				return err
			}
			query.From = query.To.AddDate(0, 0, -defaultHistoryDays)
			if from != "" {
				if query.From, err = cli.ParseDate(from); err != nil {
					return err
				}
			}

			patterns, err := app.AppointmentPatternsHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to analyze appointments: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(patterns)
			}

			fmt.Fprintf(out, "Appointment patterns %s to %s\n", query.From.Format("2006-01-02"), query.To.Format("2006-01-02"))
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fmt.Fprintf(out, "Total appointments: %d\n", patterns.Total)
			if patterns.Total == 0 {
				return nil
			}
			fmt.Fprintf(out, "Cancellation rate:  %.1f%%\n", patterns.CancellationRate)
			fmt.Fprintf(out, "No-show rate:       %.1f%%\n", patterns.NoShowRate)

			fmt.Fprintln(out, "\nBy weekday:")
			for _, day := range domain.Weekdays {
				fmt.Fprintf(out, "  %-10s %d\n", day, patterns.ByWeekday[day])
			}

			fmt.Fprintln(out, "\nBy hour:")
			for _, h := range patterns.Hours() {
				fmt.Fprintf(out, "  %02d:00  %d\n", h, patterns.ByHour[h])
			}

			fmt.Fprintln(out, "\nBy status:")
			for _, s := range statusOrder {
				if n := patterns.ByStatus[s]; n > 0 {
					fmt.Fprintf(out, "  %-12s %d\n", s, n)
				}
			}

			fmt.Fprintln(out, "\nBusiest doctors:")
			for i, d := range patterns.TopDoctors {
				fmt.Fprintf(out, "  %d. %s  %d\n", i+1, d.DoctorID, d.Appointments)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD, default 90 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
