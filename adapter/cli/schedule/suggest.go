package schedule

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		doctor   string
		from     string
		days     int
		duration int
		weekdays []string
		hours    []string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest slots matching a patient's preferences",
		Long: `Search the next --days days for free slots and list the ones that
match the preferred weekdays and hours first. When nothing matches, every
free slot is listed.

Examples:
  meditrack schedule suggest --doctor <id> --day mon --day wed --hours 9-12
  meditrack schedule suggest --doctor <id> --from 2024-01-15 --days 14 --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.SuggestSlotsQuery{Days: days, DurationMinutes: duration, Limit: limit}
			if query.DoctorID, err = cli.ParseID("doctor", doctor); err != nil {
				return err
			}
			if query.From, err = cli.ParseDate(from); err != nil {
				return err
			}
			for _, name := range weekdays {
				day, err := domain.ParseWeekday(name)
				if err != nil {
					return err
				}
				query.Preferences.Days = append(query.Preferences.Days, day)
			}
			for _, value := range hours {
				r, err := domain.ParseHourRange(value)
				if err != nil {
					return err
				}
				query.Preferences.Hours = append(query.Preferences.Hours, r)
			}

			result, err := app.SuggestSlotsHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to suggest slots: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(result.Slots) == 0 {
				fmt.Fprintln(out, "No free slots in the searched period.")
				return nil
			}
			if !result.Matched {
				fmt.Fprintln(out, "No slot matches the preferences; showing all free slots.")
			}
			fmt.Fprintln(out, strings.Repeat("-", 50))
			for _, slot := range result.Slots {
				fmt.Fprintf(out, "  %s\n", slot.In(cli.Location).Format("Mon 2006-01-02 15:04"))
			}
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fmt.Fprintf(out, "Total: %d slots\n", len(result.Slots))
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "doctor ID")
	cmd.Flags().StringVar(&from, "from", "", "first date to search (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&days, "days", 7, "number of days to search")
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "slot length in minutes (default from DEFAULT_APPOINTMENT_DURATION)")
	cmd.Flags().StringSliceVar(&weekdays, "day", nil, "preferred weekday (repeatable, e.g. mon)")
	cmd.Flags().StringSliceVar(&hours, "hours", nil, "preferred hour range START-END (repeatable, e.g. 9-12)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of suggestions (0 for all)")
	return cmd
}
