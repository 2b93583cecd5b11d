package insights

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/insights/application/queries"
	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	"github.com/spf13/cobra"
)

// defaultHistoryDays is how far back --from reaches when omitted.
const defaultHistoryDays = 90

func newForecastCmd() *cobra.Command {
	var (
		doctor  string
		from    string
		to      string
		today   string
		horizon int
		mode    string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast appointment demand per day",
		Long: `Average the appointments between --from and --to per weekday and
project the averages onto the --horizon days after --today.

Modes:
  cumulative   each appointment adds its running position within its day
  daily_mean   each day adds its total`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.ForecastDemandQuery{HorizonDays: horizon}
			if query.DoctorID, err = cli.ParseOptionalID("doctor", doctor); err != nil {
				return err
			}
			if query.Today, err = cli.ParseDate(today); err != nil {
				return err
			}
			query.To = query.Today
			if to != "" {
				if query.To, err = cli.ParseDate(to); err != nil {
					return err
				}
			}
			query.From = query.To.AddDate(0, 0, -defaultHistoryDays)
			if from != "" {
				if query.From, err = cli.ParseDate(from); err != nil {
					return err
				}
			}
			if mode != "" {
				if query.Mode, err = domain.ParseForecastMode(mode); err != nil {
					return err
				}
			}

			forecast, err := app.ForecastDemandHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to forecast demand: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(forecast)
			}

			fmt.Fprintf(out, "Demand forecast (%s)\n", forecast.Mode)
			fmt.Fprintf(out, "History: %s to %s\n", query.From.Format("2006-01-02"), query.To.Format("2006-01-02"))
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fmt.Fprintln(out, "Weekday averages:")
			for _, day := range domain.Weekdays {
				fmt.Fprintf(out, "  %-10s %5.2f\n", day, forecast.WeekdayAverages[day])
			}
			fmt.Fprintln(out, strings.Repeat("-", 50))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDAY\tEXPECTED")
			for _, p := range forecast.Predicted {
				fmt.Fprintf(w, "%s\t%s\t%.1f\n", p.Date.Format("2006-01-02"), p.Date.Weekday().String()[:3], p.Expected)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "only this doctor (default whole practice)")
	cmd.Flags().StringVar(&from, "from", "", "first history date (YYYY-MM-DD, default 90 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last history date, inclusive (YYYY-MM-DD, default --today)")
	cmd.Flags().StringVar(&today, "today", "", "date the forecast starts after (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "days to forecast (default FORECAST_HORIZON_DAYS)")
	cmd.Flags().StringVar(&mode, "mode", "", "cumulative or daily_mean (default FORECAST_MODE)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
