package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

func newConflictsCmd() *cobra.Command {
	var (
		doctor string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Report double-booked appointments",
		Long: `Report every pair of overlapping active appointments of the same
doctor between --from and --to, both inclusive.

Examples:
  meditrack schedule conflicts --from 2024-01-15 --to 2024-01-19
  meditrack schedule conflicts --doctor <id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.DetectConflictsQuery{}
			if query.DoctorID, err = cli.ParseOptionalID("doctor", doctor); err != nil {
				return err
			}
			if query.From, err = cli.ParseDate(from); err != nil {
				return err
			}
			last := query.From
			if to != "" {
				if last, err = cli.ParseDate(to); err != nil {
					return err
				}
			}
			query.To = last.AddDate(0, 0, 1)

			pairs, err := app.DetectConflictsHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to detect conflicts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(pairs) == 0 {
				fmt.Fprintln(out, "No conflicts found.")
				return nil
			}
			for _, p := range pairs {
				fmt.Fprintf(out, "Doctor %s: %s (%s-%s) overlaps %s (%s-%s) by %s\n",
					p.Earlier.DoctorID,
					p.Earlier.ID,
					p.Earlier.Start.In(cli.Location).Format("2006-01-02 15:04"),
					p.Earlier.End().In(cli.Location).Format("15:04"),
					p.Later.ID,
					p.Later.Start.In(cli.Location).Format("15:04"),
					p.Later.End().In(cli.Location).Format("15:04"),
					formatDuration(p.Overlap()),
				)
			}
			fmt.Fprintf(out, "Total: %d conflicts\n", len(pairs))
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "only this doctor (default all doctors)")
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive (YYYY-MM-DD, default --from)")
	return cmd
}
