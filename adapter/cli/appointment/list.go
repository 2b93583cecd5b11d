package appointment

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		doctor  string
		patient string
		from    string
		to      string
		status  string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments between two dates",
		Long: `List appointments whose start falls between --from and --to, both
inclusive. Filter by doctor, patient or status.

Examples:
  meditrack appointment list --from 2024-01-15 --to 2024-01-19
  meditrack appointment list --doctor <id> --status scheduled --json`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			query := queries.SearchAppointmentsQuery{}
			if query.DoctorID, err = cli.ParseOptionalID("doctor", doctor); err != nil {
				return err
			}
			if query.PatientID, err = cli.ParseOptionalID("patient", patient); err != nil {
				return err
			}
			if query.From, err = cli.ParseDate(from); err != nil {
				return err
			}
			query.To = query.From
			if to != "" {
				if query.To, err = cli.ParseDate(to); err != nil {
					return err
				}
			}
			if status != "" {
				if query.Status, err = domain.ParseStatus(status); err != nil {
					return err
				}
			}

			appointments, err := app.SearchAppointmentsHandler.Handle(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to list appointments: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(appointments)
			}

			if len(appointments) == 0 {
				fmt.Fprintln(out, "No appointments found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTART\tEND\tDOCTOR\tPATIENT\tSTATUS")
			for _, a := range appointments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID,
					a.Start.In(cli.Location).Format("2006-01-02 15:04"),
					a.End.In(cli.Location).Format("15:04"),
					shortID(a.DoctorID.String()),
					shortID(a.PatientID.String()),
					a.Status,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fmt.Fprintf(out, "Total: %d appointments\n", len(appointments))
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "only this doctor")
	cmd.Flags().StringVarP(&patient, "patient", "p", "", "only this patient")
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive (YYYY-MM-DD, default --from)")
	cmd.Flags().StringVar(&status, "status", "", "only this status (scheduled, rescheduled, cancelled, completed, no-show)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
