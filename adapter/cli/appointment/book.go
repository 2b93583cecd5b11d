package appointment

import (
	"fmt"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

func newBookCmd() *cobra.Command {
	var (
		patient  string
		doctor   string
		start    string
		duration int
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		Long: `Book an appointment for a patient with a doctor.

The booking is refused when it overlaps another active appointment of the
same doctor.

Examples:
  meditrack appointment book --patient <id> --doctor <id> --start "2024-01-15 09:00"
  meditrack appointment book --patient <id> --doctor <id> --start "2024-01-15 14:30" -d 45 --notes "follow-up"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			patientID, err := cli.ParseID("patient", patient)
			if err != nil {
				return err
			}
			doctorID, err := cli.ParseID("doctor", doctor)
			if err != nil {
				return err
			}
			startAt, err := cli.ParseDateTime(start)
			if err != nil {
				return err
			}
			if duration == 0 {
				duration = app.DefaultDurationMinutes
			}

			result, err := app.BookAppointmentHandler.Handle(cmd.Context(), commands.BookAppointmentCommand{
				PatientID:       patientID,
				DoctorID:        doctorID,
				Start:           startAt,
				DurationMinutes: duration,
				Notes:           notes,
			})
			if err != nil {
				return fmt.Errorf("failed to book appointment: %w", err)
			}
			app.FlushOutbox(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Booked appointment %s\n", result.AppointmentID)
			fmt.Fprintf(out, "  %s - %s\n",
				result.Start.In(cli.Location).Format("Mon 2006-01-02 15:04"),
				result.End.In(cli.Location).Format("15:04"),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&patient, "patient", "p", "", "patient ID")
	cmd.Flags().StringVar(&doctor, "doctor", "", "doctor ID")
	cmd.Flags().StringVarP(&start, "start", "s", "", `start time ("YYYY-MM-DD HH:MM")`)
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "duration in minutes (default from DEFAULT_APPOINTMENT_DURATION)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-text notes")
	return cmd
}
