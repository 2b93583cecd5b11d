package appointment

import (
	"fmt"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

func newRescheduleCmd() *cobra.Command {
	var (
		start string
		actor string
	)

	cmd := &cobra.Command{
		Use:   "reschedule <appointment-id>",
		Short: "Move an appointment to a new start time",
		Long: `Move an appointment, keeping its duration.

Examples:
  meditrack appointment reschedule <id> --start "2024-01-16 10:00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			id, err := cli.ParseID("appointment", args[0])
			if err != nil {
				return err
			}
			actorID, err := cli.ParseOptionalID("actor", actor)
			if err != nil {
				return err
			}
			newStart, err := cli.ParseDateTime(start)
			if err != nil {
				return err
			}

			result, err := app.RescheduleAppointmentHandler.Handle(cmd.Context(), commands.RescheduleAppointmentCommand{
				AppointmentID: id,
				NewStart:      newStart,
				ActorID:       actorID,
			})
			if err != nil {
				return fmt.Errorf("failed to reschedule appointment: %w", err)
			}
			app.FlushOutbox(cmd.Context())

			fmt.Fprintf(cmd.OutOrStdout(), "Rescheduled %s: %s -> %s\n",
				result.AppointmentID,
				result.OldStart.In(cli.Location).Format("2006-01-02 15:04"),
				result.NewStart.In(cli.Location).Format("2006-01-02 15:04"),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&start, "start", "s", "", `new start time ("YYYY-MM-DD HH:MM")`)
	cmd.Flags().StringVar(&actor, "actor", "", "ID of the person making the change")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
