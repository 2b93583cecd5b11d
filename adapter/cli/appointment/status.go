package appointment

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/internal/scheduling/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type transition func(ctx context.Context, app *cli.App, id, actorID uuid.UUID) (*commands.StatusChangeResult, error)

func newStatusCmd(use, short, verb string, run transition) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   use + " <appointment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
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

			result, err := run(cmd.Context(), app, id, actorID)
			if err != nil {
				return fmt.Errorf("failed to %s appointment: %w", verb, err)
			}
			app.FlushOutbox(cmd.Context())

			fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s is now %s\n", result.AppointmentID, result.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "ID of the person making the change")
	return cmd
}

func newCancelCmd() *cobra.Command {
	return newStatusCmd("cancel", "Cancel an appointment and free its time", "cancel",
		func(ctx context.Context, app *cli.App, id, actorID uuid.UUID) (*commands.StatusChangeResult, error) {
			return app.CancelAppointmentHandler.Handle(ctx, commands.CancelAppointmentCommand{AppointmentID: id, ActorID: actorID})
		})
}

func newCompleteCmd() *cobra.Command {
	return newStatusCmd("complete", "Record that the visit took place", "complete",
		func(ctx context.Context, app *cli.App, id, actorID uuid.UUID) (*commands.StatusChangeResult, error) {
			return app.CompleteAppointmentHandler.Handle(ctx, commands.CompleteAppointmentCommand{AppointmentID: id, ActorID: actorID})
		})
}

func newNoShowCmd() *cobra.Command {
	return newStatusCmd("no-show", "Record that the patient did not attend", "mark no-show for",
		func(ctx context.Context, app *cli.App, id, actorID uuid.UUID) (*commands.StatusChangeResult, error) {
			return app.MarkNoShowHandler.Handle(ctx, commands.MarkNoShowCommand{AppointmentID: id, ActorID: actorID})
		})
}
