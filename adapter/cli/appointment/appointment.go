package appointment

import (
	"github.com/spf13/cobra"
)

// Cmd is the appointment command group
var Cmd = NewCmd()

// NewCmd builds the appointment command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointment",
		Aliases: []string{"appt"},
		Short:   "Book and manage appointments",
		Long:    `Book, reschedule, cancel, complete and list doctor appointments.`,
	}
	cmd.AddCommand(newBookCmd())
	cmd.AddCommand(newRescheduleCmd())
	cmd.AddCommand(newCancelCmd())
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newNoShowCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}
