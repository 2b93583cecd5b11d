package outbox

import (
	"github.com/spf13/cobra"
)

// Cmd is the outbox command group
var Cmd = NewCmd()

// NewCmd builds the outbox command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Relay and inspect pending appointment events",
	}
	cmd.AddCommand(newRelayCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newPurgeCmd())
	return cmd
}
