package schedule

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = NewCmd()

// NewCmd builds the schedule command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect doctors' schedules",
		Long:  `Find free slots, detect double bookings, review gaps and suggest slots by preference.`,
	}
	cmd.AddCommand(newAvailableCmd())
	cmd.AddCommand(newConflictsCmd())
	cmd.AddCommand(newOptimizeCmd())
	cmd.AddCommand(newSuggestCmd())
	return cmd
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 && minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}
