package insights

import (
	"github.com/spf13/cobra"
)

// Cmd is the insights command group
var Cmd = NewCmd()

// NewCmd builds the insights command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Demand forecasts and appointment patterns",
		Long: `Analyze past appointments.

Examples:
  meditrack insights forecast                     # Forecast the next 30 days
  meditrack insights forecast --doctor <id> --mode daily_mean
  meditrack insights patterns --from 2024-01-01   # Weekday, hour and status breakdown`,
	}
	cmd.AddCommand(newForecastCmd())
	cmd.AddCommand(newPatternsCmd())
	return cmd
}
