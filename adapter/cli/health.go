package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/spf13/cobra"
)

// ErrUnhealthy is returned when a required component is down.
var ErrUnhealthy = errors.New("meditrack is unhealthy")

// NewHealthCmd builds the health command.
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database, Redis and event publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := RequireApp()
			if err != nil {
				return err
			}

			results := app.Health.Check(cmd.Context())
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "  %-16s %-10s %s (%s)\n", r.Name, r.Status, r.Message, r.Duration.Round(time.Microsecond))
			}

			overall := observability.OverallStatus(results)
			fmt.Fprintf(out, "overall: %s\n", overall)
			if overall == observability.HealthStatusUnhealthy {
				return ErrUnhealthy
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(NewHealthCmd())
}
