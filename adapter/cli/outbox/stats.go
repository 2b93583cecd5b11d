package outbox

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the outbox backlog",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			counts, err := app.OutboxRepo.Counts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count outbox messages: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]int{
					"pending":       counts.Pending,
					"dead_lettered": counts.DeadLettered,
					"published":     counts.Published,
				})
			}
			fmt.Fprintf(out, "Pending:       %d\n", counts.Pending)
			fmt.Fprintf(out, "Dead-lettered: %d\n", counts.DeadLettered)
			fmt.Fprintf(out, "Published:     %d\n", counts.Published)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
