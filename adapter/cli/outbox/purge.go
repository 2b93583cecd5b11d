package outbox

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/spf13/cobra"
)

func newPurgeCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete published events older than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			deleted, err := app.OutboxRepo.DeleteOld(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("failed to purge outbox: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d published events\n", deleted)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "minimum age of deleted events")
	return cmd
}
