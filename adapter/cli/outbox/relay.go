package outbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newRelayCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish outbox events until interrupted",
		Long: `Poll the outbox and publish pending events until the process receives
SIGINT or SIGTERM. With --metrics-addr, Prometheus metrics are served at
/metrics on that address.

Examples:
  meditrack outbox relay
  meditrack outbox relay --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var server *http.Server
			serveErr := make(chan error, 1)
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(app.Gatherer, promhttp.HandlerOpts{}))
				server = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						serveErr <- err
					}
				}()
				fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on %s/metrics\n", metricsAddr)
			}

			app.OutboxProcessor.Start(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Relaying outbox events. Press Ctrl+C to stop.")

			select {
			case <-ctx.Done():
			case err = <-serveErr:
				err = fmt.Errorf("metrics server: %w", err)
			}
			app.OutboxProcessor.Stop()

			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if serr := server.Shutdown(shutdownCtx); serr != nil {
					cli.Logger().Warn("metrics server shutdown", "error", serr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}
