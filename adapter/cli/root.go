package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/spf13/cobra"
)

// Bootstrap builds the App once flags are parsed. The returned func
// releases whatever the App holds.
type Bootstrap func(ctx context.Context, configFile string, verbose bool) (*App, func(), error)

var (
	cfgFile   string
	verbose   bool
	logger    *slog.Logger
	bootstrap Bootstrap
	cleanup   func()
)

type commandContext struct {
	startedAt time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meditrack",
	Short: "MediTrack - appointment scheduling for healthcare practices",
	Long: `MediTrack books, moves and audits doctor appointments.

It finds free slots, refuses double bookings, flags idle gaps in a
doctor's day, ranks slots by patient preference and forecasts demand
from appointment history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx := observability.NewCommandContext(cmd.Context(), cmd.CommandPath())
		ctx = context.WithValue(ctx, commandContextKey{}, commandContext{startedAt: time.Now()})
		cmd.SetContext(ctx)

		if app == nil && bootstrap != nil {
			a, done, err := bootstrap(ctx, cfgFile, verbose)
			if err != nil {
				return err
			}
			SetApp(a)
			cleanup = done
		}

		Logger().DebugContext(ctx, "command start", "command", cmd.CommandPath())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		Logger().DebugContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command and releases the App afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "env file to load instead of ./.env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetBootstrap installs the function that builds the App.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
