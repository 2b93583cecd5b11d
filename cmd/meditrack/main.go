package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	"github.com/felixgeelhaar/meditrack/adapter/cli/appointment"
	"github.com/felixgeelhaar/meditrack/adapter/cli/insights"
	"github.com/felixgeelhaar/meditrack/adapter/cli/outbox"
	"github.com/felixgeelhaar/meditrack/adapter/cli/schedule"
	"github.com/felixgeelhaar/meditrack/internal/app"
	"github.com/felixgeelhaar/meditrack/pkg/config"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)

	cli.AddCommand(appointment.Cmd)
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(insights.Cmd)
	cli.AddCommand(outbox.Cmd)

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, configFile string, verbose bool) (*cli.App, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.AddSource = cfg.LogSource
	logCfg.Environment = cfg.AppEnv
	if verbose {
		logCfg.Level = observability.LogLevelDebug
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return cli.NewApp(container), container.Close, nil
}
