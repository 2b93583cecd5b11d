// Package clitest wires a real App over a throwaway SQLite database for
// command tests.
package clitest

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/meditrack/adapter/cli"
	internalApp "github.com/felixgeelhaar/meditrack/internal/app"
	"github.com/felixgeelhaar/meditrack/pkg/config"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// Config is a local-mode configuration rooted in t's temp dir.
func Config(t testing.TB) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                     "test",
		SQLitePath:                 filepath.Join(t.TempDir(), "meditrack.db"),
		WorkdayStart:               9 * time.Hour,
		WorkdayEnd:                 17 * time.Hour,
		SlotStride:                 30 * time.Minute,
		DefaultAppointmentDuration: 30 * time.Minute,
		GapThreshold:               30 * time.Minute,
		BookingLockTTL:             5 * time.Second,
		ForecastHorizonDays:        7,
		ForecastMode:               "cumulative",
		ForecastCacheTTL:           time.Minute,
		BreakerFailures:            3,
		BreakerTimeout:             time.Second,
		OutboxPollInterval:         10 * time.Millisecond,
		OutboxBatchSize:            10,
		OutboxMaxRetries:           3,
	}
}

// NewApp builds a container from cfg (Config(t) when nil), installs it as
// the CLI App and reads command-line times as UTC. Everything is undone when
// t ends. The container gives tests direct access to storage.
func NewApp(t testing.TB, cfg *config.Config) (*cli.App, *internalApp.Container) {
	t.Helper()
	if cfg == nil {
		cfg = Config(t)
	}

	c, err := internalApp.NewContainer(context.Background(), cfg, observability.NopLogger())
	require.NoError(t, err)

	previous := cli.Location
	cli.Location = time.UTC
	app := cli.NewApp(c)
	cli.SetApp(app)

	t.Cleanup(func() {
		cli.SetApp(nil)
		cli.Location = previous
		c.Close()
	})
	return app, c
}

// Run executes cmd with args and returns what it printed.
func Run(t testing.TB, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
