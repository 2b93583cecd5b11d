package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/app"
	"github.com/felixgeelhaar/meditrack/pkg/config"
	"github.com/felixgeelhaar/meditrack/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.AddSource = cfg.LogSource
	logCfg.Service = "meditrack-worker"
	logCfg.Environment = cfg.AppEnv
	logger := observability.NewLogger(logCfg)

	logger.Info("starting meditrack worker")

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	container.OutboxProcessor.Start(ctx)

	go cleanupLoop(ctx, container, cfg, logger)

	var srv *http.Server
	if cfg.WorkerHTTPAddr != "" {
		srv = &http.Server{
			Addr:              cfg.WorkerHTTPAddr,
			Handler:           newMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("worker http server starting", "addr", cfg.WorkerHTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("worker http server error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down meditrack worker")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("worker http server shutdown error", "error", err)
		}
	}
}

// newMux serves /healthz (liveness with every check's result), /readyz
// (503 while a required component is down) and /metrics.
func newMux(c *app.Container) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := c.Health.Check(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"status": observability.OverallStatus(results),
			"checks": results,
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		results := c.Health.Check(checkCtx)
		if observability.OverallStatus(results) == observability.HealthStatusUnhealthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "checks": results})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func cleanupLoop(ctx context.Context, c *app.Container, cfg *config.Config, logger *slog.Logger) {
	if cfg.OutboxCleanupInterval <= 0 || cfg.OutboxRetention <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := c.OutboxRepo.DeleteOld(ctx, time.Now().Add(-cfg.OutboxRetention))
			if err != nil {
				logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("outbox cleanup completed", "deleted", deleted, "retention", cfg.OutboxRetention)
			}
		}
	}
}
