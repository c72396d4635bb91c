// Command server runs the HTTP conversion service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/ffl2sqlite/internal/config"
	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/JonMunkholm/ffl2sqlite/internal/logging"
	"github.com/JonMunkholm/ffl2sqlite/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	service, server, err := setup(cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	startJobs(jobCtx, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		shutdown(shutdownCtx, service, server)
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
}

// setup creates the work dir and builds the service and its HTTP server.
func setup(cfg *config.Config) (*core.Service, *web.Server, error) {
	if cfg.Upload.WorkDir != "" {
		if err := os.MkdirAll(cfg.Upload.WorkDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create work dir %s: %w", cfg.Upload.WorkDir, err)
		}
	}

	service := core.NewService(core.Options{
		BatchSize:     cfg.Convert.BatchSize,
		Timeout:       cfg.Convert.Timeout,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	})
	return service, web.NewServer(service, cfg), nil
}

// startJobs launches the background jobs; they stop when ctx is cancelled.
func startJobs(ctx context.Context, cfg *config.Config) {
	go core.StartSweepScheduler(ctx, core.SweepConfig{
		Dir:           cfg.Upload.WorkDir,
		MaxAge:        cfg.Upload.StaleAge,
		CheckInterval: cfg.Upload.SweepInterval,
	})
}

// shutdown waits for running conversions, then stops the server.
func shutdown(ctx context.Context, service *core.Service, server *web.Server) {
	limiter := service.Limiter()
	if active := limiter.Active(); active > 0 {
		slog.Info("waiting for conversions to complete", "active", active)
		if err := limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("conversions did not complete in time", "error", err)
		} else {
			slog.Info("all conversions completed")
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
