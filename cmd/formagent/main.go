package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahylith/formagent/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting formagent service",
		"addr", cfg.HTTP.Addr,
		"headless", cfg.Browser.Headless,
		"metrics", cfg.Observability.Metrics.IsEnabled())

	// runCtx bounds every job run; canceling it stops in-flight jobs at
	// their next row boundary.
	runCtx, stopRuns := context.WithCancel(ctx)
	defer stopRuns()

	services, err := bootstrap.BuildServices(runCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close(logger)

	server := bootstrap.StartHTTPServer(cfg, services, logger)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	stopRuns()
	return bootstrap.ShutdownHTTPServer(ctx, server, cfg, logger)
}
