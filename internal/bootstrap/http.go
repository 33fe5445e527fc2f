package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahylith/formagent/config"
	httpx "github.com/ahylith/formagent/internal/http"
)

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg config.AppConfig, services ServiceContainer, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Registry: services.Registry,
		Starter:  services.Orchestrator,
		Chat:     services.Chat,
		HTTP:     cfg.HTTP,
		Jobs:     cfg.Jobs,
		Browser:  cfg.Browser,
		Logger:   logger,
	})

	// No write timeout: the progress websocket holds its connection open for
	// the length of a run.
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, cfg config.AppConfig, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
