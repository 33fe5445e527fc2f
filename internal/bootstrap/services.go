package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahylith/formagent/config"
	"github.com/ahylith/formagent/internal/artifacts"
	"github.com/ahylith/formagent/internal/browser"
	"github.com/ahylith/formagent/internal/chat"
	"github.com/ahylith/formagent/internal/domain/job"
	"github.com/ahylith/formagent/internal/domain/model"
	"github.com/ahylith/formagent/internal/observability/statsd"
	"github.com/ahylith/formagent/internal/runner"
)

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Registry     *job.Registry
	Sessions     *browser.Manager
	Artifacts    *artifacts.Store
	Statsd       *statsd.Client
	Runner       *runner.Runner
	Orchestrator *runner.Orchestrator
	Chat         *chat.Responder
}

// BuildServices wires the full service graph. ctx bounds the lifetime of job
// runs launched through the orchestrator.
func BuildServices(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (ServiceContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	statsdClient, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "formagent",
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("statsd client: %w", err)
	}

	sessions, err := browser.NewManager(cfg.Browser, logger)
	if err != nil {
		_ = statsdClient.Close()
		return ServiceContainer{}, fmt.Errorf("browser manager: %w", err)
	}

	registry := job.NewRegistry(logger)
	store := artifacts.NewStore(cfg.Jobs.ResultsDir, cfg.Browser.ScreenshotDir, logger)

	jobRunner := runner.NewRunner(runner.Options{
		Registry:  registry,
		Sessions:  sessions,
		Artifacts: store,
		Metrics:   statsdClient,
		Browser:   cfg.Browser,
		Logger:    logger,
	})
	orchestrator := runner.NewOrchestrator(ctx, registry, jobRunner)

	responder := chat.NewResponder(registry, chatStarter(orchestrator, cfg), logger)

	return ServiceContainer{
		Registry:     registry,
		Sessions:     sessions,
		Artifacts:    store,
		Statsd:       statsdClient,
		Runner:       jobRunner,
		Orchestrator: orchestrator,
		Chat:         responder,
	}, nil
}

// chatStarter adapts the orchestrator for chat-initiated runs, which carry no
// explicit mapping or per-job config.
func chatStarter(orchestrator *runner.Orchestrator, cfg config.AppConfig) chat.StartFunc {
	return func(jobID, targetURL string) error {
		_, err := orchestrator.Start(jobID, job.StartParams{
			TargetURL: targetURL,
			Mapping:   model.DefaultMappingFor(targetURL),
			Config: model.JobConfig{
				RowDelay: cfg.Jobs.RowDelay,
				Headless: cfg.Browser.Headless,
			},
		})
		return err
	}
}

// Close releases resources held by the container.
func (c *ServiceContainer) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if c.Sessions != nil {
		if err := c.Sessions.Close(); err != nil {
			logger.Error("closing browser manager failed", "error", err)
		}
	}
	if c.Statsd != nil {
		if err := c.Statsd.Close(); err != nil {
			logger.Error("closing statsd client failed", "error", err)
		}
	}
}
