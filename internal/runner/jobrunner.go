package runner

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahylith/formagent/config"
	"github.com/ahylith/formagent/internal/artifacts"
	"github.com/ahylith/formagent/internal/browser"
	"github.com/ahylith/formagent/internal/domain/job"
	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
	"github.com/ahylith/formagent/internal/observability/metrics"
	"github.com/ahylith/formagent/internal/observability/statsd"
)

// SessionSource hands out one exclusively-owned browsing session per job.
type SessionSource interface {
	Acquire(jobID string, headless bool) (*browser.Session, error)
}

// rowProcessor abstracts RowProcessor for tests.
type rowProcessor interface {
	Process(ctx context.Context, row model.Row, mapping model.FieldMapping,
		cfg model.JobConfig, targetURL string) model.FillResult
}

// Runner drives accepted jobs to a terminal state. Rows within a job run
// strictly in input order on the job's own session; independent jobs each own
// their session and interleave freely.
type Runner struct {
	registry  *job.Registry
	sessions  SessionSource
	artifacts *artifacts.Store
	metrics   statsd.Sink
	browser   config.BrowserConfig
	logger    *slog.Logger

	// newProcessor is swapped by tests to avoid a real fill pipeline.
	newProcessor func(page browser.Page) rowProcessor
}

// Options configures the job runner.
type Options struct {
	Registry  *job.Registry
	Sessions  SessionSource
	Artifacts *artifacts.Store
	Metrics   statsd.Sink
	Browser   config.BrowserConfig
	Logger    *slog.Logger
}

// NewRunner wires a Runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		registry:  opts.Registry,
		sessions:  opts.Sessions,
		artifacts: opts.Artifacts,
		metrics:   opts.Metrics,
		browser:   opts.Browser,
		logger:    logger,
	}
	r.newProcessor = func(page browser.Page) rowProcessor {
		return NewRowProcessor(RowProcessorOptions{
			Page:              page,
			SelectorTimeout:   r.browser.SelectorTimeout,
			NavigationTimeout: r.browser.NavigationTimeout,
			LoginWait:         r.browser.LoginWait,
			Screenshots:       r.artifacts,
			Logger:            r.logger,
		})
	}
	return r
}

// Run processes every row of an already-started job and lands it in completed
// or error. It must only be called after the registry accepted the start (the
// active marker is already held). Row errors are isolated and recorded;
// session-level faults abort the job.
func (r *Runner) Run(ctx context.Context, jobID string) {
	start := time.Now()

	j, err := r.registry.Get(jobID)
	if err != nil {
		r.logger.ErrorContext(ctx, "run for unknown job", "job_id", jobID, "error", err)
		return
	}

	session, err := r.sessions.Acquire(jobID, j.Config.Headless)
	if err != nil {
		r.failJob(ctx, jobID, apperrors.Session("browser session could not be created", err), start)
		return
	}
	defer session.Release()

	r.registry.MarkRunning(jobID)
	r.logger.InfoContext(ctx, "job running", "job_id", jobID, "rows", len(j.Rows), "url", j.TargetURL)

	processor := r.newProcessor(session.Page)

	for i, row := range j.Rows {
		// Cancellation is honored at row boundaries only; a row in flight
		// finishes so the browser is never abandoned mid-interaction.
		if ctx.Err() != nil {
			r.failJob(ctx, jobID, apperrors.Canceled("job canceled before row "+strconv.Itoa(row.Index)), start)
			return
		}

		rowStart := time.Now()
		result := processor.Process(ctx, row, j.Mapping, j.Config, j.TargetURL)
		r.registry.AppendResult(jobID, result)

		rowResult := metrics.ResultSuccess
		if result.Status == model.RowStatusError {
			rowResult = metrics.ResultError
		}
		metrics.EmitRowProcessed(r.metrics, metrics.RowMetric{
			Result:      rowResult,
			FieldErrors: len(result.Errors),
			Duration:    time.Since(rowStart),
		})

		if i < len(j.Rows)-1 {
			r.pause(ctx, j.Config.RowDelay)
		}
	}

	final, err := r.registry.Get(jobID)
	if err != nil {
		r.logger.ErrorContext(ctx, "job vanished during run", "job_id", jobID, "error", err)
		return
	}
	completed, err := r.registry.Complete(jobID, model.Summarize(final.Results))
	if err != nil {
		r.logger.ErrorContext(ctx, "complete job failed", "job_id", jobID, "error", err)
		return
	}
	r.persist(ctx, completed)

	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		Transition: "completed",
		Result:     metrics.ResultSuccess,
		Duration:   time.Since(start),
	})
	r.logger.InfoContext(ctx, "job completed",
		"job_id", jobID,
		"total_rows", completed.Summary.TotalRows,
		"successful_rows", completed.Summary.SuccessfulRows,
		"failed_rows", completed.Summary.FailedRows)
}

// failJob records a session-level fault: status error, no further rows.
func (r *Runner) failJob(ctx context.Context, jobID string, cause error, start time.Time) {
	failed, err := r.registry.Fail(jobID, cause.Error())
	if err != nil {
		r.logger.ErrorContext(ctx, "fail job error", "job_id", jobID, "error", err)
		return
	}
	r.persist(ctx, failed)
	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		Transition: "failed",
		Result:     metrics.ResultError,
		Duration:   time.Since(start),
		Err:        cause,
	})
	r.logger.ErrorContext(ctx, "job failed", "job_id", jobID, "error", cause)
}

// persist writes the results artifact for any terminal job.
func (r *Runner) persist(ctx context.Context, j model.Job) {
	if r.artifacts == nil {
		return
	}
	path, err := r.artifacts.WriteResults(j)
	if err != nil {
		r.logger.ErrorContext(ctx, "persist job results failed", "job_id", j.ID, "error", err)
		return
	}
	r.logger.InfoContext(ctx, "job results written", "job_id", j.ID, "path", path)
}

// pause sleeps the inter-row delay but wakes early on cancellation.
func (r *Runner) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
