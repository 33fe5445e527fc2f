// Package job owns the process-wide job registry and the job lifecycle state
// machine.
package job

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahylith/formagent/internal/domain/model"
	apperrors "github.com/ahylith/formagent/internal/errors"
)

// Registry is the single owner of job records and the only state shared
// across job runs. Every mutation happens under its lock; in particular the
// active marker is set synchronously inside Start, before any suspending
// operation, which closes the race where two near-simultaneous starts both
// observe a startable job.
type Registry struct {
	logger *slog.Logger

	mu     sync.Mutex
	jobs   map[string]*model.Job
	active map[string]struct{}
}

// NewRegistry builds an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		jobs:   make(map[string]*model.Job),
		active: make(map[string]struct{}),
	}
}

// Create registers a new job for an ingested spreadsheet and returns a
// snapshot of it. targetURL may be empty; a URL supplied at start time always
// wins over one declared at upload.
func (r *Registry) Create(filename, targetURL string, rows []model.Row) model.Job {
	j := &model.Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    model.JobStatusCreated,
		TargetURL: targetURL,
		Rows:      rows,
		Results:   []model.FillResult{},
		Errors:    []string{},
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()

	r.logger.Info("job created", "job_id", j.ID, "rows", len(rows), "filename", filename)
	return snapshot(j)
}

// StartParams carries everything a run needs, fixed at start time.
type StartParams struct {
	TargetURL string
	Mapping   model.FieldMapping
	Config    model.JobConfig
}

// Start transitions a job from created to starting and marks it active, all
// atomically. A job that is already active (or not in created) is rejected
// with a conflict and left untouched: start is an idempotent rejection, not a
// queue.
func (r *Registry) Start(id string, params StartParams) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return model.Job{}, apperrors.NotFoundf("job %s not found", id)
	}
	if _, running := r.active[id]; running || j.Status.Active() {
		return model.Job{}, apperrors.Conflictf("job %s is already %s", id, j.Status)
	}
	if j.Status != model.JobStatusCreated {
		return model.Job{}, apperrors.Conflictf(
			"job %s status is %s, expected %s", id, j.Status, model.JobStatusCreated)
	}

	now := time.Now()
	r.active[id] = struct{}{}
	j.Status = model.JobStatusStarting
	if params.TargetURL != "" {
		j.TargetURL = params.TargetURL
	}
	j.Mapping = params.Mapping
	j.Config = params.Config
	j.StartedAt = &now
	j.CompletedAt = nil

	return snapshot(j), nil
}

// MarkRunning records that row processing has begun.
func (r *Registry) MarkRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok && j.Status == model.JobStatusStarting {
		j.Status = model.JobStatusRunning
	}
}

// AppendResult appends one row's FillResult in row order and folds its errors
// into the job's cumulative error list.
func (r *Registry) AppendResult(id string, result model.FillResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return
	}
	j.Results = append(j.Results, result)
	for _, e := range result.Errors {
		j.Errors = append(j.Errors, fmt.Sprintf("Row %d: %s", result.RowIndex+1, e))
	}
}

// Complete moves the job to completed, stores its summary, and clears the
// active marker.
func (r *Registry) Complete(id string, summary model.JobSummary) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return model.Job{}, apperrors.NotFoundf("job %s not found", id)
	}
	now := time.Now()
	j.Status = model.JobStatusCompleted
	j.Summary = &summary
	j.CompletedAt = &now
	delete(r.active, id)
	return snapshot(j), nil
}

// Fail moves the job to error with a reason and clears the active marker.
// Session-level faults land here; row-level errors never do.
func (r *Registry) Fail(id, reason string) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return model.Job{}, apperrors.NotFoundf("job %s not found", id)
	}
	now := time.Now()
	j.Status = model.JobStatusError
	j.Errors = append(j.Errors, reason)
	j.CompletedAt = &now
	delete(r.active, id)
	return snapshot(j), nil
}

// Reset returns a terminal job to created, clearing errors, results, and
// progress. Calling it on a job already in created is a no-op; calling it on
// an active job is rejected with a conflict.
func (r *Registry) Reset(id string) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return model.Job{}, apperrors.NotFoundf("job %s not found", id)
	}
	if _, running := r.active[id]; running || j.Status.Active() {
		return model.Job{}, apperrors.Conflictf("job %s is %s and cannot be reset", id, j.Status)
	}
	if j.Status != model.JobStatusCreated && !j.Status.Terminal() {
		return model.Job{}, apperrors.Conflictf("job %s status %s cannot be reset", id, j.Status)
	}

	j.Status = model.JobStatusCreated
	j.Results = []model.FillResult{}
	j.Errors = []string{}
	j.Summary = nil
	j.StartedAt = nil
	j.CompletedAt = nil
	return snapshot(j), nil
}

// Get returns a snapshot of the job.
func (r *Registry) Get(id string) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return model.Job{}, apperrors.NotFoundf("job %s not found", id)
	}
	return snapshot(j), nil
}

// IsActive reports whether the job currently owns a run.
func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}

// snapshot copies the job so callers never alias registry-owned state. Rows
// share backing storage deliberately: they are immutable after creation.
func snapshot(j *model.Job) model.Job {
	cp := *j
	cp.Results = append([]model.FillResult(nil), j.Results...)
	cp.Errors = append([]string(nil), j.Errors...)
	if j.Summary != nil {
		s := *j.Summary
		cp.Summary = &s
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}
