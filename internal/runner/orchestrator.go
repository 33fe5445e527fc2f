package runner

import (
	"context"

	"github.com/ahylith/formagent/internal/domain/job"
	"github.com/ahylith/formagent/internal/domain/model"
)

// Orchestrator couples the registry's start transition to the asynchronous
// run. The registry accepts or rejects the start synchronously under its
// lock; only an accepted start spawns a run goroutine, so at most one run
// per job is ever in flight.
type Orchestrator struct {
	ctx      context.Context
	registry *job.Registry
	runner   *Runner
}

// NewOrchestrator binds runs to the given application-lifetime context.
// Canceling it stops in-flight jobs at their next row boundary.
func NewOrchestrator(ctx context.Context, registry *job.Registry, runner *Runner) *Orchestrator {
	return &Orchestrator{ctx: ctx, registry: registry, runner: runner}
}

// Start validates and accepts the start, then launches the run.
func (o *Orchestrator) Start(jobID string, params job.StartParams) (model.Job, error) {
	j, err := o.registry.Start(jobID, params)
	if err != nil {
		return model.Job{}, err
	}
	go o.runner.Run(o.ctx, jobID)
	return j, nil
}
