// Package worker runs the background jobs created by endpoints called with
// background=true.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/metrics"
	"github.com/atelierhq/atelier/internal/store"
)

// queueDepth bounds how many jobs may wait before Submit blocks.
const queueDepth = 256

// Task is the unit of background work. It returns the ID of the resource it
// produced, which is surfaced on the job record.
type Task func(ctx context.Context) (resourceID string, err error)

type item struct {
	jobID string
	kind  string
	task  Task
}

// Pool is a fixed-size worker pool with SQLite-tracked job state.
type Pool struct {
	jobs    store.JobStore
	queue   chan item
	workers int

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// NewPool creates a Pool with the given number of workers.
func NewPool(jobs store.JobStore, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		jobs:    jobs,
		queue:   make(chan item, queueDepth),
		workers: workers,
	}
}

// Start launches the workers. Jobs run under a context derived from ctx, so
// canceling it aborts in-flight work.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.run(ctx)
		}
	})
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Submit creates a queued job record and hands the task to the pool.
func (p *Pool) Submit(ctx context.Context, kind string, task Task) (*domain.Job, error) {
	job, err := p.jobs.Create(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	p.queue <- item{jobID: job.ID, kind: kind, task: task}
	metrics.JobsQueued.Inc()
	return job, nil
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()

	for it := range p.queue {
		p.execute(ctx, it)
	}
}

func (p *Pool) execute(ctx context.Context, it item) {
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	if err := p.jobs.MarkRunning(ctx, it.jobID); err != nil {
		slog.Error("mark job running", "job", it.jobID, "error", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("job panicked", "job", it.jobID, "kind", it.kind, "panic", rec)
			_ = p.jobs.MarkFailed(ctx, it.jobID, fmt.Sprintf("panic: %v", rec))
			metrics.JobsCompleted.WithLabelValues(it.kind, domain.JobFailed).Inc()
		}
	}()

	resourceID, err := it.task(ctx)
	if err != nil {
		slog.Warn("job failed", "job", it.jobID, "kind", it.kind, "error", err)
		if merr := p.jobs.MarkFailed(ctx, it.jobID, err.Error()); merr != nil {
			slog.Error("mark job failed", "job", it.jobID, "error", merr)
		}
		metrics.JobsCompleted.WithLabelValues(it.kind, domain.JobFailed).Inc()
		return
	}

	if err := p.jobs.MarkSucceeded(ctx, it.jobID, resourceID); err != nil {
		slog.Error("mark job succeeded", "job", it.jobID, "error", err)
	}
	metrics.JobsCompleted.WithLabelValues(it.kind, domain.JobSucceeded).Inc()
}
