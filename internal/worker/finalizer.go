package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/pkg/logger"

	"github.com/google/uuid"
)

// Executor runs finalization jobs. It is implemented by the finalization
// usecase.
type Executor interface {
	Execute(ctx context.Context, projectID string, jobID uuid.UUID, owner string) error
	Stalled(ctx context.Context) ([]catalog.FinalizationJob, error)
}

type Options struct {
	Workers       int
	PollInterval  time.Duration
	SweepInterval time.Duration
}

// Finalizer pulls finalization tasks off the queue and runs them on a worker
// pool. A sweeper periodically re-enqueues running jobs whose heartbeat went
// stale, so work lost with a crashed instance is picked up again.
type Finalizer struct {
	queue    Queue
	exec     Executor
	opts     Options
	instance string
	log      *logger.Logger
}

func NewFinalizer(queue Queue, exec Executor, opts Options, log *logger.Logger) *Finalizer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 30 * time.Second
	}
	instance := uuid.NewString()
	return &Finalizer{
		queue:    queue,
		exec:     exec,
		opts:     opts,
		instance: instance,
		log:      logger.OrNop(log).With("component", "finalizer", "instance", instance),
	}
}

// Enqueue implements the usecase's job queue.
func (f *Finalizer) Enqueue(ctx context.Context, projectID string, jobID uuid.UUID) error {
	return f.queue.Enqueue(ctx, Task{ProjectID: projectID, JobID: jobID})
}

// Run blocks until ctx is done.
func (f *Finalizer) Run(ctx context.Context) error {
	pool := NewPool(f.opts.Workers, f.opts.Workers)
	results := pool.Run(ctx)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for r := range results {
			if r.Err != nil && !errors.Is(r.Err, catalog.ErrLeaseLost) && !errors.Is(r.Err, context.Canceled) {
				f.log.Error("finalization failed", "error", r.Err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		defer pool.Close()
		f.dispatch(ctx, pool)
	}()
	go func() {
		defer wg.Done()
		f.sweep(ctx)
	}()

	f.log.Info("finalizer started", "workers", f.opts.Workers)
	<-ctx.Done()
	wg.Wait()
	f.log.Info("finalizer stopped")
	return nil
}

func (f *Finalizer) dispatch(ctx context.Context, pool *Pool) {
	for ctx.Err() == nil {
		t, ok, err := f.queue.Dequeue(ctx, f.opts.PollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn("dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.opts.PollInterval):
			}
			continue
		}
		if !ok {
			continue
		}
		task := t
		if err := pool.Submit(ctx, func(ctx context.Context) error { return f.process(ctx, task) }); err != nil {
			return
		}
	}
}

func (f *Finalizer) process(ctx context.Context, t Task) error {
	owner := fmt.Sprintf("%s/%s", f.instance, uuid.NewString())
	started := time.Now()
	f.log.Debug("finalization claimed", "project_id", t.ProjectID, "job_id", t.JobID)

	if err := f.exec.Execute(ctx, t.ProjectID, t.JobID, owner); err != nil {
		if errors.Is(err, catalog.ErrLeaseLost) {
			f.log.Debug("finalization skipped, lease held elsewhere", "project_id", t.ProjectID, "job_id", t.JobID)
		}
		return fmt.Errorf("project %s job %s: %w", t.ProjectID, t.JobID, err)
	}

	f.log.Info("finalization completed",
		"project_id", t.ProjectID,
		"job_id", t.JobID,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (f *Finalizer) sweep(ctx context.Context) {
	ticker := time.NewTicker(f.opts.SweepInterval)
	defer ticker.Stop()

	f.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.sweepOnce(ctx)
		}
	}
}

func (f *Finalizer) sweepOnce(ctx context.Context) {
	jobs, err := f.exec.Stalled(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.log.Warn("stalled job scan failed", "error", err)
		}
		return
	}
	for _, j := range jobs {
		f.log.Warn("re-enqueueing stalled finalization",
			"project_id", j.ProjectID,
			"job_id", j.JobID,
			"attempts", j.Attempts,
		)
		if err := f.queue.Enqueue(ctx, Task{ProjectID: j.ProjectID, JobID: j.JobID}); err != nil {
			f.log.Warn("enqueue stalled job failed", "project_id", j.ProjectID, "error", err)
		}
	}
}
