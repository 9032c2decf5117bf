package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
)

// Task executes the illustration pipeline for one job and returns its result
// payload or a terminal error. The job id is passed through so the task can
// emit progress messages.
type Task func(ctx context.Context, jobID string) (*domain.StoryResult, error)

type queuedTask struct {
	jobID string
	run   Task
}

// Dispatcher runs submitted tasks on a small fixed pool of workers. The pool
// size deliberately bounds concurrent calls to the external model APIs; when
// the queue is full, Submit blocks until a slot frees rather than dropping
// the job.
type Dispatcher struct {
	registry *Registry
	tasks    chan queuedTask
	logger   infra.Logger
	wg       sync.WaitGroup
}

// NewDispatcher starts workers goroutines consuming the task queue. The
// workers stop when ctx is cancelled; call Wait to block until they have
// drained.
func NewDispatcher(ctx context.Context, registry *Registry, workers, queueSize int, logger infra.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < workers {
		queueSize = workers
	}
	d := &Dispatcher{
		registry: registry,
		tasks:    make(chan queuedTask, queueSize),
		logger:   logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	return d
}

// Submit registers a queued job under a fresh identifier and enqueues the
// task for background execution. It returns as soon as the task is queued;
// callers poll the registry for the outcome.
func (d *Dispatcher) Submit(run Task) (string, error) {
	jobID := uuid.NewString()
	if err := d.registry.Create(jobID); err != nil {
		return "", err
	}
	d.tasks <- queuedTask{jobID: jobID, run: run}
	d.logger.Info().Str("job_id", jobID).Msg("jobs: submitted")
	return jobID, nil
}

// Wait blocks until all workers have exited. Meaningful only after the
// constructor context has been cancelled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.tasks:
			d.handle(ctx, t)
		}
	}
}

// handle owns the queued -> running -> terminal transitions for one job. Any
// error or panic from the task is converted into the job's error state; a job
// must never be left permanently running.
func (d *Dispatcher) handle(ctx context.Context, t queuedTask) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error().Str("job_id", t.jobID).Interface("panic", rec).Msg("jobs: task panicked")
			d.registry.SetError(t.jobID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	d.registry.SetRunning(t.jobID)
	result, err := t.run(ctx, t.jobID)
	if err != nil {
		d.logger.Error().Err(err).Str("job_id", t.jobID).Msg("jobs: task failed")
		d.registry.AppendProgress(t.jobID, "Error: "+err.Error())
		d.registry.SetError(t.jobID, err.Error())
		return
	}
	d.registry.SetDone(t.jobID, result)
	count := 0
	if result != nil {
		count = result.Count
	}
	d.logger.Info().Str("job_id", t.jobID).Int("images", count).Msg("jobs: task done")
}
