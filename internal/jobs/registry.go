package jobs

import (
	"sync"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// Registry is the process-wide, in-memory store of illustration jobs, safe
// for concurrent use by workers and HTTP readers. Jobs are retained for the
// life of the process; nothing evicts them. That mirrors the upstream
// behavior and is a known resource-growth limitation.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]*domain.Job
	logger infra.Logger
	now    func() time.Time
}

// NewRegistry creates an empty registry. Each caller gets an isolated
// instance; there is no package-level store.
func NewRegistry(logger infra.Logger) *Registry {
	return &Registry{
		jobs:   make(map[string]*domain.Job),
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a new job in the queued state with an empty progress log.
func (r *Registry) Create(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; ok {
		return domain.ErrDuplicateJob
	}
	r.jobs[jobID] = &domain.Job{
		ID:        jobID,
		Status:    domain.JobStatusQueued,
		CreatedAt: r.now().UTC(),
		Progress:  []string{},
	}
	return nil
}

// AppendProgress appends a human-readable message to the job's progress log.
// Unknown job ids and jobs already in a terminal state are tolerated as
// no-ops so late logging calls cannot fail or rewrite a finished log.
func (r *Registry) AppendProgress(jobID, message string) {
	if jobID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Progress = append(job.Progress, message)
	r.logger.Debug().Str("job_id", jobID).Msg(message)
}

// SetRunning marks the job as picked up by a worker.
func (r *Registry) SetRunning(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = domain.JobStatusRunning
	}
}

// SetDone stores the result and moves the job to its terminal done state.
// Only one worker ever owns a job, so an out-of-order call is treated as an
// idempotent overwrite rather than an error.
func (r *Registry) SetDone(jobID string, result *domain.StoryResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = domain.JobStatusDone
		job.Result = result
		job.Error = ""
	}
}

// SetError stores the failure description and moves the job to its terminal
// error state.
func (r *Registry) SetError(jobID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = domain.JobStatusError
		job.Error = message
		job.Result = nil
	}
}

// Get returns a snapshot of the job. The progress slice is copied so callers
// never observe a log mutating under them; the result payload is immutable
// once set and is shared.
func (r *Registry) Get(jobID string) (domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	snapshot := *job
	snapshot.Progress = append([]string(nil), job.Progress...)
	return snapshot, nil
}

// Len reports the number of jobs currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
