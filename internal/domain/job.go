package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// Job tracks one illustration-generation request through its lifecycle.
// Progress is append-only while the job is queued or running and frozen once
// the status is terminal. Exactly one of Result and Error is populated, and
// only after the job leaves the running state.
type Job struct {
	ID        string       `json:"id"`
	Status    JobStatus    `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	Progress  []string     `json:"progress"`
	Result    *StoryResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
}
