package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"server/internal/domain"
)

func waitTerminal(t *testing.T, r *Registry, jobID string) domain.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := r.Get(jobID)
		if err != nil {
			t.Fatalf("get %s: %v", jobID, err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return domain.Job{}
}

func TestDispatcherRunsTaskToDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := NewRegistry(testLogger())
	d := NewDispatcher(ctx, registry, 2, 4, testLogger())

	jobID, err := d.Submit(func(ctx context.Context, jobID string) (*domain.StoryResult, error) {
		registry.AppendProgress(jobID, "working")
		return &domain.StoryResult{Message: "Generated 2 image(s).", Count: 2}, nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if jobID == "" {
		t.Fatal("submit returned empty job id")
	}

	job := waitTerminal(t, registry, jobID)
	if job.Status != domain.JobStatusDone {
		t.Fatalf("status = %q, want done (error=%q)", job.Status, job.Error)
	}
	if job.Result == nil || job.Result.Count != 2 {
		t.Fatalf("result = %+v, want count 2", job.Result)
	}
	if len(job.Progress) != 1 || job.Progress[0] != "working" {
		t.Fatalf("progress = %v, want [working]", job.Progress)
	}
}

func TestDispatcherConvertsErrorToErrorState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := NewRegistry(testLogger())
	d := NewDispatcher(ctx, registry, 1, 1, testLogger())

	jobID, err := d.Submit(func(context.Context, string) (*domain.StoryResult, error) {
		return nil, errors.New("summarizer unavailable")
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, registry, jobID)
	if job.Status != domain.JobStatusError {
		t.Fatalf("status = %q, want error", job.Status)
	}
	if job.Error != "summarizer unavailable" {
		t.Fatalf("error = %q", job.Error)
	}
	if job.Result != nil {
		t.Fatal("result must be empty on error")
	}
	if len(job.Progress) == 0 || !strings.HasPrefix(job.Progress[len(job.Progress)-1], "Error: ") {
		t.Fatalf("progress = %v, want trailing Error entry", job.Progress)
	}
}

func TestDispatcherConvertsPanicToErrorState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := NewRegistry(testLogger())
	d := NewDispatcher(ctx, registry, 1, 1, testLogger())

	jobID, err := d.Submit(func(context.Context, string) (*domain.StoryResult, error) {
		panic("unexpected provider state")
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, registry, jobID)
	if job.Status != domain.JobStatusError {
		t.Fatalf("status = %q, want error", job.Status)
	}
	if !strings.Contains(job.Error, "internal error") {
		t.Fatalf("error = %q, want internal error description", job.Error)
	}
}

func TestDispatcherIsolatesConcurrentJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := NewRegistry(testLogger())
	d := NewDispatcher(ctx, registry, 2, 4, testLogger())

	task := func(label string) Task {
		return func(ctx context.Context, jobID string) (*domain.StoryResult, error) {
			for i := 0; i < 20; i++ {
				registry.AppendProgress(jobID, label)
			}
			return &domain.StoryResult{Count: 1}, nil
		}
	}

	idA, err := d.Submit(task("job-a"))
	if err != nil {
		t.Fatalf("submit a: %v", err)
	}
	idB, err := d.Submit(task("job-b"))
	if err != nil {
		t.Fatalf("submit b: %v", err)
	}
	if idA == idB {
		t.Fatalf("both submissions got id %s", idA)
	}

	jobA := waitTerminal(t, registry, idA)
	jobB := waitTerminal(t, registry, idB)

	for _, msg := range jobA.Progress {
		if msg != "job-a" {
			t.Fatalf("job A log contains foreign entry %q", msg)
		}
	}
	for _, msg := range jobB.Progress {
		if msg != "job-b" {
			t.Fatalf("job B log contains foreign entry %q", msg)
		}
	}
	if len(jobA.Progress) != 20 || len(jobB.Progress) != 20 {
		t.Fatalf("progress lengths = %d/%d, want 20/20", len(jobA.Progress), len(jobB.Progress))
	}
}

func TestDispatcherWaitStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry(testLogger())
	d := NewDispatcher(ctx, registry, 2, 2, testLogger())

	cancel()
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after cancellation")
	}
}
