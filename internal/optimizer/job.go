package optimizer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState is the closed set of async optimize-job states (spec.md §4.4
// "Job lifecycle").
type JobState string

const (
	JobQueued    JobState = "Queued"
	JobRunning   JobState = "Running"
	JobDone      JobState = "Done"
	JobError     JobState = "Error"
	JobCancelled JobState = "Cancelled"
)

// JobStatus is the snapshot an /api/optimize/jobs/{id} poll returns.
// Generation/MaxGeneration are 0/0 for a StrategyExhaustive job.
type JobStatus struct {
	ID            string
	State         JobState
	Done          int64
	Total         int64
	Generation    int64
	MaxGeneration int64
	Err           error
	Result        []ScoredCandidate
	Partial       bool
}

// Job runs one optimize scenario asynchronously with cooperative
// cancellation and a wall-clock budget (spec.md §4.4/§5).
type Job struct {
	ID       string
	progress Progress

	// OnComplete, if set, is invoked once with the final status after Run
	// reaches a terminal state, so a caller can persist the result without
	// Job needing to know anything about storage.
	OnComplete func(JobStatus)

	mu     sync.Mutex
	state  JobState
	err    error
	result []ScoredCandidate
}

// NewJob allocates a job with a fresh UUID, grounded on the teacher's own
// uuid.New().String() job-ID pattern (internal/handlers/events.go).
func NewJob() *Job {
	return &Job{ID: uuid.New().String(), state: JobQueued}
}

// Status returns a point-in-time snapshot safe to read from another
// goroutine while Run is in flight.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		ID:            j.ID,
		State:         j.state,
		Done:          j.progress.Completed.Load(),
		Total:         j.progress.Total.Load(),
		Generation:    j.progress.Generation.Load(),
		MaxGeneration: j.progress.MaxGeneration.Load(),
		Err:           j.err,
		Result:        j.result,
		Partial:       j.state == JobCancelled || (j.state == JobDone && j.progress.Completed.Load() < j.progress.Total.Load()),
	}
}

// Cancel requests cooperative cancellation; the worker pool observes the
// flag between candidates and stops issuing new work.
func (j *Job) Cancel() {
	j.progress.Cancelled.Store(true)
}

// runResult carries RunWithProgress's outcome (or a recovered panic) back
// to Run across the goroutine boundary.
type runResult struct {
	scored []ScoredCandidate
	err    error
}

// Run executes the scenario to completion or until cancelled or the
// wall-clock budget expires, then finalizes the job's terminal state.
// opts is pre-validated by the caller; Run's only responsibility is the
// async lifecycle around RunWithProgress, which itself dispatches on
// opts.Strategy (SPEC_FULL.md §4.5). A hard failure — RunWithProgress
// returning an error, or a panic escaping it — lands the job in JobError
// rather than JobDone, per spec.md §4.4/§5's job-lifecycle state set.
func (j *Job) Run(opts RunOptions, wallClockBudget time.Duration) {
	j.mu.Lock()
	j.state = JobRunning
	j.mu.Unlock()

	done := make(chan runResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- runResult{err: fmt.Errorf("optimizer: job panicked: %v", r)}
			}
		}()
		scored, err := RunWithProgress(opts, &j.progress)
		done <- runResult{scored: scored, err: err}
	}()

	var result runResult
	budgetExpired := false
	if wallClockBudget > 0 {
		select {
		case result = <-done:
		case <-time.After(wallClockBudget):
			// Budget expiry stops the work like a cancel but ends in
			// JobDone with the partial results.
			budgetExpired = true
			j.Cancel()
			result = <-done
		}
	} else {
		result = <-done
	}

	j.mu.Lock()
	j.result = result.scored
	j.err = result.err
	switch {
	case result.err != nil:
		j.state = JobError
	case j.progress.Cancelled.Load() && !budgetExpired:
		j.state = JobCancelled
	default:
		j.state = JobDone
	}
	j.mu.Unlock()

	if j.OnComplete != nil {
		j.OnComplete(j.Status())
	}
}
