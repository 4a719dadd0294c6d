package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned when a job does not exist
var ErrJobNotFound = errors.New("sync: job not found")

// JobStatus represents the status of a queued job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusRetrying  JobStatus = "RETRYING"
	JobStatusDead      JobStatus = "DEAD"
)

// Base backoff between retry attempts
const DefaultBaseBackoff = time.Second

// Job is one durable unit of background work. It carries an opaque JSON
// payload interpreted by the handler registered for its queue name.
type Job struct {
	ID         uuid.UUID
	QueueName  string
	Payload    []byte
	Status     JobStatus
	RetryCount int
	MaxRetries int

	// Progress is a 0..100 percentage reported by long-running handlers
	Progress int

	LastError   string
	NextRetryAt *time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewJob creates a pending job for the given queue
func NewJob(queueName string, payload []byte, maxRetries int) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.New(),
		QueueName:  queueName,
		Payload:    payload,
		Status:     JobStatusPending,
		RetryCount: 0,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanRetry returns true if the job has retry budget left
func (j *Job) CanRetry() bool {
	return j.Status == JobStatusRetrying && j.RetryCount <= j.MaxRetries
}

// MarkRunning marks the job as picked up by a worker
func (j *Job) MarkRunning() error {
	if j.Status != JobStatusPending && j.Status != JobStatusRetrying {
		return errors.New("can only run pending or retrying jobs")
	}
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
	return nil
}

// MarkCompleted marks the job as successfully finished
func (j *Job) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// MarkFailed records a failed attempt. The job either becomes retryable with
// an exponential backoff or moves to dead letter when the budget is spent.
// MaxRetries counts re-executions after the first run, so a job with
// MaxRetries=3 runs up to four times before going dead.
func (j *Job) MarkFailed(errMsg string) {
	j.RetryCount++
	j.LastError = errMsg
	j.UpdatedAt = time.Now()

	if j.RetryCount > j.MaxRetries {
		now := time.Now()
		j.Status = JobStatusDead
		j.FinishedAt = &now
	} else {
		j.Status = JobStatusRetrying
		// Exponential backoff: 1s, 2s, 4s, ...
		backoff := DefaultBaseBackoff * time.Duration(1<<uint(j.RetryCount-1))
		nextRetry := time.Now().Add(backoff)
		j.NextRetryAt = &nextRetry
	}
}

// SetProgress records handler progress. Values are clamped to 0..100 and
// never move backwards.
func (j *Job) SetProgress(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct > j.Progress {
		j.Progress = pct
		j.UpdatedAt = time.Now()
	}
}

// IsDead returns true if the job is in dead letter status
func (j *Job) IsDead() bool {
	return j.Status == JobStatusDead
}

// IsFinished returns true when the job will not run again
func (j *Job) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusDead
}

// JobRepository defines durable job persistence
type JobRepository interface {
	// Save persists one or more jobs
	Save(ctx context.Context, jobs ...*Job) error
	// FindByID retrieves a single job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	// ClaimDue atomically marks due pending/retrying jobs as running and
	// returns them, up to limit. Two dispatchers never claim the same job.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Job, error)
	// RequeueStale returns running jobs claimed before the cutoff to pending.
	// A worker that crashed mid-run never finishes its claims, so without
	// this the rows would stay running forever.
	RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error)
	// Update updates an existing job
	Update(ctx context.Context, job *Job) error
	// FindRecent retrieves the most recent jobs of a queue with pagination
	FindRecent(ctx context.Context, queueName string, page, pageSize int) ([]*Job, int64, error)
	// FindDead retrieves dead letter jobs with pagination
	FindDead(ctx context.Context, page, pageSize int) ([]*Job, int64, error)
	// DeleteFinishedOlderThan deletes completed and dead jobs older than the
	// specified time
	DeleteFinishedOlderThan(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus returns count of jobs for each status
	CountByStatus(ctx context.Context) (map[JobStatus]int64, error)
}
