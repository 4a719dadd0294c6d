package sync

import (
	"context"

	"github.com/google/uuid"
)

// JobContext is handed to a job handler. It exposes the payload and lets the
// handler report progress while running.
type JobContext struct {
	JobID     uuid.UUID
	QueueName string
	Payload   []byte
	Attempt   int

	progress func(pct int)
}

// NewJobContext builds a JobContext for one handler invocation. The progress
// callback may be nil.
func NewJobContext(job *Job, progress func(pct int)) *JobContext {
	return &JobContext{
		JobID:     job.ID,
		QueueName: job.QueueName,
		Payload:   job.Payload,
		Attempt:   job.RetryCount + 1,
		progress:  progress,
	}
}

// SetProgress reports handler progress as a 0..100 percentage
func (c *JobContext) SetProgress(pct int) {
	if c.progress != nil {
		c.progress(pct)
	}
}

// HandlerFunc processes one job. Returning an error consumes one retry
// attempt; returning nil completes the job.
type HandlerFunc func(ctx context.Context, job *JobContext) error

// EnqueueOption customizes a job at enqueue time
type EnqueueOption func(*Job)

// WithMaxRetries overrides the queue's default retry budget for one job
func WithMaxRetries(n int) EnqueueOption {
	return func(j *Job) {
		j.MaxRetries = n
	}
}

// JobQueue is the port interface for durable background work. Handlers are
// registered per queue name before the queue starts.
type JobQueue interface {
	// Register binds a handler to a queue name
	Register(queueName string, handler HandlerFunc)

	// Enqueue persists a job and returns its id
	Enqueue(ctx context.Context, queueName string, payload any, opts ...EnqueueOption) (uuid.UUID, error)

	// Start begins dispatching due jobs
	Start(ctx context.Context) error

	// Stop drains in-flight jobs and stops dispatching
	Stop(ctx context.Context) error
}
