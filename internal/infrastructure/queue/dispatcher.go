package queue

import (
	"context"
	"encoding/json"
	"fmt"
	gosync "sync"
	"time"

	"github.com/channelbridge/backend/internal/domain/sync"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DispatcherConfig holds configuration for the job dispatcher
type DispatcherConfig struct {
	BatchSize      int
	PollInterval   time.Duration
	DefaultRetries int

	// VisibilityTimeout is how long a claimed job may stay running before it
	// is considered abandoned and requeued. Zero disables stale recovery.
	VisibilityTimeout time.Duration

	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BatchSize:         50,
		PollInterval:      2 * time.Second,
		DefaultRetries:    3,
		VisibilityTimeout: 10 * time.Minute,
		CleanupEnabled:    true,
		CleanupRetention:  7 * 24 * time.Hour,
		CleanupInterval:   time.Hour,
	}
}

// Dispatcher is a database-backed job queue. Jobs survive restarts; a polling
// loop claims due jobs and runs the handler registered for their queue name.
type Dispatcher struct {
	repo   sync.JobRepository
	config DispatcherConfig
	logger *zap.Logger

	mu       gosync.RWMutex
	handlers map[string]sync.HandlerFunc

	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// NewDispatcher creates a new job dispatcher
func NewDispatcher(repo sync.JobRepository, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		config:   config,
		logger:   logger,
		handlers: make(map[string]sync.HandlerFunc),
	}
}

// Register binds a handler to a queue name
func (d *Dispatcher) Register(queueName string, handler sync.HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[queueName] = handler
}

// Enqueue persists a job and returns its id. The job runs on the next poll.
func (d *Dispatcher) Enqueue(ctx context.Context, queueName string, payload any, opts ...sync.EnqueueOption) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := sync.NewJob(queueName, data, d.config.DefaultRetries)
	for _, opt := range opts {
		opt(job)
	}

	if err := d.repo.Save(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	d.logger.Debug("job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("queue", queueName),
	)

	return job.ID, nil
}

// Start starts the background dispatch loop
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.dispatchLoop(ctx)

	if d.config.CleanupEnabled {
		d.wg.Add(1)
		go d.cleanupLoop(ctx)
	}

	d.logger.Info("job dispatcher started",
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the dispatcher
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("job dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) dispatchLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatchBatch(ctx)
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) {
	now := time.Now()
	d.recoverStale(ctx, now)

	jobs, err := d.repo.ClaimDue(ctx, now, d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to claim due jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		d.runJob(ctx, job)
	}
}

// recoverStale requeues jobs a crashed worker claimed but never finished
func (d *Dispatcher) recoverStale(ctx context.Context, now time.Time) {
	if d.config.VisibilityTimeout <= 0 {
		return
	}

	requeued, err := d.repo.RequeueStale(ctx, now.Add(-d.config.VisibilityTimeout))
	if err != nil {
		d.logger.Error("failed to requeue stale jobs", zap.Error(err))
		return
	}
	if requeued > 0 {
		d.logger.Warn("requeued stale jobs",
			zap.Int64("count", requeued),
			zap.Duration("visibility_timeout", d.config.VisibilityTimeout),
		)
	}
}

// runJob executes one claimed job and records the outcome
func (d *Dispatcher) runJob(ctx context.Context, job *sync.Job) {
	d.mu.RLock()
	handler, ok := d.handlers[job.QueueName]
	d.mu.RUnlock()

	if !ok {
		d.logger.Error("no handler registered for queue",
			zap.String("queue", job.QueueName),
			zap.String("job_id", job.ID.String()),
		)
		job.MarkFailed("no handler registered for queue " + job.QueueName)
		d.updateJob(ctx, job)
		return
	}

	jobCtx := sync.NewJobContext(job, func(pct int) {
		job.SetProgress(pct)
		// Progress is best-effort; a failed write only delays visibility
		if err := d.repo.Update(ctx, job); err != nil {
			d.logger.Warn("failed to persist job progress",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	})

	if err := d.safeInvoke(ctx, handler, jobCtx); err != nil {
		job.MarkFailed(err.Error())
		if job.IsDead() {
			d.logger.Warn("job moved to dead letter",
				zap.String("job_id", job.ID.String()),
				zap.String("queue", job.QueueName),
				zap.Int("retry_count", job.RetryCount),
				zap.String("last_error", job.LastError),
			)
		} else {
			d.logger.Info("job failed, will retry",
				zap.String("job_id", job.ID.String()),
				zap.String("queue", job.QueueName),
				zap.Int("attempt", job.RetryCount),
				zap.Error(err),
			)
		}
		d.updateJob(ctx, job)
		return
	}

	job.MarkCompleted()
	d.updateJob(ctx, job)
	d.logger.Debug("job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("queue", job.QueueName),
	)
}

// safeInvoke runs a handler, converting panics into errors so one bad job
// cannot take down the dispatch loop.
func (d *Dispatcher) safeInvoke(ctx context.Context, handler sync.HandlerFunc, jobCtx *sync.JobContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panicked: %v", r)
		}
	}()
	return handler(ctx, jobCtx)
}

func (d *Dispatcher) updateJob(ctx context.Context, job *sync.Job) {
	if err := d.repo.Update(ctx, job); err != nil {
		d.logger.Error("failed to update job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.cleanup(ctx)
		}
	}
}

func (d *Dispatcher) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.CleanupRetention)
	deleted, err := d.repo.DeleteFinishedOlderThan(ctx, cutoff)
	if err != nil {
		d.logger.Error("failed to cleanup finished jobs", zap.Error(err))
		return
	}

	if deleted > 0 {
		d.logger.Info("cleaned up finished jobs",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}

// Ensure Dispatcher implements JobQueue
var _ sync.JobQueue = (*Dispatcher)(nil)
