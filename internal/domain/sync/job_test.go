package sync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	payload, _ := json.Marshal(ProductSyncPayload{ProductID: uuid.New()})
	job := NewJob(QueueProductSync, payload, ProductSyncMaxRetries)

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, QueueProductSync, job.QueueName)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Equal(t, 0, job.RetryCount)
	assert.Equal(t, 0, job.Progress)
}

func TestJob_MarkRunning(t *testing.T) {
	t.Run("runs pending job", func(t *testing.T) {
		job := NewJob(QueueProductSync, nil, 3)
		require.NoError(t, job.MarkRunning())
		assert.Equal(t, JobStatusRunning, job.Status)
		assert.NotNil(t, job.StartedAt)
	})

	t.Run("runs retrying job", func(t *testing.T) {
		job := NewJob(QueueProductSync, nil, 3)
		job.Status = JobStatusRetrying
		require.NoError(t, job.MarkRunning())
		assert.Equal(t, JobStatusRunning, job.Status)
	})

	t.Run("fails for finished job", func(t *testing.T) {
		for _, status := range []JobStatus{JobStatusRunning, JobStatusCompleted, JobStatusDead} {
			job := NewJob(QueueProductSync, nil, 3)
			job.Status = status
			assert.Error(t, job.MarkRunning())
		}
	})
}

func TestJob_MarkCompleted(t *testing.T) {
	job := NewJob(QueueProductSync, nil, 3)
	require.NoError(t, job.MarkRunning())

	job.MarkCompleted()

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.NotNil(t, job.FinishedAt)
	assert.True(t, job.IsFinished())
}

func TestJob_MarkFailed_ExponentialBackoff(t *testing.T) {
	job := NewJob(QueueProductSync, nil, 3)
	require.NoError(t, job.MarkRunning())

	// First failure: 1s backoff
	job.MarkFailed("error 1")
	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)
	firstBackoff := time.Until(*job.NextRetryAt)
	assert.True(t, firstBackoff > 0 && firstBackoff <= 2*time.Second)

	// Second failure: 2s backoff
	job.Status = JobStatusRunning
	job.MarkFailed("error 2")
	assert.Equal(t, 2, job.RetryCount)
	secondBackoff := time.Until(*job.NextRetryAt)
	assert.True(t, secondBackoff > time.Second && secondBackoff <= 3*time.Second)
}

func TestJob_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	// MaxRetries=2 means the first run plus two retries, three runs total
	job := NewJob(QueueChannelReprice, nil, ChannelRepriceMaxRetries)

	job.MarkFailed("error 1")
	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.True(t, job.CanRetry())

	job.MarkFailed("error 2")
	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.True(t, job.CanRetry())

	job.MarkFailed("error 3")
	assert.Equal(t, JobStatusDead, job.Status)
	assert.Equal(t, "error 3", job.LastError)
	assert.True(t, job.IsDead())
	assert.False(t, job.CanRetry())
	assert.NotNil(t, job.FinishedAt)
}

func TestJob_SetProgress(t *testing.T) {
	job := NewJob(QueueChannelReprice, nil, 2)

	job.SetProgress(40)
	assert.Equal(t, 40, job.Progress)

	// Progress never moves backwards
	job.SetProgress(20)
	assert.Equal(t, 40, job.Progress)

	// Clamped to 0..100
	job.SetProgress(150)
	assert.Equal(t, 100, job.Progress)

	job2 := NewJob(QueueChannelReprice, nil, 2)
	job2.SetProgress(-5)
	assert.Equal(t, 0, job2.Progress)
}

func TestJobContext_SetProgress(t *testing.T) {
	job := NewJob(QueueChannelReprice, nil, 2)
	job.RetryCount = 1

	var reported []int
	jobCtx := NewJobContext(job, func(pct int) {
		reported = append(reported, pct)
	})

	assert.Equal(t, 2, jobCtx.Attempt)

	jobCtx.SetProgress(50)
	jobCtx.SetProgress(100)
	assert.Equal(t, []int{50, 100}, reported)

	// Nil callback is a no-op
	noop := NewJobContext(job, nil)
	noop.SetProgress(10)
}
