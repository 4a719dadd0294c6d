package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/channelbridge/backend/internal/domain/sync"
)

func setupJobTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&jobModel{}))
	return db
}

func TestGormJobRepository_SaveAndFindByID(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	job := sync.NewJob(sync.QueueProductSync, []byte(`{"product_id":"p1"}`), 3)
	require.NoError(t, repo.Save(ctx, job))

	found, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, found.ID)
	assert.Equal(t, sync.QueueProductSync, found.QueueName)
	assert.Equal(t, sync.JobStatusPending, found.Status)
	assert.JSONEq(t, `{"product_id":"p1"}`, string(found.Payload))
}

func TestGormJobRepository_FindByIDNotFound(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))

	job := sync.NewJob(sync.QueueProductSync, nil, 3)
	_, err := repo.FindByID(context.Background(), job.ID)
	assert.ErrorIs(t, err, sync.ErrJobNotFound)
}

func TestGormJobRepository_UpdateLifecycle(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	job := sync.NewJob(sync.QueueChannelReprice, []byte(`{}`), 2)
	require.NoError(t, repo.Save(ctx, job))

	require.NoError(t, job.MarkRunning())
	job.SetProgress(50)
	require.NoError(t, repo.Update(ctx, job))

	found, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, sync.JobStatusRunning, found.Status)
	assert.Equal(t, 50, found.Progress)
	require.NotNil(t, found.StartedAt)
}

func TestGormJobRepository_FindRecent(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)))
	}
	require.NoError(t, repo.Save(ctx, sync.NewJob(sync.QueueChannelReprice, []byte(`{}`), 2)))

	jobs, total, err := repo.FindRecent(ctx, sync.QueueProductSync, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, jobs, 2)

	jobs, total, err = repo.FindRecent(ctx, sync.QueueProductSync, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, jobs, 1)
}

func TestGormJobRepository_FindDead(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	dead := sync.NewJob(sync.QueueProductSync, []byte(`{}`), 1)
	dead.MarkFailed("connection reset")
	dead.MarkFailed("remote rejected payload")
	require.True(t, dead.IsDead())
	require.NoError(t, repo.Save(ctx, dead))
	require.NoError(t, repo.Save(ctx, sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)))

	jobs, total, err := repo.FindDead(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, jobs, 1)
	assert.Equal(t, dead.ID, jobs[0].ID)
	assert.Equal(t, "remote rejected payload", jobs[0].LastError)
}

func TestGormJobRepository_DeleteFinishedOlderThan(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	old := sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)
	old.MarkCompleted()
	finished := time.Now().Add(-48 * time.Hour)
	old.FinishedAt = &finished
	require.NoError(t, repo.Save(ctx, old))

	fresh := sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)
	fresh.MarkCompleted()
	require.NoError(t, repo.Save(ctx, fresh))

	deleted, err := repo.DeleteFinishedOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, old.ID)
	assert.ErrorIs(t, err, sync.ErrJobNotFound)
	_, err = repo.FindByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestGormJobRepository_RequeueStale(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	stale := sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)
	require.NoError(t, stale.MarkRunning())
	claimed := time.Now().Add(-time.Hour)
	stale.StartedAt = &claimed
	require.NoError(t, repo.Save(ctx, stale))

	fresh := sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)
	require.NoError(t, fresh.MarkRunning())
	require.NoError(t, repo.Save(ctx, fresh))

	requeued, err := repo.RequeueStale(ctx, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), requeued)

	found, err := repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, sync.JobStatusPending, found.Status)
	assert.Nil(t, found.StartedAt)

	found, err = repo.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, sync.JobStatusRunning, found.Status)
}

func TestGormJobRepository_CountByStatus(t *testing.T) {
	repo := NewGormJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)))
	completed := sync.NewJob(sync.QueueProductSync, []byte(`{}`), 3)
	completed.MarkCompleted()
	require.NoError(t, repo.Save(ctx, completed))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[sync.JobStatusPending])
	assert.Equal(t, int64(1), counts[sync.JobStatusCompleted])
}
