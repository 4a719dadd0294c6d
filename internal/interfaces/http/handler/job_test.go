package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
)

type jobHandlerFixture struct {
	engine *gin.Engine
	jobs   *memoryJobRepository
}

func newJobHandlerFixture(t *testing.T) *jobHandlerFixture {
	t.Helper()
	f := &jobHandlerFixture{jobs: newMemoryJobRepository()}
	f.engine = newTestEngine(NewJobHandler(f.jobs))
	return f
}

func (f *jobHandlerFixture) seedJob(t *testing.T, queueName string) *syncdomain.Job {
	t.Helper()
	job := syncdomain.NewJob(queueName, []byte(`{}`), 3)
	require.NoError(t, f.jobs.Save(t.Context(), job))
	return job
}

func TestJobHandler_GetByID(t *testing.T) {
	f := newJobHandlerFixture(t)
	job := f.seedJob(t, syncdomain.QueueProductSync)

	rec := performRequest(t, f.engine, http.MethodGet, "/api/v1/sync/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp JobResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, job.ID, resp.ID)
	assert.Equal(t, string(syncdomain.JobStatusPending), resp.Status)

	rec = performRequest(t, f.engine, http.MethodGet,
		"/api/v1/sync/jobs/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobHandler_ListRequiresQueue(t *testing.T) {
	f := newJobHandlerFixture(t)

	rec := performRequest(t, f.engine, http.MethodGet, "/api/v1/sync/jobs", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobHandler_ListByQueue(t *testing.T) {
	f := newJobHandlerFixture(t)
	f.seedJob(t, syncdomain.QueueProductSync)
	f.seedJob(t, syncdomain.QueueProductSync)
	f.seedJob(t, syncdomain.QueueChannelReprice)

	rec := performRequest(t, f.engine, http.MethodGet,
		"/api/v1/sync/jobs?queue="+syncdomain.QueueProductSync, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []JobResponse
	decodeData(t, rec, &resp)
	assert.Len(t, resp, 2)
}

func TestJobHandler_DeadLetters(t *testing.T) {
	f := newJobHandlerFixture(t)
	job := f.seedJob(t, syncdomain.QueueProductSync)
	job.MarkFailed("boom")
	job.MarkFailed("boom")
	job.MarkFailed("boom")
	job.MarkFailed("boom")
	require.True(t, job.IsDead())
	f.seedJob(t, syncdomain.QueueProductSync)

	rec := performRequest(t, f.engine, http.MethodGet, "/api/v1/sync/dead-letters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []JobResponse
	decodeData(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, job.ID, resp[0].ID)
	assert.Equal(t, "boom", resp[0].LastError)
}

func TestJobHandler_Stats(t *testing.T) {
	f := newJobHandlerFixture(t)
	f.seedJob(t, syncdomain.QueueProductSync)
	completed := f.seedJob(t, syncdomain.QueueProductSync)
	completed.MarkCompleted()

	rec := performRequest(t, f.engine, http.MethodGet, "/api/v1/sync/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	decodeData(t, rec, &resp)
	assert.Equal(t, int64(1), resp[string(syncdomain.JobStatusPending)])
	assert.Equal(t, int64(1), resp[string(syncdomain.JobStatusCompleted)])
}
