package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
	"github.com/channelbridge/backend/internal/interfaces/http/dto"
)

// JobHandler exposes background job status endpoints
type JobHandler struct {
	BaseHandler
	jobs syncdomain.JobRepository
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobs syncdomain.JobRepository) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// RegisterRoutes registers job routes
func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.GET("/jobs", h.List)
		sync.GET("/jobs/:id", h.GetByID)
		sync.GET("/dead-letters", h.ListDead)
		sync.GET("/stats", h.Stats)
	}
}

// JobResponse represents a background job in API responses
type JobResponse struct {
	ID          uuid.UUID  `json:"id"`
	QueueName   string     `json:"queue_name"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	LastError   string     `json:"last_error,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toJobResponse(j *syncdomain.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		QueueName:   j.QueueName,
		Status:      string(j.Status),
		Progress:    j.Progress,
		RetryCount:  j.RetryCount,
		MaxRetries:  j.MaxRetries,
		LastError:   j.LastError,
		NextRetryAt: j.NextRetryAt,
		StartedAt:   j.StartedAt,
		FinishedAt:  j.FinishedAt,
		CreatedAt:   j.CreatedAt,
	}
}

func toJobResponses(jobs []*syncdomain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	return out
}

// List retrieves recent jobs for a queue
func (h *JobHandler) List(c *gin.Context) {
	var req struct {
		dto.ListRequest
		Queue string `form:"queue" binding:"required"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	jobs, total, err := h.jobs.FindRecent(c.Request.Context(), req.Queue, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toJobResponses(jobs), total, req.Page, req.PageSize)
}

// GetByID retrieves a single job
func (h *JobHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid job id")
		return
	}

	job, err := h.jobs.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toJobResponse(job))
}

// ListDead retrieves dead letter jobs
func (h *JobHandler) ListDead(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	jobs, total, err := h.jobs.FindDead(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toJobResponses(jobs), total, req.Page, req.PageSize)
}

// Stats returns job counts grouped by status
func (h *JobHandler) Stats(c *gin.Context) {
	counts, err := h.jobs.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make(map[string]int64, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	h.Success(c, out)
}
