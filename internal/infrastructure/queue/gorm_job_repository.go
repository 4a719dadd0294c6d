package queue

import (
	"context"
	"errors"
	"time"

	"github.com/channelbridge/backend/internal/domain/sync"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// jobModel is the persistence model for sync.Job
type jobModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	QueueName   string         `gorm:"size:64;not null;index:idx_sync_jobs_queue_status,priority:1"`
	Payload     []byte         `gorm:"type:jsonb;not null"`
	Status      sync.JobStatus `gorm:"size:16;not null;index:idx_sync_jobs_queue_status,priority:2"`
	RetryCount  int            `gorm:"not null;default:0"`
	MaxRetries  int            `gorm:"not null;default:3"`
	Progress    int            `gorm:"not null;default:0"`
	LastError   string         `gorm:"type:text"`
	NextRetryAt *time.Time     `gorm:"index"`
	StartedAt   *time.Time
	FinishedAt  *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (jobModel) TableName() string {
	return "sync_jobs"
}

func (m *jobModel) toDomain() *sync.Job {
	return &sync.Job{
		ID:          m.ID,
		QueueName:   m.QueueName,
		Payload:     m.Payload,
		Status:      m.Status,
		RetryCount:  m.RetryCount,
		MaxRetries:  m.MaxRetries,
		Progress:    m.Progress,
		LastError:   m.LastError,
		NextRetryAt: m.NextRetryAt,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomain(j *sync.Job) *jobModel {
	return &jobModel{
		ID:          j.ID,
		QueueName:   j.QueueName,
		Payload:     j.Payload,
		Status:      j.Status,
		RetryCount:  j.RetryCount,
		MaxRetries:  j.MaxRetries,
		Progress:    j.Progress,
		LastError:   j.LastError,
		NextRetryAt: j.NextRetryAt,
		StartedAt:   j.StartedAt,
		FinishedAt:  j.FinishedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// GormJobRepository implements sync.JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GORM-based job repository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Save persists one or more jobs
func (r *GormJobRepository) Save(ctx context.Context, jobs ...*sync.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	models := make([]*jobModel, len(jobs))
	for i, j := range jobs {
		models[i] = fromDomain(j)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

// FindByID retrieves a single job by ID
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Job, error) {
	var m jobModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrJobNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

// ClaimDue atomically marks due pending and retrying jobs as running and
// returns them. FOR UPDATE SKIP LOCKED keeps concurrent dispatchers from
// claiming the same row.
func (r *GormJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*sync.Job, error) {
	var models []*jobModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Options:  "SKIP LOCKED",
			}).
			Where("status = ? OR (status = ? AND next_retry_at <= ?)",
				sync.JobStatusPending, sync.JobStatusRetrying, now).
			Order("created_at ASC").
			Limit(limit).
			Find(&models).Error; err != nil {
			return err
		}

		if len(models) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(models))
		for i, m := range models {
			ids[i] = m.ID
		}

		claimTime := time.Now()
		if err := tx.Model(&jobModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     sync.JobStatusRunning,
				"started_at": claimTime,
				"updated_at": claimTime,
			}).Error; err != nil {
			return err
		}

		for _, m := range models {
			m.Status = sync.JobStatusRunning
			m.StartedAt = &claimTime
			m.UpdatedAt = claimTime
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]*sync.Job, len(models))
	for i, m := range models {
		jobs[i] = m.toDomain()
	}
	return jobs, nil
}

// RequeueStale returns running jobs claimed before the cutoff to pending so
// claims abandoned by a crashed worker are eventually re-run. The handlers
// are idempotent, so re-running a job that did finish its work is safe.
func (r *GormJobRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("status = ? AND started_at < ?", sync.JobStatusRunning, claimedBefore).
		Updates(map[string]interface{}{
			"status":     sync.JobStatusPending,
			"started_at": nil,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Update updates an existing job
func (r *GormJobRepository) Update(ctx context.Context, job *sync.Job) error {
	job.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(fromDomain(job)).Error
}

// FindRecent retrieves the most recent jobs of a queue with pagination
func (r *GormJobRepository) FindRecent(ctx context.Context, queueName string, page, pageSize int) ([]*sync.Job, int64, error) {
	var models []*jobModel
	var total int64

	query := r.db.WithContext(ctx).Model(&jobModel{})
	if queueName != "" {
		query = query.Where("queue_name = ?", queueName)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]*sync.Job, len(models))
	for i, m := range models {
		jobs[i] = m.toDomain()
	}
	return jobs, total, nil
}

// FindDead retrieves dead letter jobs with pagination
func (r *GormJobRepository) FindDead(ctx context.Context, page, pageSize int) ([]*sync.Job, int64, error) {
	var models []*jobModel
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("status = ?", sync.JobStatusDead).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Where("status = ?", sync.JobStatusDead).
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]*sync.Job, len(models))
	for i, m := range models {
		jobs[i] = m.toDomain()
	}
	return jobs, total, nil
}

// DeleteFinishedOlderThan deletes completed and dead jobs older than the
// specified time
func (r *GormJobRepository) DeleteFinishedOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND finished_at < ?",
			[]sync.JobStatus{sync.JobStatusCompleted, sync.JobStatusDead}, before).
		Delete(&jobModel{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns count of jobs for each status
func (r *GormJobRepository) CountByStatus(ctx context.Context) (map[sync.JobStatus]int64, error) {
	type statusCount struct {
		Status sync.JobStatus
		Count  int64
	}

	var results []statusCount
	err := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[sync.JobStatus]int64)
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Ensure GormJobRepository implements JobRepository
var _ sync.JobRepository = (*GormJobRepository)(nil)
