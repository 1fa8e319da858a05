package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultJobRepository struct {
	DB *gorm.DB
}

func NewDefaultJobRepository(db *gorm.DB) *DefaultJobRepository {
	return &DefaultJobRepository{DB: db}
}

func (r *DefaultJobRepository) EnqueueJob(ctx context.Context, job *domain.Job) error {
	jobModel := mappers.ToGORMJob(job)
	return r.DB.WithContext(ctx).Create(jobModel).Error
}

// ClaimNextJob takes the oldest due QUEUED job of the lane. SKIP LOCKED
// keeps concurrent workers from blocking on, or double-claiming, the
// same row.
func (r *DefaultJobRepository) ClaimNextJob(ctx context.Context, lane domain.Lane) (*domain.Job, error) {
	var jobModel models.JobModel

	err := r.DB.WithContext(ctx).Raw(`
		UPDATE jobs
		SET status = ?, attempt_count = attempt_count + 1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE lane = ? AND status = ? AND run_at <= NOW()
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		domain.JobRunning, lane, domain.JobQueued,
	).Scan(&jobModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if jobModel.ID == "" {
		return nil, nil
	}

	return mappers.ToDomainJob(&jobModel), nil
}

func (r *DefaultJobRepository) CompleteJob(ctx context.Context, jobID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     domain.JobCompleted,
			"last_error": "",
		}).Error
}

func (r *DefaultJobRepository) RequeueJob(ctx context.Context, jobID string, runAt time.Time, lastError string) error {
	return r.DB.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     domain.JobQueued,
			"run_at":     runAt,
			"last_error": lastError,
		}).Error
}

// MarkJobDead is terminal but never deletes: DEAD jobs stay queryable
// for unpaid-commission investigations.
func (r *DefaultJobRepository) MarkJobDead(ctx context.Context, jobID string, lastError string) error {
	return r.DB.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     domain.JobDead,
			"last_error": lastError,
		}).Error
}

func (r *DefaultJobRepository) CancelJob(ctx context.Context, jobID string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ? AND status = ?", jobID, domain.JobQueued).
		Update("status", domain.JobCanceled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrJobNotCancelable
	}

	return nil
}

func (r *DefaultJobRepository) CancelQueuedJobs(ctx context.Context, lane domain.Lane) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("lane = ? AND status = ?", lane, domain.JobQueued).
		Update("status", domain.JobCanceled)
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

func (r *DefaultJobRepository) CountQueuedJobs(ctx context.Context, lane domain.Lane) (int64, error) {
	var depth int64
	if err := r.DB.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("lane = ? AND status = ?", lane, domain.JobQueued).
		Count(&depth).Error; err != nil {
		return 0, err
	}

	return depth, nil
}

func (r *DefaultJobRepository) ListDeadJobs(ctx context.Context, lane domain.Lane) ([]*domain.Job, error) {
	var jobModels []models.JobModel
	if err := r.DB.WithContext(ctx).
		Where("lane = ? AND status = ?", lane, domain.JobDead).
		Order("updated_at DESC").
		Find(&jobModels).Error; err != nil {
		return nil, err
	}

	jobs := make([]*domain.Job, len(jobModels))
	for i, jobModel := range jobModels {
		jobs[i] = mappers.ToDomainJob(&jobModel)
	}

	return jobs, nil
}
