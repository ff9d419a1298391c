package repository

import (
	"errors"
	"time"

	"ledger-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *models.UploadJob) error {
	return r.db.Create(job).Error
}

// FindCompletedByHash returns the completed job for a file hash, or nil when
// no such job exists. A cache miss is a normal outcome, not an error.
func (r *JobRepository) FindCompletedByHash(fileHash string) (*models.UploadJob, error) {
	var job models.UploadJob
	err := r.db.First(&job, "file_hash = ? AND status = ?", fileHash, models.JobCompleted).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetByID(id uuid.UUID) (*models.UploadJob, error) {
	var job models.UploadJob
	if err := r.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkCompleted sets the terminal Completed state with the final record count.
func (r *JobRepository) MarkCompleted(id uuid.UUID, totalRecords int) error {
	return r.db.Model(&models.UploadJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_records": totalRecords,
			"status":        models.JobCompleted,
			"completed_at":  time.Now(),
		}).Error
}

// MarkFailed sets the terminal Failed state.
func (r *JobRepository) MarkFailed(id uuid.UUID) error {
	return r.db.Model(&models.UploadJob{}).
		Where("id = ?", id).
		Update("status", models.JobFailed).Error
}

// LatestCompleted returns the most recently created completed job.
func (r *JobRepository) LatestCompleted() (*models.UploadJob, error) {
	var job models.UploadJob
	err := r.db.Where("status = ?", models.JobCompleted).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}
