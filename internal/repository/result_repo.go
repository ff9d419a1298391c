package repository

import (
	"ledger-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// BulkInsert persists all results for one job in a single pass.
func (r *ResultRepository) BulkInsert(results []models.ReconciliationResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&results, 500).Error
}

// ListByJob returns a job's results in file row order.
func (r *ResultRepository) ListByJob(jobID uuid.UUID) ([]models.ReconciliationResult, error) {
	var results []models.ReconciliationResult
	err := r.db.Where("upload_job_id = ?", jobID).
		Order("row_number ASC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) GetByID(id uuid.UUID) (*models.ReconciliationResult, error) {
	var res models.ReconciliationResult
	if err := r.db.First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResultRepository) Save(res *models.ReconciliationResult) error {
	return r.db.Save(res).Error
}
