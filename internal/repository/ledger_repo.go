package repository

import (
	"ledger-reconciliation-backend/internal/models"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Expose DB if needed
func (r *LedgerRepository) DB() *gorm.DB {
	return r.db
}

// FindByTransactionID fetches a ledger record by exact transaction ID.
func (r *LedgerRepository) FindByTransactionID(transactionID string) (*models.LedgerRecord, error) {
	var rec models.LedgerRecord
	err := r.db.First(&rec, "transaction_id = ?", transactionID).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByReference fetches a ledger record by case-insensitive exact match on
// the reference number.
func (r *LedgerRepository) FindByReference(reference string) (*models.LedgerRecord, error) {
	var rec models.LedgerRecord
	err := r.db.First(&rec, "LOWER(reference_number) = LOWER(?)", reference).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteAll clears the entire ledger ahead of a full reload.
func (r *LedgerRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.LedgerRecord{}).Error
}

// InsertBatch inserts one loader batch.
func (r *LedgerRepository) InsertBatch(records []models.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

func (r *LedgerRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.LedgerRecord{}).Count(&n).Error
	return n, err
}
