package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusMatched      = "Matched"
	StatusPartialMatch = "Partial Match"
	StatusMismatch     = "Mismatch"
	StatusUnmatched    = "Unmatched"
	StatusDuplicate    = "Duplicate"
)

// ReconciliationResult is one classified file row, owned by its job. Rows are
// bulk-inserted once per job and only change afterwards through a manual
// correction, which sets IsManuallyCorrected.
type ReconciliationResult struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UploadJobID uuid.UUID `gorm:"index"`
	// RowNumber preserves file row order across the bulk insert.
	RowNumber           int
	TransactionID       string
	SystemAmount        *float64
	FileAmount          float64
	Variance            float64
	Status              string `gorm:"index"`
	AdminNotes          string
	IsManuallyCorrected bool
	CreatedAt           time.Time
}
