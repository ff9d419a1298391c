package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerRecord is one system-of-record transaction. The ledger is replaced
// wholesale by the loader, never patched row by row.
type LedgerRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID   string    `gorm:"uniqueIndex"`
	ReferenceNumber string    `gorm:"index"`
	Amount          float64
	Currency        string `gorm:"default:USD"`
	Date            time.Time
	Description     string
	Source          string
	CreatedAt       time.Time
}
