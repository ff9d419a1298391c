package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Job lifecycle: Processing -> Completed | Failed. Both end states are terminal.
const (
	JobProcessing = "Processing"
	JobCompleted  = "Completed"
	JobFailed     = "Failed"
)

type UploadJob struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename     string
	FileHash     string `gorm:"index"`
	TotalRecords int
	UploadedBy   string
	Status       string `gorm:"index"`
	// Mapping is the column mapping submitted with the file, if any.
	Mapping     datatypes.JSON
	CreatedAt   time.Time
	CompletedAt *time.Time
}
