package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Action      string
	PerformedBy string
	Role        string
	Details     string
	Status      string `gorm:"default:Success"`
	JobID       *uuid.UUID
	CreatedAt   time.Time
}
