package audit

import (
	"log"
	"time"

	"ledger-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies who triggered an operation. Authentication lives upstream;
// the engine only carries the identity through to the audit trail.
type Actor struct {
	Name string
	Role string
}

type Entry struct {
	Action  string
	Actor   Actor
	Details string
	Status  string
	JobID   *uuid.UUID
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Record writes one audit row. It is fire-and-forget: a failed write is
// logged and must never abort the operation that triggered it.
func (s *Service) Record(e Entry) {
	status := e.Status
	if status == "" {
		status = "Success"
	}
	row := models.AuditLog{
		ID:          uuid.New(),
		Action:      e.Action,
		PerformedBy: e.Actor.Name,
		Role:        e.Actor.Role,
		Details:     e.Details,
		Status:      status,
		JobID:       e.JobID,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("audit: failed to record %q: %v", e.Action, err)
	}
}
