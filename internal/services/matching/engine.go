package matching

import (
	"errors"
	"fmt"
	"math"

	"ledger-reconciliation-backend/internal/ingest"
	"ledger-reconciliation-backend/internal/models"
	"ledger-reconciliation-backend/internal/repository"

	"gorm.io/gorm"
)

// Engine classifies file rows against the ledger. Lookups are issued per row;
// the ledger is treated as read-only for the duration of a match pass.
type Engine struct {
	ledger *repository.LedgerRepository
}

func NewEngine(ledger *repository.LedgerRepository) *Engine {
	return &Engine{ledger: ledger}
}

// Classify resolves a ledger counterpart for one non-duplicate row and grades
// the match:
//
//  1. Exact transactionID lookup when an ID is present.
//  2. Case-insensitive referenceNumber lookup when the ID found nothing.
//  3. No counterpart -> Unmatched.
//  4. Counterpart -> graded by amount variance: diff < 0.01 is Matched,
//     variance <= 2% is Partial Match, anything else is Mismatch.
//
// An unparsable file amount makes diff and variance NaN, so every comparison
// fails and a ledger-matched row lands in Mismatch. That propagation is part
// of the contract, not an accident to fix.
func (e *Engine) Classify(rec ingest.IncomingRecord) (models.ReconciliationResult, error) {
	status := models.StatusUnmatched
	notes := "Transaction ID not found"
	var systemAmount *float64

	var system *models.LedgerRecord
	viaRef := false

	if rec.FileID != "" {
		found, err := e.ledger.FindByTransactionID(rec.FileID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ReconciliationResult{}, fmt.Errorf("ledger lookup by id: %w", err)
		}
		system = found
	}

	if system == nil && rec.FileRef != "" {
		found, err := e.ledger.FindByReference(rec.FileRef)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ReconciliationResult{}, fmt.Errorf("ledger lookup by reference: %w", err)
		}
		if found != nil {
			system = found
			viaRef = true
		}
	}

	if system != nil {
		systemAmount = &system.Amount
		diff := math.Abs(system.Amount - rec.FileAmount)
		var variancePct float64
		switch {
		case system.Amount != 0:
			variancePct = diff / system.Amount * 100
		case diff == 0:
			variancePct = 0
		default:
			variancePct = 100
		}

		switch {
		case diff < 0.01:
			status = models.StatusMatched
			notes = "Perfect Match"
			if viaRef {
				notes = "Perfect Match (via Ref)"
			}
		case variancePct <= 2:
			status = models.StatusPartialMatch
			notes = fmt.Sprintf("Variance %.2f%%", variancePct)
			if viaRef {
				notes += " (via Ref)"
			}
		default:
			status = models.StatusMismatch
			notes = fmt.Sprintf("Variance > 2%% (%.0f%%)", variancePct)
			if viaRef {
				notes += " (via Ref)"
			}
		}
	} else if rec.FileRef != "" {
		notes = fmt.Sprintf("ID and Ref (%s) not found in System", rec.FileRef)
	}

	return buildResult(rec, systemAmount, status, notes), nil
}

// DuplicateResult classifies one row of a repeated ID. Every occurrence of a
// duplicated ID gets this, including the first, and skips ledger matching.
func DuplicateResult(rec ingest.IncomingRecord) models.ReconciliationResult {
	return buildResult(rec, nil, models.StatusDuplicate, "Duplicate ID in file")
}

func buildResult(rec ingest.IncomingRecord, systemAmount *float64, status, notes string) models.ReconciliationResult {
	transactionID := rec.FileID
	if transactionID == "" {
		transactionID = "UNKNOWN"
	}

	fileAmount := rec.FileAmount
	if math.IsNaN(fileAmount) {
		fileAmount = 0
	}

	// Raw difference when a nonzero system amount exists, otherwise 0. Like
	// fileAmount, an in-flight NaN is stored as 0.
	variance := 0.0
	if systemAmount != nil && *systemAmount != 0 {
		variance = math.Abs(*systemAmount - rec.FileAmount)
		if math.IsNaN(variance) {
			variance = 0
		}
	}

	return models.ReconciliationResult{
		TransactionID: transactionID,
		SystemAmount:  systemAmount,
		FileAmount:    fileAmount,
		Variance:      variance,
		Status:        status,
		AdminNotes:    notes,
	}
}
