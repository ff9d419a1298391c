package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ledger-reconciliation-backend/internal/models"
	"ledger-reconciliation-backend/internal/repository"
	"ledger-reconciliation-backend/internal/services/audit"

	"github.com/google/uuid"
)

const defaultBatchSize = 5000

// Loader replaces the entire ledger from a master file. The replace is
// non-transactional: a failure mid-load can leave the ledger empty or
// partially populated, and the caller is told so.
type Loader struct {
	ledger    *repository.LedgerRepository
	audit     *audit.Service
	batchSize int
}

func NewLoader(ledgerRepo *repository.LedgerRepository, auditSvc *audit.Service, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{ledger: ledgerRepo, audit: auditSvc, batchSize: batchSize}
}

// Header fallbacks are fixed for master files, independent of the per-job
// column mapper.
var (
	idHeaders     = []string{"transactionID", "id", "ID", "Transaction ID"}
	refHeaders    = []string{"referenceNumber", "Reference", "ref", "reference"}
	amountHeaders = []string{"amount", "Amount"}
	descHeaders   = []string{"description", "Description"}
)

func pick(row map[string]string, candidates []string) string {
	for _, h := range candidates {
		if v := row[h]; v != "" {
			return v
		}
	}
	return ""
}

// Reload deletes the existing ledger, then streams the file in, inserting in
// fixed-size batches. Rows missing an ID or carrying an unparsable amount are
// silently dropped; repeated transaction IDs keep the first occurrence only.
// Returns the number of records inserted.
func (l *Loader) Reload(r io.Reader, actor audit.Actor) (int, error) {
	if err := l.ledger.DeleteAll(); err != nil {
		return 0, fmt.Errorf("clear ledger: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		l.audit.Record(audit.Entry{
			Action:  "System Data Update",
			Actor:   actor,
			Details: "Replaced System Data with 0 records.",
		})
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	seen := make(map[string]struct{})
	batch := make([]models.LedgerRecord, 0, l.batchSize)
	total := 0

	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Malformed rows are skippable; a broken stream is not, and the
			// ledger may already be partially replaced at this point.
			var parseErr *csv.ParseError
			if errors.As(readErr, &parseErr) {
				continue
			}
			return total, fmt.Errorf("read row: %w", readErr)
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}

		transactionID := strings.TrimSpace(pick(row, idHeaders))
		if transactionID == "" {
			continue
		}

		// A missing amount column counts as zero; a present but unparsable
		// value drops the row.
		amount := 0.0
		if raw := strings.TrimSpace(pick(row, amountHeaders)); raw != "" {
			parsed, perr := strconv.ParseFloat(raw, 64)
			if perr != nil {
				continue
			}
			amount = parsed
		}

		if _, dup := seen[transactionID]; dup {
			continue
		}
		seen[transactionID] = struct{}{}

		description := pick(row, descHeaders)
		if description == "" {
			description = "System Upload"
		}

		batch = append(batch, models.LedgerRecord{
			ID:              uuid.New(),
			TransactionID:   transactionID,
			ReferenceNumber: strings.TrimSpace(pick(row, refHeaders)),
			Amount:          amount,
			Date:            time.Now(),
			Description:     description,
			Source:          "system_upload",
			CreatedAt:       time.Now(),
		})

		// Inserting synchronously here pauses the read loop, which is the
		// only backpressure the loader needs.
		if len(batch) >= l.batchSize {
			if err := l.ledger.InsertBatch(batch); err != nil {
				return total, fmt.Errorf("batch insert: %w", err)
			}
			total += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.ledger.InsertBatch(batch); err != nil {
			return total, fmt.Errorf("final batch insert: %w", err)
		}
		total += len(batch)
	}

	l.audit.Record(audit.Entry{
		Action:  "System Data Update",
		Actor:   actor,
		Details: fmt.Sprintf("Replaced System Data with %d records.", total),
	})
	return total, nil
}
