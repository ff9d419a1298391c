package matching

import (
	"math"
	"testing"

	"ledger-reconciliation-backend/internal/ingest"
	"ledger-reconciliation-backend/internal/models"
	"ledger-reconciliation-backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestEngine(t *testing.T, records ...models.LedgerRecord) *Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.LedgerRecord{}))

	for i := range records {
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
	}
	if len(records) > 0 {
		require.NoError(t, db.Create(&records).Error)
	}
	return NewEngine(repository.NewLedgerRepository(db))
}

func ledgerRecord(transactionID, reference string, amount float64) models.LedgerRecord {
	return models.LedgerRecord{
		TransactionID:   transactionID,
		ReferenceNumber: reference,
		Amount:          amount,
	}
}

func record(id, ref string, amount float64) ingest.IncomingRecord {
	return ingest.IncomingRecord{FileID: id, FileRef: ref, FileAmount: amount}
}

func TestClassifyVarianceBands(t *testing.T) {
	e := newTestEngine(t, ledgerRecord("TX-1", "", 100.00))

	tests := []struct {
		name       string
		fileAmount float64
		wantStatus string
		wantNotes  string
	}{
		{"perfect match", 100.00, models.StatusMatched, "Perfect Match"},
		{"within 2 percent", 101.50, models.StatusPartialMatch, "Variance 1.50%"},
		{"beyond 2 percent", 105.00, models.StatusMismatch, "Variance > 2% (5%)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.Classify(record("TX-1", "", tc.fileAmount))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, res.Status)
			assert.Equal(t, tc.wantNotes, res.AdminNotes)
			require.NotNil(t, res.SystemAmount)
			assert.Equal(t, 100.00, *res.SystemAmount)
		})
	}
}

func TestClassifyZeroSystemAmount(t *testing.T) {
	e := newTestEngine(t, ledgerRecord("TX-0", "", 0))

	res, err := e.Classify(record("TX-0", "", 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMatched, res.Status)
	assert.Equal(t, 0.0, res.Variance)

	// A zero system amount against any nonzero file amount grades as a 100%
	// variance mismatch.
	res, err = e.Classify(record("TX-0", "", 5))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMismatch, res.Status)
	assert.Equal(t, "Variance > 2% (100%)", res.AdminNotes)
}

func TestClassifyNaNFileAmountFallsToMismatch(t *testing.T) {
	e := newTestEngine(t, ledgerRecord("TX-1", "", 100.00))

	res, err := e.Classify(record("TX-1", "", math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMismatch, res.Status)
	assert.Contains(t, res.AdminNotes, "Variance > 2%")
	// The stored file amount is coerced to 0; NaN is in-flight only.
	assert.Equal(t, 0.0, res.FileAmount)
}

func TestClassifyReferenceFallback(t *testing.T) {
	e := newTestEngine(t, ledgerRecord("SYS-1", "REF-01", 100.00))

	// ID not in the ledger, reference matches case-insensitively.
	res, err := e.Classify(record("TX-MISSING", "ref-01", 100.00))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMatched, res.Status)
	assert.Equal(t, "Perfect Match (via Ref)", res.AdminNotes)

	res, err = e.Classify(record("TX-MISSING", "REF-01", 101.00))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartialMatch, res.Status)
	assert.Equal(t, "Variance 1.00% (via Ref)", res.AdminNotes)
}

func TestClassifyIDLookupWinsOverReference(t *testing.T) {
	e := newTestEngine(t,
		ledgerRecord("TX-1", "REF-A", 100.00),
		ledgerRecord("TX-2", "REF-B", 500.00),
	)

	// Both an ID and a reference resolve; the ID match is authoritative and
	// the reference is never consulted.
	res, err := e.Classify(record("TX-1", "REF-B", 100.00))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMatched, res.Status)
	assert.Equal(t, "Perfect Match", res.AdminNotes)
	assert.Equal(t, 100.00, *res.SystemAmount)
}

func TestClassifyUnmatchedNotes(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Classify(record("TX-GONE", "", 10))
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnmatched, res.Status)
	assert.Equal(t, "Transaction ID not found", res.AdminNotes)
	assert.Nil(t, res.SystemAmount)
	assert.Equal(t, 0.0, res.Variance)

	res, err = e.Classify(record("TX-GONE", "REF-GONE", 10))
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnmatched, res.Status)
	assert.Equal(t, "ID and Ref (REF-GONE) not found in System", res.AdminNotes)
}

func TestClassifyEmptyIDUsesUnknownPlaceholder(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Classify(record("", "", 10))
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", res.TransactionID)
	assert.Equal(t, models.StatusUnmatched, res.Status)
}

func TestDuplicateIDsFlagsAllOccurrences(t *testing.T) {
	records := []ingest.IncomingRecord{
		record("A", "", 1),
		record("B", "", 1),
		record("A", "", 1),
		record("C", "", 1),
	}

	dupes := DuplicateIDs(records)
	assert.True(t, dupes["A"])
	assert.False(t, dupes["B"])
	assert.False(t, dupes["C"])
}

func TestDuplicateIDsIgnoresEmptyIDs(t *testing.T) {
	records := []ingest.IncomingRecord{
		record("", "", 1),
		record("", "", 1),
	}
	assert.Empty(t, DuplicateIDs(records))
}

func TestDuplicateResult(t *testing.T) {
	res := DuplicateResult(record("A", "", 42))
	assert.Equal(t, models.StatusDuplicate, res.Status)
	assert.Equal(t, "Duplicate ID in file", res.AdminNotes)
	assert.Nil(t, res.SystemAmount)
	assert.Equal(t, 42.0, res.FileAmount)
	assert.Equal(t, 0.0, res.Variance)
}
