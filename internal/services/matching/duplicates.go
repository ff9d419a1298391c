package matching

import "ledger-reconciliation-backend/internal/ingest"

// DuplicateIDs returns every resolved transaction ID that occurs more than
// once in the file. Rows with an empty ID never count as duplicates.
func DuplicateIDs(records []ingest.IncomingRecord) map[string]bool {
	seen := make(map[string]bool, len(records))
	dupes := make(map[string]bool)
	for _, rec := range records {
		if rec.FileID == "" {
			continue
		}
		if seen[rec.FileID] {
			dupes[rec.FileID] = true
		}
		seen[rec.FileID] = true
	}
	return dupes
}
