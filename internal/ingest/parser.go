package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// IncomingRecord is one parsed file row with its resolved fields. It lives
// only for the duration of a single job's pipeline run.
type IncomingRecord struct {
	Raw     map[string]string
	FileID  string
	FileRef string
	// FileAmount is NaN when the amount field failed to parse. NaN is the
	// in-flight sentinel only; persisted results store 0 instead.
	FileAmount float64
}

// ParseRows reads a comma-delimited file with a header row into ordered field
// maps, one per data row. Malformed rows are skipped; a failing underlying
// stream is fatal and surfaced to the caller.
func ParseRows(r io.Reader) (headers []string, rows []map[string]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err = reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Only CSV syntax errors are row-local; anything else means the
			// stream itself is broken and retrying would loop forever.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// Resolve applies the column mapping (or the built-in fallbacks) to every row,
// preserving file order. ID and reference are trimmed; the amount becomes NaN
// when it does not parse.
func Resolve(rows []map[string]string, m *Mapping) []IncomingRecord {
	records := make([]IncomingRecord, 0, len(rows))
	for _, row := range rows {
		rec := IncomingRecord{
			Raw:     row,
			FileID:  strings.TrimSpace(resolveID(row, m)),
			FileRef: strings.TrimSpace(resolveRef(row, m)),
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(resolveAmount(row, m)), 64)
		if err != nil {
			amount = math.NaN()
		}
		rec.FileAmount = amount
		records = append(records, rec)
	}
	return records
}
