package ingest

import "io"

// Preview parses the file headers and up to limit sample rows. It is
// non-authoritative: no job is created and nothing is persisted.
func Preview(r io.Reader, limit int) (headers []string, sample []map[string]string, err error) {
	headers, rows, err := ParseRows(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return headers, rows, nil
}
