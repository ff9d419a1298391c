package ingest

// Mapping names the file columns carrying each semantic role. When a mapping
// is supplied it is used verbatim for every role; a named column that does not
// exist simply resolves to an empty value.
type Mapping struct {
	TransactionID   string `json:"transactionID"`
	Amount          string `json:"amount"`
	ReferenceNumber string `json:"referenceNumber"`
}

// Fallback header candidates, tried in order when no mapping is given. An
// empty value falls through to the next candidate.
var (
	idColumns     = []string{"transactionID", "TransactionID", "id"}
	refColumns    = []string{"referenceNumber", "Reference", "reference"}
	amountColumns = []string{"amount", "Amount"}
)

func fallback(row map[string]string, candidates []string) string {
	for _, col := range candidates {
		if v := row[col]; v != "" {
			return v
		}
	}
	return ""
}

func resolveID(row map[string]string, m *Mapping) string {
	if m != nil {
		return row[m.TransactionID]
	}
	return fallback(row, idColumns)
}

func resolveRef(row map[string]string, m *Mapping) string {
	if m != nil {
		return row[m.ReferenceNumber]
	}
	return fallback(row, refColumns)
}

func resolveAmount(row map[string]string, m *Mapping) string {
	if m != nil {
		return row[m.Amount]
	}
	return fallback(row, amountColumns)
}
