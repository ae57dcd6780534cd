package schema

import "github.com/tordrt/tabrecon/internal/record"

// Schema is the set of tables probed in one run, in the caller's order.
type Schema struct {
	Tables []ProbeResult `json:"tables"`
}

// ColumnSource records how a column list was discovered.
type ColumnSource string

const (
	// SourceNone means no columns could be discovered.
	SourceNone ColumnSource = "none"
	// SourceSample means the columns are the field names of a sampled row.
	SourceSample ColumnSource = "sample"
	// SourceRejection means the columns were parsed out of a rejected insert.
	SourceRejection ColumnSource = "rejection"
)

// ProbeResult describes one probed table
type ProbeResult struct {
	Table   string            `json:"table"`
	Exists  bool              `json:"tableExists"`
	Columns []string          `json:"columns"`
	Sample  record.Normalized `json:"sampleRecord,omitempty"`
	Source  ColumnSource      `json:"source"`
	// RowCount is the exact row count reported by the store, if it reported one.
	RowCount *int `json:"rowCount,omitempty"`
	// Failure and Error describe a failed or inconclusive probe. Probe leaves
	// them empty; batch callers record the returned error with SetError.
	Failure Kind   `json:"failure,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SetError records err on the result for reporting.
func (r *ProbeResult) SetError(err error) {
	if err == nil {
		return
	}
	r.Failure = KindOf(err)
	r.Error = err.Error()
}

// HasColumn reports whether the result lists column, compared canonically.
func (r ProbeResult) HasColumn(column string) bool {
	want := record.Canonical(column)
	for _, c := range r.Columns {
		if record.Canonical(c) == want {
			return true
		}
	}
	return false
}
