package formatter

import (
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/reconcile"
	"github.com/tordrt/tabrecon/internal/schema"
)

// JSONFormatter writes each report as one indented JSON document.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

type countReport struct {
	Label      string  `json:"label,omitempty"`
	Total      int     `json:"total"`
	Matching   int     `json:"matching"`
	Percentage float64 `json:"percentage"`
}

type valuesReport struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

type groupsReport struct {
	Dimension string            `json:"dimension"`
	Groups    []aggregate.Group `json:"groups"`
}

// Format writes the probed tables
func (f *JSONFormatter) Format(s *schema.Schema) error {
	return f.encode(s)
}

// FormatCount writes an aggregate result
func (f *JSONFormatter) FormatCount(label string, r aggregate.Result) error {
	return f.encode(countReport{
		Label:      label,
		Total:      r.Total,
		Matching:   r.Matching,
		Percentage: round2(r.Percentage),
	})
}

// FormatValues writes distinct values
func (f *JSONFormatter) FormatValues(field string, values []string) error {
	if values == nil {
		values = []string{}
	}
	return f.encode(valuesReport{Field: field, Values: values})
}

// FormatGroups writes a rollup by dimension
func (f *JSONFormatter) FormatGroups(dimension string, groups []aggregate.Group) error {
	out := make([]aggregate.Group, len(groups))
	for i, g := range groups {
		g.Percentage = round2(g.Percentage)
		out[i] = g
	}
	return f.encode(groupsReport{Dimension: dimension, Groups: out})
}

// FormatMissing writes the remediation list
func (f *JSONFormatter) FormatMissing(r reconcile.Result) error {
	if r.Entries == nil {
		r.Entries = []reconcile.Entry{}
	}
	return f.encode(r)
}

func (f *JSONFormatter) encode(v any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func round2(p float64) float64 {
	return math.Round(p*100) / 100
}
