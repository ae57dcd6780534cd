package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/reconcile"
	"github.com/tordrt/tabrecon/internal/schema"
)

// TextFormatter formats reports as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the probed tables in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(table); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table schema.ProbeResult) error {
	rows := ""
	if table.RowCount != nil {
		rows = fmt.Sprintf(", %d rows", *table.RowCount)
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s (%s%s)\n", table.Table, status(table), rows)

	for _, col := range table.Columns {
		if v := table.Sample.Get(col); v != "" {
			_, _ = fmt.Fprintf(f.writer, "  %s: %s\n", col, v)
			continue
		}
		_, _ = fmt.Fprintf(f.writer, "  %s\n", col)
	}

	if table.Error != "" {
		_, _ = fmt.Fprintf(f.writer, "  ERROR: %s\n", table.Error)
	}
	return nil
}

// FormatCount writes an aggregate result
func (f *TextFormatter) FormatCount(label string, r aggregate.Result) error {
	if label != "" {
		_, _ = fmt.Fprintf(f.writer, "%s\n", label)
	}
	_, _ = fmt.Fprintf(f.writer, "  total: %d\n", r.Total)
	_, _ = fmt.Fprintf(f.writer, "  matching: %d\n", r.Matching)
	_, _ = fmt.Fprintf(f.writer, "  percentage: %s\n", percent(r.Percentage))
	return nil
}

// FormatValues writes distinct values one per line
func (f *TextFormatter) FormatValues(field string, values []string) error {
	_, _ = fmt.Fprintf(f.writer, "FIELD %s (%d distinct)\n", field, len(values))
	for _, v := range values {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", v)
	}
	return nil
}

// FormatGroups writes a rollup by dimension
func (f *TextFormatter) FormatGroups(dimension string, groups []aggregate.Group) error {
	_, _ = fmt.Fprintf(f.writer, "GROUP BY %s\n", dimension)
	for _, g := range groups {
		value := g.Value
		if value == "" {
			value = "(blank)"
		}
		_, _ = fmt.Fprintf(f.writer, "  %s: %d (%s)\n", value, g.Count, percent(g.Percentage))
	}
	return nil
}

// FormatMissing writes the remediation list
func (f *TextFormatter) FormatMissing(r reconcile.Result) error {
	_, _ = fmt.Fprintf(f.writer, "MISSING LOCATION (%d checked, %d flagged, %d skipped)\n", r.Checked, r.Flagged, r.Skipped)
	for _, e := range r.Entries {
		_, _ = fmt.Fprintf(f.writer, "  %s: %s\n", e.ID, strings.Join(e.Missing, ", "))
	}
	return nil
}
