package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/reconcile"
	"github.com/tordrt/tabrecon/internal/schema"
)

// MarkdownFormatter formats reports as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the probed tables in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Discovered Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables {
		if err := f.formatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table schema.ProbeResult) error {
	return f.formatTable(table)
}

func (f *MarkdownFormatter) formatTable(table schema.ProbeResult) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Table)

	_, _ = fmt.Fprintf(f.writer, "- **Status:** %s\n", status(table))
	if table.RowCount != nil {
		_, _ = fmt.Fprintf(f.writer, "- **Rows:** %d\n", *table.RowCount)
	}
	if table.Error != "" {
		_, _ = fmt.Fprintf(f.writer, "- **Error:** `%s`\n", oneLine(table.Error))
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.Columns) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Columns")
		_, _ = fmt.Fprintln(f.writer)
		for _, col := range table.Columns {
			if v := table.Sample.Get(col); v != "" {
				_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col, escapeCell(v))
			} else {
				_, _ = fmt.Fprintf(f.writer, "- **%s**\n", col)
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

// FormatCount writes an aggregate result as a one-row table
func (f *MarkdownFormatter) FormatCount(label string, r aggregate.Result) error {
	if label != "" {
		_, _ = fmt.Fprintf(f.writer, "## %s\n\n", label)
	}
	_, _ = fmt.Fprintln(f.writer, "| Total | Matching | Percentage |")
	_, _ = fmt.Fprintln(f.writer, "|---:|---:|---:|")
	_, _ = fmt.Fprintf(f.writer, "| %d | %d | %s |\n\n", r.Total, r.Matching, percent(r.Percentage))
	return nil
}

// FormatValues writes distinct values as a list
func (f *MarkdownFormatter) FormatValues(field string, values []string) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", field)
	_, _ = fmt.Fprintf(f.writer, "%d distinct values\n\n", len(values))
	for _, v := range values {
		_, _ = fmt.Fprintf(f.writer, "- %s\n", escapeCell(v))
	}
	_, _ = fmt.Fprintln(f.writer)
	return nil
}

// FormatGroups writes a rollup by dimension as a table
func (f *MarkdownFormatter) FormatGroups(dimension string, groups []aggregate.Group) error {
	_, _ = fmt.Fprintf(f.writer, "## By %s\n\n", dimension)
	_, _ = fmt.Fprintf(f.writer, "| %s | Count | Percentage |\n", escapeCell(dimension))
	_, _ = fmt.Fprintln(f.writer, "|---|---:|---:|")
	for _, g := range groups {
		value := g.Value
		if value == "" {
			value = "_(blank)_"
		}
		_, _ = fmt.Fprintf(f.writer, "| %s | %d | %s |\n", escapeCell(value), g.Count, percent(g.Percentage))
	}
	_, _ = fmt.Fprintln(f.writer)
	return nil
}

// FormatMissing writes the remediation list as a table
func (f *MarkdownFormatter) FormatMissing(r reconcile.Result) error {
	_, _ = fmt.Fprintln(f.writer, "## Missing Location")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "%d checked, %d flagged, %d skipped\n\n", r.Checked, r.Flagged, r.Skipped)
	if len(r.Entries) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(f.writer, "| Venue | Missing |")
	_, _ = fmt.Fprintln(f.writer, "|---|---|")
	for _, e := range r.Entries {
		_, _ = fmt.Fprintf(f.writer, "| %s | %s |\n", escapeCell(e.ID), strings.Join(e.Missing, ", "))
	}
	_, _ = fmt.Fprintln(f.writer)
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
