package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/tabrecon/internal/schema"
)

// MultiFileFormatter writes probe results to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text", "markdown" or "json"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per probed table
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables {
		if err := f.writeTableFile(table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Table, err)
		}
	}

	return nil
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Sort tables alphabetically
	sorted := make([]schema.ProbeResult, len(s.Tables))
	copy(sorted, s.Tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Table < sorted[j].Table
	})

	switch f.OutputFormat {
	case formatMarkdown:
		return f.writeMarkdownOverview(file, sorted)
	case formatJSON:
		return NewJSONFormatter(file).Format(&schema.Schema{Tables: overviewEntries(sorted)})
	default:
		return f.writeTextOverview(file, sorted)
	}
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, tables []schema.ProbeResult) error {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "- **%s** (%s", table.Table, status(table))
		if len(table.Columns) > 0 {
			_, _ = fmt.Fprintf(w, ", %d columns", len(table.Columns))
		}
		_, _ = fmt.Fprintf(w, ")\n")
	}

	return nil
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, tables []schema.ProbeResult) error {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())

	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "%s (%s)", table.Table, status(table))
		if len(table.Columns) > 0 {
			_, _ = fmt.Fprintf(w, " columns: %s", strings.Join(table.Columns, ","))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(table schema.ProbeResult) error {
	filename := filepath.Join(f.OutputDir, fileName(table.Table)+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	switch f.OutputFormat {
	case formatMarkdown:
		return NewMarkdownFormatter(file).FormatTable(table)
	case formatJSON:
		return NewJSONFormatter(file).encode(table)
	default:
		return NewTextFormatter(file).formatTable(table)
	}
}

// overviewEntries drops sample values so the overview stays small.
func overviewEntries(tables []schema.ProbeResult) []schema.ProbeResult {
	out := make([]schema.ProbeResult, len(tables))
	for i, t := range tables {
		t.Sample = nil
		out[i] = t
	}
	return out
}

// fileName makes a table name safe to use as a file name.
func fileName(table string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, table)
}

func (f *MultiFileFormatter) getFileExtension() string {
	switch f.OutputFormat {
	case formatMarkdown:
		return ".md"
	case formatJSON:
		return ".json"
	default:
		return ".txt"
	}
}
