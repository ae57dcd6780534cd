// Package source reads spreadsheet and CSV exports into raw records.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tordrt/tabrecon/internal/record"
)

// Table is a parsed sheet: the header row in source order and one raw record
// per data row.
type Table struct {
	Name    string
	Columns []string
	Rows    []record.Raw
}

// CSVOptions configures ParseCSV.
type CSVOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// Name is used as the table name.
	Name string
}

// ParseCSV reads a CSV stream whose first row is the header. Rows shorter than
// the header simply lack the trailing fields; extra cells are dropped.
func ParseCSV(r io.Reader, opt CSVOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Name: opt.Name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{Name: opt.Name, Columns: headerNames(header)}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}
		t.addRow(row)
	}
	return t, nil
}

// ParseXLSX reads one sheet of a workbook. An empty sheet name selects the
// first sheet.
func ParseXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return readSheet(f, sheet)
}

// ParseWorkbook reads every sheet of a workbook in tab order.
func ParseWorkbook(r io.Reader) ([]*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var tables []*Table
	for _, name := range f.GetSheetList() {
		t, err := readSheet(f, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// SheetNames lists the sheets of a workbook in tab order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return f.GetSheetList(), nil
}

// Load reads the file at path, choosing the parser by extension. For
// workbooks sheet selects the sheet; for CSV files it is ignored.
func Load(path, sheet string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ParseCSV(f, CSVOptions{Name: name})
	case ".tsv":
		return ParseCSV(f, CSVOptions{Name: name, Comma: '\t'})
	case ".xlsx", ".xlsm":
		return ParseXLSX(f, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q (must be .csv, .tsv, .xlsx or .xlsm)", ext)
	}
}

// LoadAll reads every table in the file at path: all sheets of a workbook,
// or the single table of a CSV file.
func LoadAll(path string) ([]*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ParseWorkbook(f)
	}

	t, err := Load(path, "")
	if err != nil {
		return nil, err
	}
	return []*Table{t}, nil
}

func readSheet(f *excelize.File, sheet string) (*Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	t := &Table{Name: sheet}
	for i, row := range rows {
		if i == 0 {
			t.Columns = headerNames(row)
			continue
		}
		if blankRow(row) {
			continue
		}
		t.addRow(row)
	}
	return t, nil
}

func (t *Table) addRow(cells []string) {
	rec := make(record.Raw, len(t.Columns))
	for i, c := range cells {
		if i >= len(t.Columns) {
			break
		}
		rec[t.Columns[i]] = c
	}
	t.Rows = append(t.Rows, rec)
}

// headerNames cleans a header row: a leading byte order mark is removed,
// blank names become column_N and repeated names get the lowest numeric
// suffix that clashes with no other header.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		names[i] = h
		taken[h] = true
	}

	used := make(map[string]bool, len(names))
	for i, h := range names {
		name := h
		for n := 2; used[name]; n++ {
			if name = h + "_" + strconv.Itoa(n); taken[name] {
				// a later header already owns this name
				name = h
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
