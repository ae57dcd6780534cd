package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/reconcile"
)

const worklistSheet = "missing_location"

// WriteWorklist writes the remediation list as an XLSX workbook with one row
// per flagged venue and one column per required field, marked "x" where the
// field is missing. A "summary" sheet carries the counters, plus a rollup
// sheet per entry in groups.
func WriteWorklist(w io.Writer, r reconcile.Result, required []string, groups map[string][]aggregate.Group) error {
	x := excelize.NewFile()
	defer func() { _ = x.Close() }()

	header := append([]string{"Venue", "Missing"}, required...)
	rows := [][]string{header}
	for _, e := range r.Entries {
		row := []string{e.ID, strings.Join(e.Missing, ", ")}
		for _, field := range required {
			mark := ""
			for _, m := range e.Missing {
				if m == field {
					mark = "x"
					break
				}
			}
			row = append(row, mark)
		}
		rows = append(rows, row)
	}

	idx, err := addSheet(x, worklistSheet, rows)
	if err != nil {
		return err
	}
	x.SetActiveSheet(idx)

	summary := [][]string{
		{"Checked", "Flagged", "Skipped"},
		{fmt.Sprint(r.Checked), fmt.Sprint(r.Flagged), fmt.Sprint(r.Skipped)},
	}
	if _, err := addSheet(x, "summary", summary); err != nil {
		return err
	}

	dimensions := make([]string, 0, len(groups))
	for d := range groups {
		dimensions = append(dimensions, d)
	}
	sort.Strings(dimensions)
	for _, dimension := range dimensions {
		gs := groups[dimension]
		sheet := [][]string{{dimension, "Count", "Percentage"}}
		for _, g := range gs {
			sheet = append(sheet, []string{g.Value, fmt.Sprint(g.Count), percent(g.Percentage)})
		}
		if _, err := addSheet(x, sheetName("by_"+dimension), sheet); err != nil {
			return err
		}
	}

	if err := x.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if err := x.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addSheet(x *excelize.File, name string, rows [][]string) (int, error) {
	idx, err := x.NewSheet(name)
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return 0, err
			}
			if err := x.SetCellStr(name, cell, v); err != nil {
				return 0, fmt.Errorf("failed to write cell %s!%s: %w", name, cell, err)
			}
		}
	}
	return idx, nil
}

// sheetName trims name to Excel's 31 character limit and drops the
// characters sheet names may not contain.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}
