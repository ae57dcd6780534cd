package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/db"
	"github.com/tordrt/tabrecon/internal/formatter"
	"github.com/tordrt/tabrecon/internal/record"
	"github.com/tordrt/tabrecon/internal/reconcile"
	"github.com/tordrt/tabrecon/internal/source"
)

// recordFlags selects and shapes the records a report runs over.
type recordFlags struct {
	files []string
	sheet string
	table string
	maps  []string
	where []string
}

func (rf *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&rf.files, "file", nil, "Read records from CSV/TSV/XLSX files (repeatable)")
	cmd.Flags().StringVar(&rf.sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&rf.table, "table", "", "Read records from this table of the --db-url store")
	cmd.Flags().StringArrayVar(&rf.maps, "map", nil, "Map a canonical field to source columns, e.g. venue=Venue_Name|Outlet (repeatable)")
	cmd.Flags().StringArrayVar(&rf.where, "where", nil, "Only keep records where field=value (repeatable, ANDed)")
}

// load reads, normalizes and filters the selected records.
func (rf *recordFlags) load(ctx context.Context, a *app) ([]record.Normalized, error) {
	if len(rf.files) == 0 && rf.table == "" {
		return nil, fmt.Errorf("--file or --table must be specified")
	}
	fm, err := parseFieldMap(rf.maps)
	if err != nil {
		return nil, err
	}
	where, err := parseWhere(rf.where)
	if err != nil {
		return nil, err
	}

	raws, err := rf.readRaw(ctx, a)
	if err != nil {
		return nil, err
	}

	records := make([]record.Normalized, 0, len(raws))
	for _, raw := range raws {
		n := record.NormalizeAll(raw)
		if len(fm) > 0 {
			for k, v := range record.Normalize(raw, fm) {
				n[k] = v
			}
		}
		if where == nil || where(n) {
			records = append(records, n)
		}
	}
	slog.Debug("loaded records", "read", len(raws), "kept", len(records))
	return records, nil
}

func (rf *recordFlags) readRaw(ctx context.Context, a *app) ([]record.Raw, error) {
	var raws []record.Raw
	var result *multierror.Error

	for _, path := range rf.files {
		t, err := source.Load(path, rf.sheet)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		slog.Debug("read file", "path", path, "sheet", t.Name, "rows", len(t.Rows))
		raws = append(raws, t.Rows...)
	}

	if rf.table != "" {
		rows, err := selectAll(ctx, a, rf.table)
		if err != nil {
			result = multierror.Append(result, err)
		}
		raws = append(raws, rows...)
	}

	return raws, result.ErrorOrNil()
}

func selectAll(ctx context.Context, a *app, table string) ([]record.Raw, error) {
	if a.cfg.Store.URL == "" {
		return nil, fmt.Errorf("--db-url (or TABRECON_DB_URL) must be specified with --table")
	}
	store, err := db.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close store: %v\n", err)
		}
	}()

	rs, err := store.Select(ctx, table, db.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	slog.Debug("read table", "table", table, "rows", len(rs.Rows))
	return rs.Rows, nil
}

// report loads records and hands them to fn with a formatter for the output.
func report(cmd *cobra.Command, a *app, rf *recordFlags, fn func([]record.Normalized, formatter.Formatter) error) error {
	records, err := rf.load(cmd.Context(), a)
	if err != nil {
		return err
	}
	f, closeFn, err := a.formatter(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(records, f)
}

func newCountCmd(a *app) *cobra.Command {
	rf := &recordFlags{}
	var keys string
	var match []string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count distinct keys and the share matching a condition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyFields := parseList(keys)
			if len(keyFields) == 0 {
				return fmt.Errorf("--key must be specified")
			}
			filter, err := parseWhere(match)
			if err != nil {
				return err
			}
			return report(cmd, a, rf, func(records []record.Normalized, f formatter.Formatter) error {
				label := strings.Join(keyFields, "+")
				if len(match) > 0 {
					label += " where " + strings.Join(match, " and ")
				}
				return f.FormatCount(label, aggregate.Aggregate(records, keyFields, filter))
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&keys, "key", "k", "", "Fields forming the distinct key (comma-separated)")
	cmd.Flags().StringArrayVar(&match, "match", nil, "Count keys with a record where field=value (repeatable, ANDed)")
	return cmd
}

func newUniqueCmd(a *app) *cobra.Command {
	rf := &recordFlags{}
	var field string

	cmd := &cobra.Command{
		Use:   "unique",
		Short: "List the distinct values of a field",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if field == "" {
				return fmt.Errorf("--field must be specified")
			}
			return report(cmd, a, rf, func(records []record.Normalized, f formatter.Formatter) error {
				values := aggregate.SortedValues(aggregate.UniqueValues(records, field))
				return f.FormatValues(field, values)
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&field, "field", "", "Field to list values of")
	return cmd
}

func newGroupCmd(a *app) *cobra.Command {
	rf := &recordFlags{}
	var by, keys string

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Count distinct keys per value of a dimension",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if by == "" {
				return fmt.Errorf("--by must be specified")
			}
			return report(cmd, a, rf, func(records []record.Normalized, f formatter.Formatter) error {
				return f.FormatGroups(by, aggregate.GroupBy(records, by, parseList(keys)).Groups())
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&by, "by", "", "Dimension to group by")
	cmd.Flags().StringVarP(&keys, "key", "k", "", "Fields forming the distinct key (comma-separated; default: every row counts)")
	return cmd
}

func newMissingCmd(a *app) *cobra.Command {
	rf := &recordFlags{}
	var require, id, by, xlsxPath string

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List entities whose records lack required location fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			required := reconcile.RequiredFields(parseList(require))
			if len(required) == 0 {
				return fmt.Errorf("--require must be specified")
			}
			if id == "" {
				return fmt.Errorf("--id must be specified")
			}
			return report(cmd, a, rf, func(records []record.Normalized, f formatter.Formatter) error {
				res := reconcile.FindMissingLocation(records, required, id)
				if err := f.FormatMissing(res); err != nil {
					return err
				}
				if xlsxPath == "" {
					return nil
				}
				return writeWorklist(xlsxPath, res, required, rollups(records, required, id, parseList(by)))
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&require, "require", "", "Required fields (comma-separated), e.g. city,region")
	cmd.Flags().StringVar(&id, "id", "", "Field identifying the entity, e.g. venue")
	cmd.Flags().StringVar(&by, "by", "", "Dimensions to roll flagged entities up by in the worklist (comma-separated)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write an XLSX worklist to this path")
	return cmd
}

// rollups groups the flagged entities by each dimension.
func rollups(records []record.Normalized, required []string, id string, dims []string) map[string][]aggregate.Group {
	if len(dims) == 0 {
		return nil
	}
	var blanks []aggregate.Predicate
	for _, field := range required {
		blanks = append(blanks, aggregate.FieldBlank(field))
	}
	flagged := aggregate.And(aggregate.Not(aggregate.FieldBlank(id)), aggregate.Or(blanks...))

	var subset []record.Normalized
	for _, r := range records {
		if flagged(r) {
			subset = append(subset, r)
		}
	}

	groups := make(map[string][]aggregate.Group, len(dims))
	for _, dim := range dims {
		groups[dim] = aggregate.GroupBy(subset, dim, []string{id}).Groups()
	}
	return groups
}

func writeWorklist(path string, res reconcile.Result, required []string, groups map[string][]aggregate.Group) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create worklist: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close worklist: %v\n", err)
		}
	}()
	if err := formatter.WriteWorklist(f, res, required, groups); err != nil {
		return fmt.Errorf("failed to write worklist: %w", err)
	}
	return nil
}
