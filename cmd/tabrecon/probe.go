package main

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/tordrt/tabrecon"
	"github.com/tordrt/tabrecon/internal/db"
	"github.com/tordrt/tabrecon/internal/probe"
	"github.com/tordrt/tabrecon/internal/schema"
	"github.com/tordrt/tabrecon/internal/source"
)

type probeFlags struct {
	tables    string
	exclude   string
	files     []string
	resolve   []string
	outputDir string
}

func newProbeCmd(a *app) *cobra.Command {
	pf := &probeFlags{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report whether tables exist and which columns they have",
		Long: `Probe samples one row from each table. Empty tables are sent an insert into a column that
cannot exist and their columns are read from the rejection. No metadata endpoint is used.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd, a, pf)
		},
	}

	cmd.Flags().StringVarP(&pf.tables, "tables", "t", "", "Tables to probe (comma-separated; required unless --file is set)")
	cmd.Flags().StringVar(&pf.exclude, "exclude", "", "Tables to skip (comma-separated)")
	cmd.Flags().StringSliceVar(&pf.files, "file", nil, "Probe the sheets of CSV/XLSX exports instead of a store (repeatable)")
	cmd.Flags().StringArrayVar(&pf.resolve, "resolve", nil, "Resolve a field to a column by substrings, e.g. venue=venue+name (repeatable)")
	cmd.Flags().StringVarP(&pf.outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	cmd.Flags().StringVar(&a.probeColumn, "probe-column", "", "Column name used to provoke a rejection on empty tables (env TABRECON_PROBE_COLUMN)")
	cmd.Flags().IntVar(&a.concurrency, "concurrency", 0, "Tables probed at once (env TABRECON_PROBE_CONCURRENCY)")
	return cmd
}

func runProbe(cmd *cobra.Command, a *app, pf *probeFlags) error {
	ctx := cmd.Context()

	if pf.outputDir != "" && a.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	resolutions, err := parseResolve(pf.resolve)
	if err != nil {
		return err
	}

	opts := &tabrecon.Options{
		Tables:        parseList(pf.tables),
		ExcludeTables: parseList(pf.exclude),
		APIKey:        a.cfg.Store.APIKey,
		RESTSchema:    a.cfg.Store.RESTSchema,
		HTTPTimeout:   a.cfg.Store.HTTPTimeout,
		ProbeColumn:   a.cfg.Probe.Column,
		Concurrency:   a.cfg.Probe.Concurrency,
		Logger:        slog.Default(),
	}

	var s *schema.Schema
	if len(pf.files) > 0 {
		store, names, err := loadFileStore(pf.files)
		if err != nil {
			return err
		}
		tables := opts.Tables
		if len(tables) == 0 {
			tables = names
		}
		s = tabrecon.ProbeStore(ctx, store, tables, opts)
	} else {
		if a.cfg.Store.URL == "" {
			return fmt.Errorf("--db-url (or TABRECON_DB_URL) or --file must be specified")
		}
		s, err = tabrecon.ProbeTables(ctx, a.cfg.Store.URL, opts)
		if err != nil {
			return err
		}
	}

	if pf.outputDir != "" {
		if err := tabrecon.FormatSchema(s, &tabrecon.OutputOptions{OutputDir: pf.outputDir, Format: a.format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	} else {
		w, closeFn, err := a.output(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := tabrecon.FormatSchema(s, &tabrecon.OutputOptions{Writer: w, Format: a.format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	}

	for _, r := range resolutions {
		reportResolution(cmd, s, r)
	}

	return probeFailures(s)
}

// probeFailures collects the probes that could not answer. A missing table or
// a table whose columns stayed unknown is an answer, not a failure.
func probeFailures(s *schema.Schema) error {
	var result *multierror.Error
	for _, t := range s.Tables {
		if t.Error == "" {
			continue
		}
		switch t.Failure {
		case schema.KindNotFound, schema.KindAmbiguous:
			continue
		}
		result = multierror.Append(result, fmt.Errorf("%s: %s", t.Table, t.Error))
	}
	return result.ErrorOrNil()
}

func reportResolution(cmd *cobra.Command, s *schema.Schema, r resolveRequest) {
	for _, t := range s.Tables {
		if col, ok := probe.ResolveColumn(t.Columns, r.substrings...); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "resolved %s -> %s.%s\n", r.field, t.Table, col)
			return
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "unresolved %s\n", r.field)
}

// loadFileStore loads every sheet of every file into one in-memory store.
func loadFileStore(paths []string) (*db.MemoryStore, []string, error) {
	store := db.NewMemoryStore()
	var names []string
	var result *multierror.Error
	for _, p := range paths {
		tables, err := source.LoadAll(p)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		for _, t := range tables {
			store.Load(t.Name, t.Columns, t.Rows)
			names = append(names, t.Name)
		}
	}
	return store, names, result.ErrorOrNil()
}
