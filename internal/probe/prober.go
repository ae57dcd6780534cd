// Package probe discovers whether a table exists and what columns it has
// using nothing but ordinary selects and inserts. A sampled row gives the
// column names directly; an empty table is made to name its columns by
// rejecting a write to a column that cannot exist.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/tabrecon/internal/config"
	"github.com/tordrt/tabrecon/internal/db"
	"github.com/tordrt/tabrecon/internal/record"
	"github.com/tordrt/tabrecon/internal/schema"
)

// DefaultConcurrency bounds ProbeAll when no option overrides it.
const DefaultConcurrency = 4

// probeValue is written to the probe column of an empty table.
const probeValue = "probe"

// Prober probes tables through a db.Store.
type Prober struct {
	store       db.Store
	extractor   ColumnExtractor
	logger      *slog.Logger
	probeColumn string
	concurrency int
}

// Option configures a Prober.
type Option func(*Prober)

// WithExtractor replaces the default PatternExtractor.
func WithExtractor(e ColumnExtractor) Option {
	return func(p *Prober) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithLogger sets the logger used for probe steps.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProbeColumn sets the deliberately invalid column name written to empty
// tables. It must not collide with a real column.
func WithProbeColumn(name string) Option {
	return func(p *Prober) {
		if name != "" {
			p.probeColumn = name
		}
	}
}

// WithConcurrency bounds the number of tables ProbeAll probes at once.
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a Prober over store.
func New(store db.Store, opts ...Option) *Prober {
	p := &Prober{
		store:       store,
		extractor:   NewPatternExtractor(),
		logger:      slog.Default(),
		probeColumn: config.DefaultProbeColumn,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Outcome is the result of probing one table in a batch.
type Outcome struct {
	Table  string
	Result schema.ProbeResult
	Err    error
}

// Probe reports whether table exists and which columns it has.
//
// A NotFound error comes back with Exists=false. Transport and other store
// failures are returned as they are and say nothing about existence. When the
// table exists but its columns cannot be discovered, the result has
// Exists=true, no columns, and a KindAmbiguous error.
func (p *Prober) Probe(ctx context.Context, table string) (schema.ProbeResult, error) {
	res := schema.ProbeResult{Table: table, Columns: []string{}, Source: schema.SourceNone}
	log := p.logger.With("table", table)

	log.Debug("sampling table")
	rs, err := p.store.Select(ctx, table, db.Query{MaxRows: 1, ExactCount: true})
	if err != nil {
		if schema.IsNotFound(err) {
			log.Debug("table does not exist")
		}
		return res, fmt.Errorf("failed to probe table %s: %w", table, err)
	}

	res.Exists = true
	res.RowCount = rs.Count

	if len(rs.Rows) > 0 {
		row := rs.Rows[0]
		res.Columns = rs.Columns
		if len(res.Columns) == 0 {
			res.Columns = fieldNames(row)
		}
		res.Sample = record.NormalizeAll(row)
		res.Source = schema.SourceSample
		log.Debug("columns read from sample row", "columns", len(res.Columns))
		return res, nil
	}

	log.Debug("table is empty, probing with rejected insert", "probe_column", p.probeColumn)
	err = p.store.Insert(ctx, table, record.Raw{p.probeColumn: probeValue})
	if err == nil {
		log.Warn("probe insert was accepted, columns unknown", "probe_column", p.probeColumn)
		return res, &schema.Error{
			Kind:    schema.KindAmbiguous,
			Message: fmt.Sprintf("table %s accepted a write to probe column %q", table, p.probeColumn),
		}
	}

	switch schema.KindOf(err) {
	case schema.KindTransport, schema.KindNotFound:
		return res, fmt.Errorf("failed to probe table %s: %w", table, err)
	}

	cols := p.extractor.Extract(rejectionText(err))
	if len(cols) == 0 {
		log.Warn("could not discover columns from rejection", "error", err)
		return res, &schema.Error{
			Kind:    schema.KindAmbiguous,
			Message: fmt.Sprintf("could not discover columns of table %s", table),
			Err:     err,
		}
	}

	res.Columns = cols
	res.Source = schema.SourceRejection
	log.Debug("columns read from rejection", "columns", len(cols))
	return res, nil
}

// ProbeAll probes tables concurrently and returns one Outcome per table in
// the order given. A failure on one table never stops the others.
func (p *Prober) ProbeAll(ctx context.Context, tables []string) []Outcome {
	out := make([]Outcome, len(tables))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, table := range tables {
		g.Go(func() error {
			res, err := p.Probe(ctx, table)
			out[i] = Outcome{Table: table, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// rejectionText gathers every diagnostic field of a rejection.
func rejectionText(err error) string {
	if e, ok := schema.AsError(err); ok && e.Text() != "" {
		return e.Text()
	}
	return err.Error()
}

func fieldNames(row record.Raw) []string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
