// Package db implements the remote query interface the engine probes and
// reads through: filtered selects and single-row inserts against a named
// table, with every backend failure classified into a schema.Kind.
package db

import (
	"context"
	"sort"
	"strings"

	"github.com/tordrt/tabrecon/internal/record"
)

// Store is the only surface the engine needs from a datastore. It assumes no
// metadata or introspection endpoint.
type Store interface {
	// Select reads rows from table. Failures are *schema.Error values.
	Select(ctx context.Context, table string, q Query) (*ResultSet, error)
	// Insert writes one row into table. Failures are *schema.Error values.
	Insert(ctx context.Context, table string, rec record.Raw) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Query describes a select.
type Query struct {
	// Columns to return; empty selects all.
	Columns []string
	// Filters are ANDed equality conditions.
	Filters []Filter
	// MaxRows caps the returned rows; 0 means unbounded.
	MaxRows int
	// ExactCount asks the store for the exact number of matching rows.
	ExactCount bool
}

// Filter is an equality condition on one column.
type Filter struct {
	Column string
	Value  string
}

// ResultSet holds the rows of a select.
type ResultSet struct {
	// Columns lists the field names of Rows in source order. It is empty
	// when Rows is empty: column names are only ever read from data.
	Columns []string
	Rows    []record.Raw
	// Count is set when the query asked for an exact count.
	Count *int
}

// rowColumns returns the field names of row sorted, for backends that cannot
// report source order.
func rowColumns(row record.Raw) []string {
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// splitQualified splits "schema.table" into its parts.
func splitQualified(table string) []string {
	parts := strings.Split(table, ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
