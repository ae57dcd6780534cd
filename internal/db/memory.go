package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tordrt/tabrecon/internal/record"
	"github.com/tordrt/tabrecon/internal/schema"
)

// MemoryStore is an in-memory Store. It backs tests and lets spreadsheet or
// CSV exports be probed and queried like remote tables.
//
// Rejections mimic a hosted table API that lists valid columns in the hint of
// an unknown-column error.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

type memTable struct {
	columns []string
	rows    []record.Raw
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memTable)}
}

// CreateTable registers table with an ordered column list, replacing any
// existing table of the same name.
func (s *MemoryStore) CreateTable(table string, columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = &memTable{columns: append([]string(nil), columns...)}
}

// Load registers table with columns and rows in one step.
func (s *MemoryStore) Load(table string, columns []string, rows []record.Raw) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &memTable{columns: append([]string(nil), columns...)}
	for _, r := range rows {
		t.rows = append(t.rows, copyRow(r))
	}
	s.tables[table] = t
}

// Tables returns the registered table names.
func (s *MemoryStore) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for n := range s.tables {
		names = append(names, n)
	}
	return names
}

// Select implements Store.
func (s *MemoryStore) Select(_ context.Context, table string, q Query) (*ResultSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, notFoundError(table)
	}

	cols := q.Columns
	if len(cols) == 0 {
		cols = t.columns
	}
	for _, c := range cols {
		if !t.has(c) {
			return nil, t.unknownColumn(table, c)
		}
	}
	for _, f := range q.Filters {
		if !t.has(f.Column) {
			return nil, t.unknownColumn(table, f.Column)
		}
	}

	rs := &ResultSet{}
	matched := 0
	for _, row := range t.rows {
		if !matches(row, q.Filters) {
			continue
		}
		matched++
		if q.MaxRows > 0 && len(rs.Rows) >= q.MaxRows {
			continue
		}
		out := make(record.Raw, len(cols))
		for _, c := range cols {
			out[c] = row[c]
		}
		rs.Rows = append(rs.Rows, out)
	}
	if len(rs.Rows) > 0 {
		rs.Columns = append([]string(nil), cols...)
	}
	if q.ExactCount {
		rs.Count = &matched
	}
	return rs, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, table string, rec record.Raw) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[table]
	if !ok {
		return notFoundError(table)
	}
	for _, k := range rowColumns(rec) {
		if !t.has(k) {
			return t.unknownColumn(table, k)
		}
	}
	t.rows = append(t.rows, copyRow(rec))
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func (t *memTable) has(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

func (t *memTable) unknownColumn(table, column string) error {
	return &schema.Error{
		Kind:    schema.KindQuery,
		Code:    "42703",
		Message: fmt.Sprintf("column %q of relation %q does not exist", column, table),
		Hint:    "valid columns are: " + strings.Join(quoteAll(t.columns), ", "),
	}
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strconv.Quote(n)
	}
	return out
}

func notFoundError(table string) error {
	return &schema.Error{
		Kind:    schema.KindNotFound,
		Code:    "42P01",
		Message: fmt.Sprintf("relation %q does not exist", table),
	}
}

func matches(row record.Raw, filters []Filter) bool {
	for _, f := range filters {
		if record.Value(row[f.Column]) != record.Value(f.Value) {
			return false
		}
	}
	return true
}

func copyRow(r record.Raw) record.Raw {
	out := make(record.Raw, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
