package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/tabrecon/internal/record"
)

// Dialect captures the SQL differences between database/sql backends.
type Dialect struct {
	Name string
	// Quote quotes a single identifier.
	Quote func(string) string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder func(n int) string
	// Classify maps a driver error onto a *schema.Error.
	Classify func(error) error
	// top, when set, caps rows with "SELECT TOP (n)" instead of LIMIT.
	top bool
}

// SQLStore implements Store over database/sql
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a Store over an open database handle
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// Select implements Store
func (s *SQLStore) Select(ctx context.Context, table string, q Query) (*ResultSet, error) {
	from := s.ident(table)
	where, args := s.where(q.Filters)

	cols := "*"
	if len(q.Columns) > 0 {
		quoted := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			quoted[i] = s.dialect.Quote(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var query string
	switch {
	case q.MaxRows > 0 && s.dialect.top:
		query = fmt.Sprintf("SELECT TOP (%d) %s FROM %s%s", q.MaxRows, cols, from, where)
	case q.MaxRows > 0:
		query = fmt.Sprintf("SELECT %s FROM %s%s LIMIT %d", cols, from, where, q.MaxRows)
	default:
		query = fmt.Sprintf("SELECT %s FROM %s%s", cols, from, where)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.dialect.Classify(err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, s.dialect.Classify(err)
	}

	rs := &ResultSet{}
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.dialect.Classify(err)
		}
		row := make(record.Raw, len(names))
		for i, n := range names {
			row[n] = vals[i]
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.dialect.Classify(err)
	}

	if len(rs.Rows) > 0 {
		rs.Columns = names
	}

	if q.ExactCount {
		var n int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, where)
		if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&n); err != nil {
			return nil, s.dialect.Classify(err)
		}
		count := int(n)
		rs.Count = &count
	}

	return rs, nil
}

// Insert implements Store
func (s *SQLStore) Insert(ctx context.Context, table string, rec record.Raw) error {
	cols := rowColumns(rec)
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = s.dialect.Quote(c)
		placeholders[i] = s.dialect.Placeholder(i + 1)
		args[i] = rec[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.ident(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return s.dialect.Classify(err)
	}
	return nil
}

// Close implements Store
func (s *SQLStore) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *SQLStore) ident(table string) string {
	parts := splitQualified(table)
	for i, p := range parts {
		parts[i] = s.dialect.Quote(p)
	}
	return strings.Join(parts, ".")
}

func (s *SQLStore) where(filters []Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		conds[i] = fmt.Sprintf("%s = %s", s.dialect.Quote(f.Column), s.dialect.Placeholder(i+1))
		args[i] = f.Value
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func questionMark(int) string { return "?" }

func quoteWith(left, right string) func(string) string {
	return func(s string) string {
		return left + strings.ReplaceAll(s, right, right+right) + right
	}
}
