package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tordrt/tabrecon/internal/record"
	"github.com/tordrt/tabrecon/internal/schema"
)

// PostgresStore implements Store over a pgx pool
type PostgresStore struct {
	client *PostgresClient
}

// NewPostgresStore creates a Store backed by client
func NewPostgresStore(client *PostgresClient) *PostgresStore {
	return &PostgresStore{client: client}
}

// Select implements Store
func (s *PostgresStore) Select(ctx context.Context, table string, q Query) (*ResultSet, error) {
	from := pgIdent(table)
	where, args := pgWhere(q.Filters)

	cols := "*"
	if len(q.Columns) > 0 {
		quoted := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			quoted[i] = pgx.Identifier{c}.Sanitize()
		}
		cols = strings.Join(quoted, ", ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s", cols, from, where)
	if q.MaxRows > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.MaxRows)
	}

	rows, err := s.client.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, classifyPostgres(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	rs := &ResultSet{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, classifyPostgres(err)
		}
		row := make(record.Raw, len(fields))
		for i, fd := range fields {
			row[fd.Name] = pgValue(vals[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPostgres(err)
	}

	if len(rs.Rows) > 0 {
		rs.Columns = make([]string, len(fields))
		for i, fd := range fields {
			rs.Columns[i] = fd.Name
		}
	}

	if q.ExactCount {
		var n int64
		countQuery := fmt.Sprintf("SELECT count(*) FROM %s%s", from, where)
		if err := s.client.GetPool().QueryRow(ctx, countQuery, args...).Scan(&n); err != nil {
			return nil, classifyPostgres(err)
		}
		count := int(n)
		rs.Count = &count
	}

	return rs, nil
}

// Insert implements Store
func (s *PostgresStore) Insert(ctx context.Context, table string, rec record.Raw) error {
	cols := rowColumns(rec)
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	if _, err := s.client.GetPool().Exec(ctx, query, args...); err != nil {
		return classifyPostgres(err)
	}
	return nil
}

// Close implements Store
func (s *PostgresStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func pgIdent(table string) string {
	return pgx.Identifier(splitQualified(table)).Sanitize()
}

func pgWhere(filters []Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		conds[i] = fmt.Sprintf("%s::text = $%d", pgx.Identifier{f.Column}.Sanitize(), i+1)
		args[i] = f.Value
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pgValue turns pgx-decoded values that print poorly into plain ones.
func pgValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", t[0:4], t[4:6], t[6:8], t[8:10], t[10:16])
	case driver.Valuer:
		if dv, err := t.Value(); err == nil {
			return dv
		}
	}
	return v
}

// classifyPostgres maps pgx failures onto schema kinds. Server-side errors
// carry a SQLSTATE; anything without one never reached the server.
func classifyPostgres(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &schema.Error{Kind: schema.KindTransport, Message: err.Error(), Err: err}
	}

	kind := schema.KindQuery
	switch {
	case pgErr.Code == "42P01", pgErr.Code == "3F000":
		// undefined_table, invalid_schema_name
		kind = schema.KindNotFound
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "28"):
		// connection_exception, invalid_authorization_specification
		kind = schema.KindTransport
	}

	return &schema.Error{
		Kind:    kind,
		Code:    pgErr.Code,
		Message: pgErr.Message,
		Hint:    pgErr.Hint,
		Details: pgErr.Detail,
		Err:     err,
	}
}
