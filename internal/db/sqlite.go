package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/tordrt/tabrecon/internal/schema"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classifySQLite(err))
	}

	return &SQLiteClient{db: db}, nil
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// Store returns a Store over this connection
func (c *SQLiteClient) Store() *SQLStore {
	return NewSQLStore(c.db, SQLiteDialect)
}

// SQLiteDialect quotes with double quotes and binds with "?".
var SQLiteDialect = Dialect{
	Name:        "sqlite",
	Quote:       quoteWith(`"`, `"`),
	Placeholder: questionMark,
	Classify:    classifySQLite,
}

func classifySQLite(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return &schema.Error{Kind: schema.KindTransport, Message: err.Error(), Err: err}
	}

	msg := se.Error()
	kind := schema.KindQuery
	switch {
	case strings.Contains(msg, "no such table"):
		kind = schema.KindNotFound
	case se.Code == sqlite3.ErrCantOpen, se.Code == sqlite3.ErrNotADB,
		se.Code == sqlite3.ErrAuth, se.Code == sqlite3.ErrPerm, se.Code == sqlite3.ErrBusy:
		kind = schema.KindTransport
	}

	return &schema.Error{
		Kind:    kind,
		Code:    se.Code.Error(),
		Message: msg,
		Err:     err,
	}
}
