package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/tordrt/tabrecon/internal/schema"
)

// MSSQLClient manages the connection to SQL Server
type MSSQLClient struct {
	db *sql.DB
}

// NewMSSQLClient creates a new SQL Server client
func NewMSSQLClient(ctx context.Context, connString string) (*MSSQLClient, error) {
	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classifyMSSQL(err))
	}

	return &MSSQLClient{db: db}, nil
}

// Store returns a Store over this connection
func (c *MSSQLClient) Store() *SQLStore {
	return NewSQLStore(c.db, SQLServerDialect)
}

// SQLServerDialect quotes with brackets, binds with @pN, and caps with TOP.
var SQLServerDialect = Dialect{
	Name:        "sqlserver",
	Quote:       quoteWith("[", "]"),
	Placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
	Classify:    classifyMSSQL,
	top:         true,
}

func classifyMSSQL(err error) error {
	var me mssql.Error
	if !errors.As(err, &me) {
		var mp *mssql.Error
		if !errors.As(err, &mp) {
			return &schema.Error{Kind: schema.KindTransport, Message: err.Error(), Err: err}
		}
		me = *mp
	}

	kind := schema.KindQuery
	switch me.Number {
	case 208:
		// Invalid object name
		kind = schema.KindNotFound
	case 18456, 4060:
		// login failed, cannot open database
		kind = schema.KindTransport
	}

	return &schema.Error{
		Kind:    kind,
		Code:    strconv.Itoa(int(me.Number)),
		Message: me.Message,
		Err:     err,
	}
}
