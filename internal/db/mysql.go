package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/tabrecon/internal/schema"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classifyMySQL(err))
	}

	return &MySQLClient{db: db}, nil
}

// Store returns a Store over this connection
func (c *MySQLClient) Store() *SQLStore {
	return NewSQLStore(c.db, MySQLDialect)
}

// MySQLDialect quotes with backticks and binds with "?".
var MySQLDialect = Dialect{
	Name:        "mysql",
	Quote:       quoteWith("`", "`"),
	Placeholder: questionMark,
	Classify:    classifyMySQL,
}

func classifyMySQL(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return &schema.Error{Kind: schema.KindTransport, Message: err.Error(), Err: err}
	}

	kind := schema.KindQuery
	switch me.Number {
	case 1146, 1049:
		// ER_NO_SUCH_TABLE, ER_BAD_DB_ERROR
		kind = schema.KindNotFound
	case 1044, 1045, 1040, 1129:
		// access denied (db, user), too many connections, host blocked
		kind = schema.KindTransport
	}

	return &schema.Error{
		Kind:    kind,
		Code:    strconv.Itoa(int(me.Number)),
		Message: me.Message,
		Err:     err,
	}
}

// ParseDatabaseName extracts the database name from a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("no database name in connection string")
	}
	return cfg.DBName, nil
}
