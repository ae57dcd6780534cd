package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/tabrecon/internal/config"
)

// Backend names returned by ParseURL.
const (
	BackendPostgres  = "postgres"
	BackendMySQL     = "mysql"
	BackendSQLite    = "sqlite"
	BackendSQLServer = "sqlserver"
	BackendREST      = "rest"
)

// ParseURL detects the backend and returns the driver connection string
func ParseURL(raw string) (backend, connectionStr string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return BackendPostgres, raw, nil
	case strings.HasPrefix(raw, "mysql://"):
		// Strip mysql:// prefix for the Go MySQL driver
		return BackendMySQL, strings.TrimPrefix(raw, "mysql://"), nil
	case strings.HasPrefix(raw, "sqlite://"):
		// Strip sqlite:// prefix to get file path
		return BackendSQLite, strings.TrimPrefix(raw, "sqlite://"), nil
	case strings.HasPrefix(raw, "sqlserver://"):
		return BackendSQLServer, raw, nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return BackendREST, raw, nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, sqlite://, sqlserver://, or https://)")
}

// Open connects to the store described by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	backend, conn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendPostgres:
		client, err := NewPostgresClient(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return NewPostgresStore(client), nil

	case BackendMySQL:
		if _, err := ParseDatabaseName(conn); err != nil {
			return nil, fmt.Errorf("failed to determine database name: %w", err)
		}
		client, err := NewMySQLClient(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return client.Store(), nil

	case BackendSQLite:
		client, err := NewSQLiteClient(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return client.Store(), nil

	case BackendSQLServer:
		client, err := NewMSSQLClient(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQL Server: %w", err)
		}
		return client.Store(), nil

	default:
		return NewRESTStore(cfg)
	}
}
