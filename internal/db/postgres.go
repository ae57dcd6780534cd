package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClient manages the connection pool to PostgreSQL
type PostgresClient struct {
	pool *pgxpool.Pool
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", classifyPostgres(err))
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classifyPostgres(err))
	}

	return &PostgresClient{pool: pool}, nil
}

// Close closes the connection pool
func (c *PostgresClient) Close(_ context.Context) error {
	c.pool.Close()
	return nil
}

// GetPool returns the underlying pool
func (c *PostgresClient) GetPool() *pgxpool.Pool {
	return c.pool
}
