package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/retry"
)

// Client wraps a database/sql pool for the configured storage engine:
// pure-Go SQLite by default, PostgreSQL when DATABASE_ENGINE=postgres.
type Client struct {
	db      *sql.DB
	dialect string
}

// NewClient opens the configured engine and verifies the connection with
// exponential backoff retry.
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Engine == "postgres" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// Single-file SQLite: WAL allows concurrent readers alongside one
		// writer; busy_timeout covers the writer handoff.
		db.SetMaxOpenConns(10)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	// Test the connection with retry
	retryConfig := retry.DefaultConfig()
	err = retry.DoWithLog(
		context.Background(),
		retryConfig,
		cfg.Engine,
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Database connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s after retries: %w", cfg.Engine, err)
	}

	log.Printf("Successfully connected to %s database", cfg.Engine)
	return &Client{db: db, dialect: cfg.Dialect()}, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the goqu dialect name for the active engine
func (c *Client) Dialect() string {
	return c.dialect
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// BeginTx starts a new transaction
func (c *Client) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
