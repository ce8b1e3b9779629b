package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"pc-control-dashboard/internal/config"
)

// InitDB initializes the database connection with proper configuration
func InitDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool settings
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates the two tables if they do not exist. The UNIQUE constraint
// on pc_id enforces the one-schedule-per-PC invariant; ON DELETE CASCADE
// makes the cascade policy a store-layer guarantee.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pcs (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		port INTEGER NOT NULL DEFAULT 8080,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pc_schedules (
		id UUID PRIMARY KEY,
		pc_id UUID NOT NULL UNIQUE REFERENCES pcs(id) ON DELETE CASCADE,
		enabled BOOLEAN NOT NULL DEFAULT FALSE,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		sync_pending BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pcs_name ON pcs(name);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
