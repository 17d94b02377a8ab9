// Package postgresql provides PostgreSQL persistence implementation for application settings.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/textflow/pkg/persistence"
	"github.com/dukex/textflow/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence implements persistence.SettingsStore on a PostgreSQL table.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects to databaseURL, runs migrations and returns the store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:     database,
		logger: logger.With("module", "postgres_settings"),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Get returns the value stored under key.
func (p *Persistence) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := p.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("Get", key, persistence.ErrKeyNotFound)
		}

		return nil, persistence.NewStoreError("Get", key, err)
	}

	return value, nil
}

// Set upserts the value stored under key.
func (p *Persistence) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return persistence.NewStoreError("Set", key, persistence.ErrInvalidKey)
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return persistence.NewStoreError("Set", key, err)
	}

	p.logger.DebugContext(ctx, "Setting saved", "key", key, "bytes", len(value))

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (p *Persistence) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM settings WHERE key = $1", key)
	if err != nil {
		return persistence.NewStoreError("Delete", key, err)
	}

	return nil
}
