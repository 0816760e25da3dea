package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migration is one schema step, applied inside its own transaction.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner brings a SQLite database up to the current schema.
type MigrationRunner struct {
	db          *sql.DB
	journalMode string
	migrations  []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered
// migrations and WAL journaling.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:          db,
		journalMode: "wal",
		migrations: []migration{
			{Version: 1, Name: "preferences_and_saved_filters", Apply: migrateV001},
		},
	}
}

// WithJournalMode overrides the SQLite journal mode (wal, delete, truncate,
// memory...). An empty mode keeps the current one.
func (r *MigrationRunner) WithJournalMode(mode string) *MigrationRunner {
	r.journalMode = strings.ToLower(strings.TrimSpace(mode))
	return r
}

// Run applies every migration that has not been recorded yet, in version
// order. Running it again on an up-to-date database is a no-op.
func (r *MigrationRunner) Run(ctx context.Context) error {
	if r.journalMode != "" {
		if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = "+r.journalMode); err != nil {
			return fmt.Errorf("set journal mode %s: %w", r.journalMode, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := r.Version(ctx)
	if err != nil {
		return err
	}

	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// Version returns the highest applied migration version, or 0 for a fresh
// database.
func (r *MigrationRunner) Version(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}
