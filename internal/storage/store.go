package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/issuefilter/internal/query"
)

// ErrNotFound is returned when a saved filter does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations behind the CLI.
type Store interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
	SaveFilter(ctx context.Context, name string, raw query.RawQuery) (*SavedFilter, error)
	GetFilter(ctx context.Context, name string) (*SavedFilter, error)
	ListFilters(ctx context.Context) ([]SavedFilter, error)
	DeleteFilter(ctx context.Context, name string) error
	FindEquivalent(ctx context.Context, raw query.RawQuery) ([]SavedFilter, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	getPreference *sql.Stmt
	setPreference *sql.Stmt
	upsertFilter  *sql.Stmt
	getFilter     *sql.Stmt
	deleteFilter  *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getPreference, err = s.db.Prepare(`SELECT value FROM preferences WHERE key = ?`)
	if err != nil {
		return err
	}

	s.setPreference, err = s.db.Prepare(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.upsertFilter, err = s.db.Prepare(`
		INSERT INTO saved_filters (name, query, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET query = excluded.query, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.getFilter, err = s.db.Prepare(`
		SELECT name, query, created_at, updated_at FROM saved_filters WHERE name = ?
	`)
	if err != nil {
		return err
	}

	s.deleteFilter, err = s.db.Prepare(`DELETE FROM saved_filters WHERE name = ?`)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// GetPreference returns the stored value for key. found is false when the
// key has never been written.
func (s *SQLiteStore) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.getPreference.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference writes value under key, replacing any previous value.
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	if _, err := s.setPreference.ExecContext(ctx, key, value, formatTimestamp(time.Now())); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// SaveFilter stores raw under name in canonical form, keeping the open issue
// and the "my issues" toggle. Other keys the codec does not own are dropped.
// Saving an existing name replaces its query.
func (s *SQLiteStore) SaveFilter(ctx context.Context, name string, raw query.RawQuery) (*SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("save filter: name is required")
	}

	encoded := query.WithPassthrough(query.Canonical(raw), raw).Encode()
	now := formatTimestamp(time.Now())
	if _, err := s.upsertFilter.ExecContext(ctx, name, encoded, now, now); err != nil {
		return nil, fmt.Errorf("save filter %s: %w", name, err)
	}

	return s.GetFilter(ctx, name)
}

// GetFilter retrieves a saved filter by name.
func (s *SQLiteStore) GetFilter(ctx context.Context, name string) (*SavedFilter, error) {
	f, err := scanFilter(s.getFilter.QueryRowContext(ctx, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("filter %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get filter %s: %w", name, err)
	}
	return f, nil
}

// ListFilters returns all saved filters ordered by name.
func (s *SQLiteStore) ListFilters(ctx context.Context) ([]SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, query, created_at, updated_at FROM saved_filters ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	filters := []SavedFilter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		filters = append(filters, *f)
	}

	return filters, rows.Err()
}

// DeleteFilter removes a saved filter by name.
func (s *SQLiteStore) DeleteFilter(ctx context.Context, name string) error {
	res, err := s.deleteFilter.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("delete filter %s: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("filter %s: %w", name, ErrNotFound)
	}

	return nil
}

// FindEquivalent returns the saved filters that denote the same issue
// filter as raw, whatever their spelling on the wire.
func (s *SQLiteStore) FindEquivalent(ctx context.Context, raw query.RawQuery) ([]SavedFilter, error) {
	all, err := s.ListFilters(ctx)
	if err != nil {
		return nil, err
	}

	matches := []SavedFilter{}
	for _, f := range all {
		if query.AreEqual(f.Query, raw) {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

// GetStats returns aggregate counts about the store.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_filters").Scan(&stats.SavedFilters); err != nil {
		return nil, fmt.Errorf("count filters: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM preferences").Scan(&stats.Preferences); err != nil {
		return nil, fmt.Errorf("count preferences: %w", err)
	}

	if stats.SavedFilters > 0 {
		var last string
		if err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM saved_filters").Scan(&last); err != nil {
			return nil, fmt.Errorf("last update: %w", err)
		}
		stats.LastUpdated, _ = parseTimestamp(last)
	}

	version, err := NewMigrationRunner(s.db).Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema version: %w", err)
	}
	stats.SchemaVersion = version

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats.DatabaseSizeBytes = pageCount * pageSize
		}
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.getPreference, s.setPreference, s.upsertFilter,
		s.getFilter, s.deleteFilter,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilter(row rowScanner) (*SavedFilter, error) {
	var f SavedFilter
	var encoded, createdAt, updatedAt string
	if err := row.Scan(&f.Name, &encoded, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	raw, err := query.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode stored query for %s: %w", f.Name, err)
	}
	f.Query = raw
	f.CreatedAt, _ = parseTimestamp(createdAt)
	f.UpdatedAt, _ = parseTimestamp(updatedAt)

	return &f, nil
}
