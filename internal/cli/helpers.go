package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/issuefilter/internal/config"
	"github.com/runnerr0/issuefilter/internal/logging"
	"github.com/runnerr0/issuefilter/internal/query"
	"github.com/runnerr0/issuefilter/internal/storage"
)

// session bundles the resolved configuration and logger of one invocation.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
}

// newSession loads the config file named by --config, or the default one,
// writing the defaults when it is missing. It is used by the commands that
// keep state on disk.
func newSession(globals *GlobalFlags) (*session, error) {
	if globals.Config != "" {
		return startSession(globals, func() (*config.Config, error) { return config.LoadOrCreateAt(globals.Config) })
	}
	return startSession(globals, config.LoadOrCreate)
}

// newReadOnlySession is newSession for the codec commands: a missing config
// file means defaults and nothing is written.
func newReadOnlySession(globals *GlobalFlags) (*session, error) {
	if globals.Config != "" {
		return startSession(globals, func() (*config.Config, error) { return config.LoadIfExistsAt(globals.Config) })
	}
	return startSession(globals, config.LoadIfExists)
}

// startSession builds a stderr logger from the loaded config. --verbose
// forces debug level.
func startSession(globals *GlobalFlags, load func() (*config.Config, error)) (*session, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if globals.Verbose {
		level = slog.LevelDebug
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:   level,
		Format:  cfg.Logging.Format,
		NoColor: cfg.Logging.NoColor,
	})

	return &session{cfg: cfg, logger: logger}, nil
}

// resolveDBPath determines the SQLite database file path.
// Priority: --db-path flag > config file.
func (s *session) resolveDBPath(globals *GlobalFlags) (string, error) {
	if globals.DBPath != "" {
		return globals.DBPath, nil
	}
	return s.cfg.DBPath()
}

// openStore migrates db, or the configured database when db is nil, and
// returns a ready-to-use store. The returned func releases everything the
// call opened.
func (s *session) openStore(ctx context.Context, globals *GlobalFlags, db *sql.DB) (*storage.SQLiteStore, string, func(), error) {
	var dbPath string
	owned := false

	if db == nil {
		var err error
		dbPath, err = s.resolveDBPath(globals)
		if err != nil {
			return nil, "", nil, err
		}

		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, "", nil, fmt.Errorf("create database directory: %w", err)
		}

		s.logger.Debug("opening store", "path", dbPath)
		db, err = sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
		if err != nil {
			return nil, "", nil, fmt.Errorf("open database: %w", err)
		}
		owned = true
	}

	runner := storage.NewMigrationRunner(db).WithJournalMode(s.cfg.Storage.SQLiteJournalMode)
	if err := runner.Run(ctx); err != nil {
		if owned {
			db.Close()
		}
		return nil, "", nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		if owned {
			db.Close()
		}
		return nil, "", nil, fmt.Errorf("init store: %w", err)
	}

	cleanup := func() {
		store.Close()
		if owned {
			db.Close()
		}
	}
	return store, dbPath, cleanup, nil
}

// decodeQuery decodes a command-line query argument. An empty argument is
// the empty query.
func decodeQuery(arg string) (query.RawQuery, error) {
	raw, err := query.Decode(arg)
	if err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return raw, nil
}

// logDiscarded reports, at debug level, what parsing raw silently throws away.
func logDiscarded(logger *slog.Logger, raw query.RawQuery) {
	if unknown := query.UnknownKeys(raw); len(unknown) > 0 {
		logger.Debug("ignoring unrecognized keys", "keys", unknown)
	}

	q := query.Parse(raw)
	dates := []struct {
		key    string
		parsed bool
	}{
		{query.KeyCreatedAfter, q.CreatedAfter != nil},
		{query.KeyCreatedBefore, q.CreatedBefore != nil},
	}
	for _, d := range dates {
		if v := raw[d.key]; v != "" && !d.parsed {
			logger.Debug("date degraded to unset", "key", d.key, "value", v)
		}
	}

	if s, ok := raw[query.KeySort]; ok && s != "" && q.Sort == "" {
		logger.Debug("sort degraded to unset", "value", s)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
