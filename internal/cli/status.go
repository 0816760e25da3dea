package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/issuefilter/internal/preference"
	"github.com/runnerr0/issuefilter/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	SchemaVersion     int    `json:"schema_version"`
	SavedFilters      int64  `json:"saved_filters"`
	Preferences       int64  `json:"preferences"`
	LastUpdated       string `json:"last_updated,omitempty"`
	IssuesDefault     string `json:"issues_default"`
	FacetLocale       string `json:"facet_locale"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, dbPath, cleanup, err := sess.openStore(ctx, c.globals, c.db)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	my, err := preference.IsMySet(ctx, store)
	if err != nil {
		return err
	}
	mode := preference.ModeAll
	if my {
		mode = preference.ModeMy
	}

	if dbPath == "" {
		dbPath = ":memory:"
	}
	size := databaseSize(stats, dbPath)

	if c.globals.JSON {
		out := statusJSON{
			Version:           c.version,
			DatabasePath:      dbPath,
			DatabaseSizeBytes: size,
			SchemaVersion:     stats.SchemaVersion,
			SavedFilters:      stats.SavedFilters,
			Preferences:       stats.Preferences,
			IssuesDefault:     mode,
			FacetLocale:       sess.cfg.Facets.Locale,
		}
		if !stats.LastUpdated.IsZero() {
			out.LastUpdated = stats.LastUpdated.UTC().Format(time.RFC3339)
		}
		return printJSON(out)
	}

	fmt.Println("issuefilter status")
	fmt.Println("==================")
	fmt.Printf("Version:        %s\n", c.version)
	fmt.Printf("Database:       %s (%s)\n", dbPath, formatBytes(size))
	fmt.Printf("Schema:         v%d\n", stats.SchemaVersion)
	fmt.Printf("Saved filters:  %d\n", stats.SavedFilters)
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("Last saved:     %s\n", stats.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Issues default: %s\n", mode)
	fmt.Printf("Facet locale:   %s\n", sess.cfg.Facets.Locale)

	return nil
}

// databaseSize prefers the size of the file on disk and falls back to the
// page count reported by SQLite.
func databaseSize(stats *storage.Stats, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil && info.Size() > 0 {
		return info.Size()
	}
	return stats.DatabaseSizeBytes
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
