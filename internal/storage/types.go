package storage

import (
	"time"

	"github.com/runnerr0/issuefilter/internal/query"
)

// SavedFilter is a named issue filter kept in its canonical wire form.
type SavedFilter struct {
	Name      string
	Query     query.RawQuery
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Encoded returns the filter as a URL query string.
func (f *SavedFilter) Encoded() string {
	return f.Query.Encode()
}

// Stats holds aggregate counts about the store.
type Stats struct {
	SavedFilters      int64
	Preferences       int64
	LastUpdated       time.Time
	DatabaseSizeBytes int64
	SchemaVersion     int
}
