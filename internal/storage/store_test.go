package storage

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/issuefilter/internal/query"
)

// openTestStore creates a migrated in-memory Store for testing.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db := openTestDB(t)

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run(context.Background()))

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// --- Preferences ---

func TestPreference_MissingKey(t *testing.T) {
	store := openTestStore(t)

	value, found, err := store.GetPreference(context.Background(), "sonarqube.issues.default")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "", value)
}

func TestPreference_SetGetOverwrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPreference(ctx, "k", "my"))
	value, found, err := store.GetPreference(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "my", value)

	require.NoError(t, store.SetPreference(ctx, "k", "all"))
	require.NoError(t, store.SetPreference(ctx, "k", "all"))
	value, _, err = store.GetPreference(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "all", value)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Preferences)
}

// --- Saved filters ---

func TestSaveFilter_StoresCanonicalForm(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	raw := query.RawQuery{
		"resolved":     "true",
		"fileUuids":    "a,b",
		"s":            "NAME",
		"createdAfter": "2018-01-01T10:00:00Z",
		"open":         "AX1",
		"id":           "p1",
	}

	f, err := store.SaveFilter(ctx, "  recent  ", raw)
	require.NoError(t, err)
	assert.Equal(t, "recent", f.Name)
	assert.Equal(t, query.RawQuery{"fileUuids": "a,b", "createdAfter": "2018-01-01", "open": "AX1"}, f.Query)
	assert.Equal(t, "createdAfter=2018-01-01&fileUuids=a%2Cb&open=AX1", f.Encoded())
	assert.False(t, f.CreatedAt.IsZero())
	assert.False(t, f.UpdatedAt.IsZero())
}

func TestSaveFilter_KeepsPassthroughKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.SaveFilter(ctx, "mine", query.RawQuery{"types": "BUG", "open": "AX1", "myIssues": "true"})
	require.NoError(t, err)

	f, err := store.GetFilter(ctx, "mine")
	require.NoError(t, err)
	assert.Equal(t, "AX1", query.Open(f.Query))
	assert.True(t, query.MyIssuesSelected(f.Query))
	assert.Equal(t, "BUG", f.Query["types"])
}

func TestSaveFilter_RequiresName(t *testing.T) {
	store := openTestStore(t)

	_, err := store.SaveFilter(context.Background(), "   ", query.RawQuery{"tags": "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestSaveFilter_OverwritesExistingName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.SaveFilter(ctx, "bugs", query.RawQuery{"types": "BUG"})
	require.NoError(t, err)
	_, err = store.SaveFilter(ctx, "bugs", query.RawQuery{"types": "BUG,VULNERABILITY"})
	require.NoError(t, err)

	f, err := store.GetFilter(ctx, "bugs")
	require.NoError(t, err)
	assert.Equal(t, query.RawQuery{"types": "BUG,VULNERABILITY"}, f.Query)

	all, err := store.ListFilters(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveFilter_EmptyQuery(t *testing.T) {
	store := openTestStore(t)

	f, err := store.SaveFilter(context.Background(), "everything", query.RawQuery{"resolved": "true"})
	require.NoError(t, err)
	assert.Empty(t, f.Query)
	assert.Equal(t, "", f.Encoded())
}

func TestGetFilter_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetFilter(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListFilters_OrderedByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.ListFilters(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := store.SaveFilter(ctx, name, query.RawQuery{"tags": name})
		require.NoError(t, err)
	}

	all, err := store.ListFilters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "mid", all[1].Name)
	assert.Equal(t, "zeta", all[2].Name)
	assert.Equal(t, query.RawQuery{"tags": "zeta"}, all[2].Query)
}

func TestDeleteFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.SaveFilter(ctx, "tmp", query.RawQuery{"tags": "x"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteFilter(ctx, "tmp"))

	_, err = store.GetFilter(ctx, "tmp")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.DeleteFilter(ctx, "tmp")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindEquivalent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.SaveFilter(ctx, "open-bugs", query.RawQuery{"types": "BUG", "resolved": "false"})
	require.NoError(t, err)
	_, err = store.SaveFilter(ctx, "all-bugs", query.RawQuery{"types": "BUG"})
	require.NoError(t, err)

	matches, err := store.FindEquivalent(ctx, query.RawQuery{"types": "BUG", "resolved": "true", "s": "NAME"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "all-bugs", matches[0].Name)

	none, err := store.FindEquivalent(ctx, query.RawQuery{"types": "CODE_SMELL"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.SavedFilters)
	assert.True(t, stats.LastUpdated.IsZero())

	_, err = store.SaveFilter(ctx, "a", query.RawQuery{"tags": "a"})
	require.NoError(t, err)
	_, err = store.SaveFilter(ctx, "b", query.RawQuery{"tags": "b"})
	require.NoError(t, err)

	stats, err = store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.SavedFilters)
	assert.False(t, stats.LastUpdated.IsZero())
	assert.Greater(t, stats.DatabaseSizeBytes, int64(0))
	assert.Equal(t, 1, stats.SchemaVersion)
}

var _ Store = (*SQLiteStore)(nil)
