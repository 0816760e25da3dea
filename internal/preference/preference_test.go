package preference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
	err    error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) GetPreference(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) SetPreference(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestIsMySet_DefaultsToAll(t *testing.T) {
	my, err := IsMySet(context.Background(), newMemStore())
	require.NoError(t, err)
	assert.False(t, my)
}

func TestIsMySet_UnrecognizedValue(t *testing.T) {
	s := newMemStore()
	s.values[IssuesDefaultKey] = "MY"

	my, err := IsMySet(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, my)
}

func TestSaveMyIssues_LastWriteWins(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	require.NoError(t, SaveMyIssues(ctx, s, true))
	assert.Equal(t, ModeMy, s.values[IssuesDefaultKey])
	my, err := IsMySet(ctx, s)
	require.NoError(t, err)
	assert.True(t, my)

	require.NoError(t, SaveMyIssues(ctx, s, true))
	assert.Equal(t, ModeMy, s.values[IssuesDefaultKey])

	require.NoError(t, SaveMyIssues(ctx, s, false))
	assert.Equal(t, ModeAll, s.values[IssuesDefaultKey])
	my, err = IsMySet(ctx, s)
	require.NoError(t, err)
	assert.False(t, my)
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk full")
	s := &memStore{err: boom}
	ctx := context.Background()

	_, err := IsMySet(ctx, s)
	assert.ErrorIs(t, err, boom)

	err = SaveMyIssues(ctx, s, true)
	assert.ErrorIs(t, err, boom)
}

func TestParseMode(t *testing.T) {
	my, err := ParseMode("my")
	require.NoError(t, err)
	assert.True(t, my)

	my, err = ParseMode("all")
	require.NoError(t, err)
	assert.False(t, my)

	_, err = ParseMode("mine")
	assert.Error(t, err)
}
