package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test SQLite state store
func createTestSQLiteStore(t *testing.T) *SQLStore {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err, "should create state store")
	t.Cleanup(func() { store.Close() })
	return store
}

// stores returns every backend available to the test run.
func stores(t *testing.T) map[string]StateStore {
	out := map[string]StateStore{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "config.json")),
		"sqlite": createTestSQLiteStore(t),
	}

	if dsn := os.Getenv("UAWATCH_TEST_POSTGRES_DSN"); dsn != "" {
		store, err := NewPostgresStore(dsn)
		require.NoError(t, err)
		_, err = store.db.Exec("DELETE FROM state")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		out["postgres"] = store
	}

	return out
}

// TestStateStore_WriteThenGet verifies a written key reads back
func TestStateStore_WriteThenGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(ctx, map[string]any{KeyLastID: "X"}))

			raw, err := store.Get(ctx, KeyLastID)
			require.NoError(t, err)
			assert.JSONEq(t, `"X"`, string(raw))
		})
	}
}

// TestStateStore_WritePreservesOtherFields verifies writes merge
func TestStateStore_WritePreservesOtherFields(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(ctx, map[string]any{
				KeyURL:         "https://discord.com/api/webhooks/1/abc",
				KeyKnownTitles: []string{"a", "b"},
				KeyEmbedImage:  false,
				"custom":       map[string]any{"kept": true},
			}))

			require.NoError(t, store.Write(ctx, map[string]any{KeyLastID: "X"}))

			state, err := store.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, "https://discord.com/api/webhooks/1/abc", state.URL)
			require.NotNil(t, state.LastID)
			assert.Equal(t, "X", *state.LastID)
			assert.Equal(t, []string{"a", "b"}, state.KnownTitles)
			assert.False(t, state.ShouldEmbedImage())

			raw, err := store.Get(ctx, "custom")
			require.NoError(t, err)
			assert.JSONEq(t, `{"kept":true}`, string(raw), "unknown keys should survive")
		})
	}
}

// TestStateStore_Overwrites verifies the last write wins
func TestStateStore_Overwrites(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(ctx, map[string]any{KeyLastID: "1"}))
			require.NoError(t, store.Write(ctx, map[string]any{KeyLastID: "2"}))

			raw, err := store.Get(ctx, KeyLastID)
			require.NoError(t, err)
			assert.JSONEq(t, `"2"`, string(raw))
		})
	}
}

// TestStateStore_GetMissingKey verifies ErrKeyNotFound
func TestStateStore_GetMissingKey(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(ctx, map[string]any{KeyURL: "https://example.com/hook"}))

			_, err := store.Get(ctx, KeyLastID)
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

// TestStateStore_NullClearsWatermark verifies writing nil resets lastId
func TestStateStore_NullClearsWatermark(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(ctx, map[string]any{KeyURL: "https://example.com/hook", KeyLastID: "9"}))
			require.NoError(t, store.Write(ctx, map[string]any{KeyLastID: nil}))

			state, err := store.Read(ctx)
			require.NoError(t, err)
			assert.Nil(t, state.LastID)
		})
	}
}

// TestSQLiteStore_EmptyRead verifies an empty table reads as an empty state
func TestSQLiteStore_EmptyRead(t *testing.T) {
	store := createTestSQLiteStore(t)

	state, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, state.Validate(), ErrMissingWebhookURL)
	assert.True(t, state.ShouldEmbedImage(), "embedImage should default to true")
}

// TestOpenStateStore verifies backend selection
func TestOpenStateStore(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenStateStore("file", filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = OpenStateStore("sqlite", filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, store)
	store.Close()

	_, err = OpenStateStore("redis", "")
	assert.Error(t, err)
}

// TestOpenStateStore_DefaultPath verifies the file store defaults to config.json
func TestOpenStateStore_DefaultPath(t *testing.T) {
	store, err := OpenStateStore("", "")
	require.NoError(t, err)

	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, DefaultStatePath, fs.Path())
}

// TestOpenStateStore_SQLiteDefaultPath verifies a sqlite backend without a
// dsn does not open the JSON state file
func TestOpenStateStore_SQLiteDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(DefaultStatePath, []byte(`{"url": "https://discord.com/api/webhooks/1/t"}`), 0o600))

	store, err := OpenStateStore(StateSQLite, "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(context.Background(), map[string]any{KeyURL: "https://discord.com/api/webhooks/2/t"}))
	assert.FileExists(t, filepath.Join(dir, DefaultSQLitePath))
}

// TestOpenStateStore_PostgresNeedsDSN verifies there is no postgres default
func TestOpenStateStore_PostgresNeedsDSN(t *testing.T) {
	_, err := OpenStateStore(StatePostgres, "")
	assert.ErrorIs(t, err, ErrMissingDSN)
}
