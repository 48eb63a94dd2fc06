package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileStore_ReadExisting verifies a hand-written document is understood
func TestFileStore_ReadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "url": "https://discord.com/api/webhooks/123/token",
  "lastId": "41",
  "knownTitles": ["one", "two"]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	state, err := NewFileStore(path).Read(context.Background())
	require.NoError(t, err)

	assert.NoError(t, state.Validate())
	require.NotNil(t, state.LastID)
	assert.Equal(t, "41", *state.LastID)
	assert.Equal(t, []string{"one", "two"}, state.KnownTitles)
	assert.Nil(t, state.EmbedImage)
	assert.True(t, state.ShouldEmbedImage())
}

// TestFileStore_ReadMissingFile verifies a missing file is an error
func TestFileStore_ReadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	_, err := store.Read(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileStore_NonStringURL verifies a malformed url fails to load
func TestFileStore_NonStringURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"url": 12}`), 0o600))

	_, err := NewFileStore(path).Read(context.Background())
	assert.Error(t, err)
}

// TestFileStore_InvalidJSON verifies parse failures are reported
func TestFileStore_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"url": `), 0o600))

	_, err := NewFileStore(path).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse state file")
}

// TestFileStore_WriteCreatesFile verifies the first write creates the document
func TestFileStore_WriteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	store := NewFileStore(path)

	require.NoError(t, store.Write(context.Background(), map[string]any{KeyURL: "https://example.com/hook"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://example.com/hook"}`, string(data))
	assert.Contains(t, string(data), "\n  \"url\"", "should be indented")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

// TestFileStore_ReadsExternalEdits verifies nothing is cached between reads
func TestFileStore_ReadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, map[string]any{KeyURL: "https://example.com/a"}))
	_, err := store.Read(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"url": "https://example.com/b", "embedImage": false}`), 0o600))

	state, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b", state.URL)
	assert.False(t, state.ShouldEmbedImage())
}

// TestState_Validate verifies the webhook url is required
func TestState_Validate(t *testing.T) {
	assert.ErrorIs(t, (&State{}).Validate(), ErrMissingWebhookURL)
	assert.NoError(t, (&State{URL: "https://example.com/hook"}).Validate())
}
