package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStatePath is where the file store keeps the document when no
// path is given.
const DefaultStatePath = "config.json"

// FileStore keeps the state document in a JSON file. Each write
// re-reads the file, merges and replaces it whole.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the JSON file at path. The file is not
// touched until the first call.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

// load reads the raw document.
func (f *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", f.path, err)
	}

	return doc, nil
}

// Read returns the whole document. A missing file is an error.
func (f *FileStore) Read(ctx context.Context) (*State, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return decodeState(doc)
}

// Get returns the raw value stored under key.
func (f *FileStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}

	value, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	return value, nil
}

// Write merges partial into the file, creating it if needed.
func (f *FileStore) Write(ctx context.Context, partial map[string]any) error {
	doc, err := f.load()
	if errors.Is(err, os.ErrNotExist) {
		doc = map[string]json.RawMessage{}
	} else if err != nil {
		return err
	}

	encoded, err := encodePartial(partial)
	if err != nil {
		return err
	}
	for key, value := range encoded {
		doc[key] = value
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return writeFileAtomic(f.path, data)
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory (0600: owner-only read/write).
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set state file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
