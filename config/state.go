package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the state document.
const (
	KeyURL         = "url"
	KeyLastID      = "lastId"
	KeyKnownTitles = "knownTitles"
	KeyEmbedImage  = "embedImage"
)

var (
	// ErrMissingWebhookURL means the state document has no webhook url.
	ErrMissingWebhookURL = errors.New("no webhook URL was provided in the state document's 'url' field")

	// ErrKeyNotFound means the requested key is not in the document.
	ErrKeyNotFound = errors.New("key not found")
)

// State is the persisted document: the webhook to post to, the dedup
// watermark and display options. Fields the program does not know about
// are kept by the stores on write.
type State struct {
	URL         string   `json:"url"`
	LastID      *string  `json:"lastId,omitempty"`
	KnownTitles []string `json:"knownTitles,omitempty"`
	EmbedImage  *bool    `json:"embedImage,omitempty"`
}

// Validate checks the fields required to start relaying.
func (s *State) Validate() error {
	if s.URL == "" {
		return ErrMissingWebhookURL
	}
	return nil
}

// ShouldEmbedImage reports the embedImage option, which defaults to true.
func (s *State) ShouldEmbedImage() bool {
	return s.EmbedImage == nil || *s.EmbedImage
}

// StateStore reads and merges the state document. Implementations do not
// cache: every Read reflects the stored document at that moment.
type StateStore interface {
	// Read returns the whole document.
	Read(ctx context.Context) (*State, error)
	// Get returns the raw JSON value of one key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Write merges partial into the stored document. Last writer wins.
	Write(ctx context.Context, partial map[string]any) error
	Close() error
}

// Storage backends.
const (
	StateFile     = "file"
	StateSQLite   = "sqlite"
	StatePostgres = "postgres"
)

// DefaultSQLitePath is the database the sqlite backend uses when no dsn
// is given.
const DefaultSQLitePath = "uawatch.db"

// ErrMissingDSN means a backend with no default location was given no dsn.
var ErrMissingDSN = errors.New("state dsn is required")

// DefaultStateDSN returns the location a backend uses when dsn is empty.
// Postgres has none.
func DefaultStateDSN(kind string) string {
	switch kind {
	case "", StateFile:
		return DefaultStatePath
	case StateSQLite:
		return DefaultSQLitePath
	}
	return ""
}

// OpenStateStore opens the backend named by kind ("file", "sqlite" or
// "postgres") at dsn, or at the backend's default when dsn is empty.
func OpenStateStore(kind, dsn string) (StateStore, error) {
	if dsn == "" {
		dsn = DefaultStateDSN(kind)
	}

	switch kind {
	case "", StateFile:
		return NewFileStore(dsn), nil
	case StateSQLite:
		store, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StatePostgres:
		if dsn == "" {
			return nil, fmt.Errorf("%w for the %s backend", ErrMissingDSN, kind)
		}
		store, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown state storage type: %q", kind)
	}
}

// decodeState turns a raw document into a State.
func decodeState(doc map[string]json.RawMessage) (*State, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	return &state, nil
}

// encodePartial marshals every value of partial.
func encodePartial(partial map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(partial))
	for key, value := range partial {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}
