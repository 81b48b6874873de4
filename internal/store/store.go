// Package store persists spec metadata, cached spec bodies, auth tokens,
// and request history as JSON blobs under a single data directory. The
// parsing and generation core never touches this package; only the CLI
// surface does.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when a named record does not exist.
var ErrNotFound = errors.New("not found")

// Store bundles the file-backed repositories under one data directory.
type Store struct {
	Specs   *SpecStore
	Tokens  *TokenStore
	History *HistoryStore
	Cache   *Cache
}

// Open prepares the data directory and returns the repositories.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	cache, err := NewCache(filepath.Join(dir, "cache"))
	if err != nil {
		return nil, err
	}
	return &Store{
		Specs:   &SpecStore{file: newJSONFile(filepath.Join(dir, "specs.json"))},
		Tokens:  &TokenStore{file: newJSONFile(filepath.Join(dir, "tokens.json"))},
		History: &HistoryStore{file: newJSONFile(filepath.Join(dir, "history.json"))},
		Cache:   cache,
	}, nil
}

// jsonFile serializes one collection to a single JSON file. Writes go
// through a temp file and rename so a crash never leaves a half-written
// collection behind.
type jsonFile struct {
	path string
	mu   sync.Mutex
}

func newJSONFile(path string) *jsonFile { return &jsonFile{path: path} }

// load fills v from disk; a missing file leaves v untouched.
func (f *jsonFile) load(v any) error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	return nil
}

func (f *jsonFile) save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
