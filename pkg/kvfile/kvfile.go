// Package kvfile is a string key-value store kept in a single JSON file.
package kvfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store holds all keys in memory and rewrites the whole file on every Set.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// Open loads path if it exists. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]string{}}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Get returns the value for key; ok is false when the key is absent.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value and persists the file. The in-memory value is only
// replaced once the file write succeeded.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value
	if err := writeAtomic(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// writeAtomic writes to a temporary file first and renames it over path so a
// crash never leaves a half-written file behind.
func writeAtomic(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
