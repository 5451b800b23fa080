package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StorageError reports a watchlist file failure other than "file absent".
type StorageError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("watchlist %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store persists a List as a JSON array of strings.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the watchlist. Returns an empty list if the file doesn't exist.
func (s *Store) Load() (List, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return List{}, nil
		}
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}
	var items List
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &StorageError{Op: "load", Path: s.path, Err: fmt.Errorf("decode: %w", err)}
	}
	if items == nil {
		items = List{}
	}
	return items, nil
}

// Save overwrites the file with the full list.
func (s *Store) Save(items List) error {
	if items == nil {
		items = List{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StorageError{Op: "save", Path: s.path, Err: err}
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}
