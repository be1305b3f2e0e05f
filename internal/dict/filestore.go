package dict

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Compile-time assertion that FileStore satisfies the Store interface.
var _ Store = (*FileStore)(nil)

// FileStore persists the dictionary as a YAML file. A missing file loads
// as an empty dictionary; saves are atomic via a rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements [Store.Load].
func (s *FileStore) Load(ctx context.Context) ([]WordEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dict: read %s: %w", s.path, err)
	}

	var entries []WordEntry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("dict: parse %s: %w", s.path, err)
	}
	return entries, nil
}

// Save implements [Store.Save].
func (s *FileStore) Save(ctx context.Context, entries []WordEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("dict: marshal entries: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("dict: create directory: %w", err)
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("dict: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("dict: replace %s: %w", s.path, err)
	}
	return nil
}
