package dict

import (
	"context"
	"sync"
)

// Store persists the substitution dictionary between sessions.
type Store interface {
	// Load returns all entries. The returned slice is owned by the
	// caller and may be mutated freely.
	Load(ctx context.Context) ([]WordEntry, error)
	// Save replaces the stored entries.
	Save(ctx context.Context, entries []WordEntry) error
}

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// The zero value is an empty, ready-to-use store.
type MemStore struct {
	mu      sync.RWMutex
	entries []WordEntry
}

// NewMemStore returns a store seeded with the given entries.
func NewMemStore(entries ...WordEntry) *MemStore {
	s := &MemStore{}
	s.entries = append(s.entries, entries...)
	return s
}

// Load implements [Store.Load].
func (s *MemStore) Load(ctx context.Context) ([]WordEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WordEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Save implements [Store.Save].
func (s *MemStore) Save(ctx context.Context, entries []WordEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]WordEntry, len(entries))
	copy(s.entries, entries)
	return nil
}
