package store

import (
	"context"
	"sync"
	"time"
)

// entry holds a cached value with its update timestamp.
type entry struct {
	value     string
	updatedAt time.Time
}

// MemoryStore is a thread-safe in-memory store. It backs tests and
// single-process deployments; entries never expire.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

// Get retrieves a value.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.value, ok, nil
}

// GetMany retrieves the given keys.
func (s *MemoryStore) GetMany(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if e, ok := s.entries[key]; ok {
			out[key] = e.value
		}
	}
	return out, nil
}

// Set upserts a value with a fresh timestamp.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, updatedAt: time.Now()}
	return nil
}

// UpdatedAt returns the timestamp recorded with a key, if present.
func (s *MemoryStore) UpdatedAt(key string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.updatedAt, ok
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Entries returns all entries as key-value pairs.
func (s *MemoryStore) Entries(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.entries))
	for key, e := range s.entries {
		out[key] = e.value
	}
	return out, nil
}

// Verify MemoryStore implements Store and EntryLister.
var (
	_ Store       = (*MemoryStore)(nil)
	_ EntryLister = (*MemoryStore)(nil)
)
