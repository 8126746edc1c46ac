package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a non-durable Store for tests and throwaway runs
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Get implements Store.Get
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

// Set implements Store.Set
func (s *MemoryStore) Set(_ context.Context, key string, payload []byte, modifiedAt time.Time) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Key: key, Payload: stored, ModifiedAt: modifiedAt}
	return nil
}

// Clear implements Store.Clear
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	return nil
}

// Close implements Store.Close
func (s *MemoryStore) Close() error { return nil }
