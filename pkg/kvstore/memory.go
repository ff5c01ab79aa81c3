package kvstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store.
// Used as fallback when neither SQLite nor Valkey is configured, and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	strings map[string]string
	lists   map[string][]string
}

// NewMemoryStore creates a new in-memory key-value store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

func (s *MemoryStore) GetString(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.strings[key]
	return v, ok, nil
}

func (s *MemoryStore) SetString(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.strings[key] = value
	return nil
}

func (s *MemoryStore) GetStringList(ctx context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.lists[key]
	if !ok {
		return nil, false, nil
	}
	out := append([]string(nil), v...)
	return out, true, nil
}

func (s *MemoryStore) SetStringList(ctx context.Context, key string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append([]string(nil), values...)
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.strings, key)
	delete(s.lists, key)
	return nil
}
