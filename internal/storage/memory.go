package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps JSON snapshots of each collection in process memory.
// Values are encoded on Save so later mutations by the caller do not leak in.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.items[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = raw
	return nil
}

// SaveBatch implements BatchStore. Every value is encoded before any is stored.
func (s *MemoryStore) SaveBatch(_ context.Context, entries []Entry) error {
	raws := make([][]byte, len(entries))
	for i, e := range entries {
		raw, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.Key, err)
		}
		raws[i] = raw
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range entries {
		s.items[e.Key] = raws[i]
	}
	return nil
}

// Keys returns the number of stored keys.
func (s *MemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
