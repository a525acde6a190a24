// Package storage persists the ledger collections as opaque values keyed by
// collection name. There is no schema versioning: readers supply defaults for
// missing keys.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is a key/value backing store for whole collections.
type Store interface {
	// Load decodes the value stored under key into dst. It reports false
	// when nothing is stored under key.
	Load(ctx context.Context, key string, dst any) (bool, error)
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, value any) error
}

// Entry is one collection write of a batch.
type Entry struct {
	Key   string
	Value any
}

// BatchStore is implemented by stores that can write several collections
// atomically: either every entry is stored or none is.
type BatchStore interface {
	SaveBatch(ctx context.Context, entries []Entry) error
}

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage closed")

// Load reads the value stored under key, or returns def when the key is absent.
func Load[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	var v T
	found, err := s.Load(ctx, key, &v)
	if err != nil {
		return def, fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// Save writes value under key.
func Save[T any](ctx context.Context, s Store, key string, value T) error {
	if err := s.Save(ctx, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SaveBatch writes every entry, atomically when s implements BatchStore and
// one key at a time otherwise.
func SaveBatch(ctx context.Context, s Store, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if b, ok := s.(BatchStore); ok {
		if err := b.SaveBatch(ctx, entries); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
		return nil
	}
	for _, e := range entries {
		if err := Save(ctx, s, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
