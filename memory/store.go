package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/velmie/mutationq"
)

var (
	_ mutationq.KV      = (*Store)(nil)
	_ mutationq.Counter = (*Store)(nil)
)

// Store is a map-backed KV namespace safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Put stores a copy of value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = slices.Clone(value)

	return nil
}

// Get returns a copy of the value under key or mutationq.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	if !ok {
		return nil, mutationq.ErrNotFound
	}

	return slices.Clone(value), nil
}

// Delete removes key if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)

	return nil
}

// Scan calls fn for a snapshot of the records taken when Scan starts.
func (s *Store) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.records))
	values := make([][]byte, 0, len(s.records))
	for key, value := range s.records {
		keys = append(keys, key)
		values = append(values, slices.Clone(value))
	}
	s.mu.RUnlock()

	for i := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(keys[i], values[i]); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of stored records.
func (s *Store) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}
