// Package memory is the default in-process entry store.
package memory

import (
	"context"
	"sync"

	"nomadprices/internal/core"
)

type Store struct {
	mu    sync.RWMutex
	items []core.PriceEntry // most recent first
}

func New() *Store {
	return &Store{}
}

// Insert prepends e.
func (s *Store) Insert(_ context.Context, e core.PriceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]core.PriceEntry, 0, len(s.items)+1)
	items = append(items, e)
	s.items = append(items, s.items...)
	return nil
}

// All returns a copy of the entries, most recent first.
func (s *Store) All(_ context.Context) ([]core.PriceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.PriceEntry, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// Close is a no-op; it lets the store satisfy backend lifecycles.
func (s *Store) Close() error { return nil }
