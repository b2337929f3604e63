// Package memstore is an in-memory Store implementation. It backs the
// unit test suite and the demo mode of the chat REPL, and is safe for
// concurrent use.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"shop-agent/internal/store"
)

type collection struct {
	header []string
	rows   [][]string
}

// Store holds collections in process memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New returns an empty Store.
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) EnsureCollection(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return nil
	}
	h := make([]string, len(header))
	copy(h, header)
	s.collections[name] = &collection{header: h}
	return nil
}

func (s *Store) AppendRow(_ context.Context, name string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("append to %s: %w", name, store.ErrCollectionNotFound)
	}
	r := make([]string, len(c.header))
	copy(r, row)
	c.rows = append(c.rows, r)
	return nil
}

func (s *Store) ReadAll(_ context.Context, name string) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, store.ErrCollectionNotFound)
	}
	records := make([]store.Record, 0, len(c.rows))
	for i, row := range c.rows {
		fields := make(map[string]string, len(c.header))
		for j, col := range c.header {
			if j < len(row) {
				fields[col] = row[j]
			} else {
				fields[col] = ""
			}
		}
		records = append(records, store.Record{Row: i + 1, Fields: fields})
	}
	return records, nil
}

func (s *Store) UpdateCell(_ context.Context, name string, row int, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("update %s: %w", name, store.ErrCollectionNotFound)
	}
	if row < 1 || row > len(c.rows) {
		return fmt.Errorf("update %s row %d: %w", name, row, store.ErrRowNotFound)
	}
	col := -1
	for j, h := range c.header {
		if h == column {
			col = j
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("update %s: unknown column %q", name, column)
	}
	c.rows[row-1][col] = value
	return nil
}
