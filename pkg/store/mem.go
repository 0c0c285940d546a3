package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory closure store. It keeps the encoded records
// rather than the decoded slices so tests exercise the same codec path as
// the persistent backends.
type MemStore struct {
	mu      sync.RWMutex
	records map[int64][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[int64][]byte)}
}

// Put encodes and stores one closure.
func (s *MemStore) Put(_ context.Context, id int64, ancestors []int64) error {
	record, err := Encode(ancestors)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[id] = record
	s.mu.Unlock()
	return nil
}

// Get fetches and decodes the closure of one segment.
func (s *MemStore) Get(_ context.Context, id int64) ([]int64, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(record)
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close does nothing for the in-memory store.
func (s *MemStore) Close() error { return nil }

var (
	_ Writer = (*MemStore)(nil)
	_ Reader = (*MemStore)(nil)
)
