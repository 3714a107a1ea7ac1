package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It is used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	flushes int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return limit(out, q.Limit), nil
}

// Flush counts calls so callers can assert on it.
func (s *MemoryStore) Flush() error {
	s.mu.Lock()
	s.flushes++
	s.mu.Unlock()
	return nil
}

// Flushes returns how many times Flush was called.
func (s *MemoryStore) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) Close() error { return nil }
