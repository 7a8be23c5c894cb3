package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the session record in process memory. The zero value
// is not usable; construct with NewMemoryStore.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the current record or ErrNotFound.
func (s *MemoryStore) Load(context.Context) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return nil, ErrNotFound
	}
	rec := *s.rec
	return &rec, nil
}

// Save replaces the current record.
func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	copied := *rec

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &copied
	return nil
}

// Delete removes the record; idempotent.
func (s *MemoryStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
