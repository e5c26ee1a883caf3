package cache

import (
	"context"
	"sync"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// MemoryStore keeps the mapping in process memory. Nothing survives the
// process; it backs tests and the "memory" cache backend.
type MemoryStore struct {
	mu    sync.RWMutex
	data  Mapping
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(Mapping),
	}
}

func (s *MemoryStore) Load(ctx context.Context) Mapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.Clone()
}

func (s *MemoryStore) Save(ctx context.Context, m Mapping) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = m.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}
