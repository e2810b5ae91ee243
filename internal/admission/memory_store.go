package admission

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used by tests and the memory backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, r Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return r, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.records, id); i >= 0 {
		return s.records[i], true, nil
	}
	return Record{}, false, nil
}

func (s *MemoryStore) FindAllByField(_ context.Context, field Field, value string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByField(s.records, field, value), nil
}

func (s *MemoryStore) UpdateByID(_ context.Context, id string, patch Patch) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.records, id)
	if i < 0 {
		return Record{}, false, nil
	}
	patch.Apply(&s.records[i])
	return s.records[i], true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}
