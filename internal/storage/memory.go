package storage

import "sync"

// MemoryStore keeps records in memory only. It backs tests and throwaway
// worlds.
type MemoryStore[T ValidatingSpec] struct {
	mu      sync.RWMutex
	records map[string]T
}

func NewMemoryStore[T ValidatingSpec]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]T{}}
}

func (s *MemoryStore[T]) Save(id string, o T) error {
	asset := &Asset[T]{Version: assetVersion, Identifier: Identifier(id), Spec: o}
	if err := asset.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = o
	return nil
}

func (s *MemoryStore[T]) Get(id string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

func (s *MemoryStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

func (s *MemoryStore[T]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
