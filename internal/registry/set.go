package registry

import "sync"

// Set is a mutex-guarded set.
type Set[K comparable] struct {
	mu    sync.RWMutex
	items map[K]struct{}
}

// NewSet creates a Set holding the given members.
func NewSet[K comparable](members ...K) *Set[K] {
	s := &Set[K]{items: make(map[K]struct{}, len(members))}
	for _, m := range members {
		s.items[m] = struct{}{}
	}
	return s
}

// Add inserts k. Returns false if k was already a member.
func (s *Set[K]) Add(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = struct{}{}
	return true
}

// Remove deletes k. Returns false if k was not a member.
func (s *Set[K]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[k]; !ok {
		return false
	}
	delete(s.items, k)
	return true
}

// Has reports whether k is a member.
func (s *Set[K]) Has(k K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[k]
	return ok
}

// Members returns a snapshot of the members in no particular order.
func (s *Set[K]) Members() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]K, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	return out
}

// RemoveFunc deletes every member for which fn returns true and returns them.
func (s *Set[K]) RemoveFunc(fn func(K) bool) []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []K
	for k := range s.items {
		if fn(k) {
			removed = append(removed, k)
			delete(s.items, k)
		}
	}
	return removed
}

// Len returns the number of members.
func (s *Set[K]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every member.
func (s *Set[K]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]struct{})
}
