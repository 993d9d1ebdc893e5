package registry

import "sync"

// Map is a mutex-guarded keyed map. It is safe for use from network handlers
// and the tick loop at the same time.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewMap creates an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{items: make(map[K]V)}
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[k]
	return v, ok
}

// Set stores v under k, replacing any previous value.
func (m *Map[K, V]) Set(k K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[k] = v
}

// Swap stores v under k and returns the previous value, if any.
func (m *Map[K, V]) Swap(k K, v V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.items[k]
	m.items[k] = v
	return prev, ok
}

// LoadOrStore returns the existing value for k if present. Otherwise it stores
// and returns the value built by create. The loaded result is true if the
// value was already present.
func (m *Map[K, V]) LoadOrStore(k K, create func() V) (V, bool) {
	m.mu.RLock()
	v, ok := m.items[k]
	m.mu.RUnlock()
	if ok {
		return v, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[k]; ok {
		return v, true
	}
	v = create()
	m.items[k] = v
	return v, false
}

// Delete removes k and returns the removed value.
func (m *Map[K, V]) Delete(k K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[k]
	if ok {
		delete(m.items, k)
	}
	return v, ok
}

// Update runs fn on the value stored under k while holding the write lock.
// fn receives the current value and whether it exists; it returns the new
// value and whether to keep it. Returning keep=false removes the key.
func (m *Map[K, V]) Update(k K, fn func(v V, exists bool) (V, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.items[k]
	next, keep := fn(cur, ok)
	if keep {
		m.items[k] = next
	} else if ok {
		delete(m.items, k)
	}
}

// Range calls fn for each entry on a snapshot of the map, so fn may call back
// into the Map. Iteration stops when fn returns false.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	m.mu.RLock()
	keys := make([]K, 0, len(m.items))
	vals := make([]V, 0, len(m.items))
	for k, v := range m.items {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	m.mu.RUnlock()

	for i := range keys {
		if !fn(keys[i], vals[i]) {
			return
		}
	}
}

// DeleteFunc removes every entry for which fn returns true and returns the
// removed values.
func (m *Map[K, V]) DeleteFunc(fn func(K, V) bool) []V {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []V
	for k, v := range m.items {
		if fn(k, v) {
			removed = append(removed, v)
			delete(m.items, k)
		}
	}
	return removed
}

// Keys returns a snapshot of the keys.
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]K, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[K]V)
}
