package registry

import "sync"

// Queue is a keyed queue that remembers insertion order. Putting an existing
// key replaces its value but keeps its original position.
type Queue[K comparable, V any] struct {
	mu    sync.Mutex
	order []K
	items map[K]V
}

// NewQueue creates an empty Queue.
func NewQueue[K comparable, V any]() *Queue[K, V] {
	return &Queue[K, V]{items: make(map[K]V)}
}

// Put enqueues v under k.
func (q *Queue[K, V]) Put(k K, v V) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.items[k]; !ok {
		q.order = append(q.order, k)
	}
	q.items[k] = v
}

// Get returns the value queued under k.
func (q *Queue[K, V]) Get(k K) (V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.items[k]
	return v, ok
}

// Remove drops k from the queue.
func (q *Queue[K, V]) Remove(k K) (V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	v, ok := q.items[k]
	if !ok {
		return v, false
	}
	delete(q.items, k)
	for i, queued := range q.order {
		if queued == k {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return v, true
}

// Drain removes and returns every queued value in insertion order.
func (q *Queue[K, V]) Drain() []V {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]V, 0, len(q.order))
	for _, k := range q.order {
		out = append(out, q.items[k])
	}
	q.order = nil
	q.items = make(map[K]V)
	return out
}

// Len returns the number of queued values.
func (q *Queue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
