package registry

import (
	"sync"

	"github.com/google/uuid"
)

// Token proves ownership of a Guard key. Only the holder of the token issued
// by TryAcquire can release the key.
type Token struct {
	id  uuid.UUID
	key any
}

// Valid reports whether the token was issued by a successful TryAcquire.
func (t Token) Valid() bool {
	return t.id != uuid.Nil
}

// Guard admits at most one holder per key. A second caller is rejected rather
// than queued.
type Guard[K comparable] struct {
	mu   sync.Mutex
	held map[K]uuid.UUID
}

// NewGuard creates an empty Guard.
func NewGuard[K comparable]() *Guard[K] {
	return &Guard[K]{held: make(map[K]uuid.UUID)}
}

// TryAcquire claims k. It returns false if k is already held.
func (g *Guard[K]) TryAcquire(k K) (Token, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[k]; ok {
		return Token{}, false
	}
	id := uuid.New()
	g.held[k] = id
	return Token{id: id, key: k}, true
}

// Release frees the key held by t. Stale or foreign tokens are ignored.
func (g *Guard[K]) Release(t Token) {
	k, ok := t.key.(K)
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[k] == t.id {
		delete(g.held, k)
	}
}

// Held reports whether k is currently claimed.
func (g *Guard[K]) Held(k K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[k]
	return ok
}
