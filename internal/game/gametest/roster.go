package gametest

import (
	"sync"

	"github.com/pixil98/go-realm/internal/game"
)

// Roster is an in-memory set of online characters.
type Roster struct {
	mu      sync.Mutex
	conns   map[string]game.ConnectionId
	records map[string]*game.CharacterRecord
}

func NewRoster() *Roster {
	return &Roster{
		conns:   map[string]game.ConnectionId{},
		records: map[string]*game.CharacterRecord{},
	}
}

// Join brings rec online on conn.
func (r *Roster) Join(conn game.ConnectionId, rec *game.CharacterRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[rec.Id] = conn
	r.records[rec.Id] = rec
}

// Drop takes the character offline.
func (r *Roster) Drop(characterId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, characterId)
	delete(r.records, characterId)
}

func (r *Roster) Connection(characterId string) (game.ConnectionId, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[characterId]
	return c, ok
}

func (r *Roster) UpdateCharacter(characterId string, fn func(*game.CharacterRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[characterId]
	if !ok {
		return game.ErrPlayerNotFound
	}
	return fn(rec)
}

// Record returns the live record of an online character.
func (r *Roster) Record(characterId string) *game.CharacterRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[characterId]
}
