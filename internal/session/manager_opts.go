package session

import (
	"time"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
)

type ManagerOpt func(*Manager)

// WithStores persists characters, summon buffs, entry locations and world
// snapshots through the given stores.
func WithStores(
	characters storage.Storer[*game.CharacterRecord],
	buffs storage.Storer[*game.SummonBuffs],
	locations storage.Storer[*game.EnterGameLocation],
	worlds storage.Storer[*game.WorldSnapshot],
) ManagerOpt {
	return func(m *Manager) {
		m.characters = characters
		m.buffs = buffs
		m.locations = locations
		m.worlds = worlds
	}
}

// WithStartMap sets the map the host serves at startup.
func WithStartMap(name string) ManagerOpt {
	return func(m *Manager) {
		m.currentMap = name
	}
}

// WithMapEntry sets the default entry point of a map.
func WithMapEntry(loc game.EnterGameLocation) ManagerOpt {
	return func(m *Manager) {
		m.entries[loc.MapName] = loc
	}
}

// WithPersistInterval sets how often changed characters are saved.
func WithPersistInterval(d time.Duration) ManagerOpt {
	return func(m *Manager) {
		m.persistInterval = d
	}
}

// WithPermissionPolicy applies p to every spawning character.
func WithPermissionPolicy(p PermissionPolicy) ManagerOpt {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithDisconnector lets the manager drop clients it cannot serve.
func WithDisconnector(d Disconnector) ManagerOpt {
	return func(m *Manager) {
		m.kicker = d
	}
}

func withClock(now func() time.Time) ManagerOpt {
	return func(m *Manager) {
		m.now = now
	}
}
