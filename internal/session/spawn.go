package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-realm/internal/game"
)

// Spawn instantiates rec for conn on the current map and binds the two,
// replacing and destroying any entity previously bound to the connection or
// the character.
func (m *Manager) Spawn(ctx context.Context, conn game.ConnectionId, rec *game.CharacterRecord, buffs []game.SummonBuff) (game.EntityHandle, error) {
	if !m.entities.TryGetEntityPrefab(rec.EntityId) {
		return 0, fmt.Errorf("%w: entity %d of character %s", ErrUnresolvableEntity, rec.EntityId, rec.Id)
	}

	if m.members != nil {
		m.members.SyncCharacter(rec)
	}

	current := m.CurrentMap()
	rec.Position, rec.Rotation = m.spawnPoint(rec, current)
	rec.MapName = current
	m.teleporting.Remove(rec.Id)

	if m.policy != nil {
		m.policy(rec, m.players.Len())
	}

	handle, err := m.entities.Spawn(ctx, game.SpawnRequest{
		Conn:          conn,
		Character:     rec.Clone(),
		Position:      rec.Position,
		Rotation:      rec.Rotation,
		MountEntityId: rec.MountEntityId,
		SummonBuffs:   buffs,
	})
	if err != nil {
		return 0, fmt.Errorf("spawning character %s: %w", rec.Id, err)
	}

	p := &player{conn: conn, record: rec, buffs: buffs, handle: handle}
	m.saved.Set(rec.Id, rec.Fingerprint())
	if old, had := m.players.Swap(conn, p); had {
		m.replaced(ctx, old, rec.Id)
	}
	if prevConn, had := m.byCharacter.Swap(rec.Id, conn); had && prevConn != conn {
		if old, ok := m.players.Delete(prevConn); ok {
			m.replaced(ctx, old, rec.Id)
		}
	}

	slog.InfoContext(ctx, "character spawned", "conn", conn, "character", rec.Id, "map", current, "entity", handle)
	return handle, nil
}

// replaced tears down a binding superseded by a spawn of characterId.
func (m *Manager) replaced(ctx context.Context, old *player, characterId string) {
	if old.record.Id != characterId {
		m.unbindCharacter(old)
	}
	if err := m.entities.Destroy(ctx, old.handle); err != nil {
		slog.ErrorContext(ctx, "destroying replaced entity", "conn", old.conn, "entity", old.handle, "error", err)
	}
}

// spawnPoint picks where rec enters currentMap. A character arriving from
// another map, or marked as teleporting, uses its saved entry location for
// this map. Otherwise its own position is used when it has one.
func (m *Manager) spawnPoint(rec *game.CharacterRecord, currentMap string) (game.Vector3, game.Vector3) {
	arriving := rec.MapName != "" && rec.MapName != currentMap
	if m.teleporting.Has(rec.Id) || arriving {
		if loc := m.locations.Get(rec.Id); loc != nil && loc.MapName == currentMap {
			return loc.Position, loc.Rotation
		}
		e := m.entry(currentMap)
		return e.Position, e.Rotation
	}
	if rec.MapName == "" {
		e := m.entry(currentMap)
		return e.Position, e.Rotation
	}
	return rec.Position, rec.Rotation
}
