package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pixil98/go-realm/internal/game"
)

// Warp moves the character bound to conn to position on targetMap. Nil
// position or rotation means the target map's entry point. A warp within the
// current map is a teleport that the client confirms with ConfirmTeleport.
// A warp to another map saves and unloads every character on the current
// map before asking the host to serve the target. Nothing is rolled back
// when a step fails.
func (m *Manager) Warp(ctx context.Context, conn game.ConnectionId, targetMap string, position, rotation *game.Vector3) error {
	p, ok := m.players.Get(conn)
	if !ok {
		return ErrNotSpawned
	}
	if !m.entities.CanWarp(p.handle) {
		slog.InfoContext(ctx, "warp refused while entity is locked", "conn", conn, "entity", p.handle)
		return nil
	}

	current := m.CurrentMap()
	if targetMap == "" {
		targetMap = current
	}
	pos, rot := m.destination(targetMap, position, rotation)

	if targetMap == current {
		if err := m.entities.Teleport(ctx, p.handle, pos, rot); err != nil {
			return fmt.Errorf("teleporting entity %d: %w", p.handle, err)
		}
		p.mu.Lock()
		p.awaitingTeleport = true
		p.mu.Unlock()
		return nil
	}

	warpId := uuid.NewString()
	log := slog.With("warp", warpId, "conn", conn, "from", current, "to", targetMap)
	log.InfoContext(ctx, "warping to another map")

	// 1. Save the world and the departing character's storage.
	if err := m.persistPlayer(ctx, p, PersistOptions{SaveWorld: true, SaveStorage: true, Force: true}); err != nil {
		return fmt.Errorf("saving before warp: %w", err)
	}

	// 2. Building storages belong to the departing map.
	m.storages.ClearMap(ctx)

	// 3. Everyone on the map re-enters through their entry location.
	m.players.Range(func(_ game.ConnectionId, q *player) bool {
		m.teleporting.Add(q.record.Id)
		return true
	})

	// 4. Save where the warping character arrives.
	p.mu.Lock()
	p.record.MapName = targetMap
	p.record.Position = pos
	p.record.Rotation = rot
	rec := p.record.Clone()
	buffs := append([]game.SummonBuff(nil), p.buffs...)
	p.mu.Unlock()
	if err := m.Persist(ctx, rec, buffs, PersistOptions{Force: true}); err != nil {
		return fmt.Errorf("saving warp destination: %w", err)
	}

	// 5. Unbind every character on the map.
	for _, q := range m.players.DeleteFunc(func(game.ConnectionId, *player) bool { return true }) {
		m.unbindCharacter(q)
	}

	// 6. The departing entity goes away with the map.
	if err := m.entities.Destroy(ctx, p.handle); err != nil {
		return fmt.Errorf("destroying entity %d: %w", p.handle, err)
	}

	// 7. Switch the host over.
	if err := m.host.ServeMap(ctx, targetMap); err != nil {
		return fmt.Errorf("serving map %s: %w", targetMap, err)
	}

	log.InfoContext(ctx, "warp handed to map host")
	return nil
}

func (m *Manager) destination(mapName string, position, rotation *game.Vector3) (game.Vector3, game.Vector3) {
	e := m.entry(mapName)
	pos, rot := e.Position, e.Rotation
	if position != nil {
		pos = *position
	}
	if rotation != nil {
		rot = *rotation
	}
	return pos, rot
}

// ConfirmTeleport acknowledges that the client finished a same-map teleport.
// It reports whether a teleport was outstanding.
func (m *Manager) ConfirmTeleport(ctx context.Context, conn game.ConnectionId) (bool, error) {
	p, ok := m.players.Get(conn)
	if !ok {
		return false, ErrNotSpawned
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.awaitingTeleport {
		return false, nil
	}
	p.awaitingTeleport = false
	if pos, ok := m.entities.Position(p.handle); ok {
		p.record.Position = pos
	}
	return true, nil
}

// AwaitingTeleport reports whether conn has an unconfirmed teleport.
func (m *Manager) AwaitingTeleport(conn game.ConnectionId) bool {
	p, ok := m.players.Get(conn)
	if !ok {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awaitingTeleport
}
