package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/game"
	"golang.org/x/sync/errgroup"
)

// PersistOptions selects what a save writes besides the character.
type PersistOptions struct {
	// SaveWorld also writes the current map's world snapshot.
	SaveWorld bool
	// SaveStorage also writes the character's player storage.
	SaveStorage bool
	// Force writes the character even if its fingerprint is unchanged.
	Force bool
}

// Persist writes rec, its summon buffs and its entry location, plus the world
// and storage when asked. Saving an unchanged character is skipped unless
// forced. Repeating a save writes the same data again.
func (m *Manager) Persist(ctx context.Context, rec *game.CharacterRecord, buffs []game.SummonBuff, opts PersistOptions) error {
	fp := rec.Fingerprint()
	if prev, ok := m.saved.Get(rec.Id); ok && prev == fp && !opts.Force && !opts.SaveWorld && !opts.SaveStorage {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := m.characters.Save(rec.Id, rec); err != nil {
			return fmt.Errorf("saving character %s: %w", rec.Id, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := m.buffs.Save(rec.Id, &game.SummonBuffs{CharacterId: rec.Id, Buffs: buffs}); err != nil {
			return fmt.Errorf("saving summon buffs of %s: %w", rec.Id, err)
		}
		return nil
	})
	if rec.MapName != "" {
		g.Go(func() error {
			loc := &game.EnterGameLocation{MapName: rec.MapName, Position: rec.Position, Rotation: rec.Rotation}
			if err := m.locations.Save(rec.Id, loc); err != nil {
				return fmt.Errorf("saving location of %s: %w", rec.Id, err)
			}
			return nil
		})
	}
	if opts.SaveWorld {
		g.Go(func() error {
			return m.saveWorld(gctx, m.CurrentMap())
		})
	}
	if opts.SaveStorage {
		g.Go(func() error {
			return m.storages.SaveStorage(game.StorageId{Kind: game.StorageKindPlayer, OwnerId: rec.Id})
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	m.saved.Set(rec.Id, fp)
	return nil
}

func (m *Manager) saveWorld(ctx context.Context, mapName string) error {
	if m.host == nil || mapName == "" {
		return nil
	}
	snap, err := m.host.WorldSnapshot(ctx, mapName)
	if err != nil {
		return fmt.Errorf("fetching world snapshot of %s: %w", mapName, err)
	}
	if snap == nil {
		return nil
	}
	snap.SavedAt = m.now()
	if err := m.worlds.Save(mapName, snap); err != nil {
		return fmt.Errorf("saving world snapshot of %s: %w", mapName, err)
	}
	return nil
}

// persistPlayer saves a copy of the player's record taken under its lock,
// with the position refreshed from its entity.
func (m *Manager) persistPlayer(ctx context.Context, p *player, opts PersistOptions) error {
	p.mu.Lock()
	if pos, ok := m.entities.Position(p.handle); ok {
		p.record.Position = pos
	}
	rec := p.record.Clone()
	buffs := append([]game.SummonBuff(nil), p.buffs...)
	p.mu.Unlock()

	return m.Persist(ctx, rec, buffs, opts)
}

// persistAll saves every changed character.
func (m *Manager) persistAll(ctx context.Context) error {
	el := errors.NewErrorList()
	m.players.Range(func(conn game.ConnectionId, p *player) bool {
		if err := m.persistPlayer(ctx, p, PersistOptions{}); err != nil {
			slog.ErrorContext(ctx, "periodic save failed", "conn", conn, "error", err)
			el.Add(err)
		}
		return true
	})
	return el.Err()
}
