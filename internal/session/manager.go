package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/registry"
	"github.com/pixil98/go-realm/internal/storage"
)

const DefaultPersistInterval = 10 * time.Second

var (
	// ErrUnresolvableEntity is returned when a character's prefab is unknown
	// to the map host. The connection is dropped and the spawn never retried.
	ErrUnresolvableEntity = errors.New("unresolvable character entity")
	// ErrNotSpawned is returned for connections without a spawned character.
	ErrNotSpawned = errors.New("connection has no spawned character")
)

// Storages is the part of the storage controller the session drives.
type Storages interface {
	SetItems(ctx context.Context, id game.StorageId, items []game.ItemStack)
	SaveStorage(id game.StorageId) error
	CloseAll(ctx context.Context, conn game.ConnectionId)
	ClearMap(ctx context.Context)
}

// MembershipSync refreshes guild and party membership on a loading record.
type MembershipSync interface {
	SyncCharacter(rec *game.CharacterRecord)
}

// Disconnector drops a client connection.
type Disconnector interface {
	Disconnect(ctx context.Context, conn game.ConnectionId) error
}

// PermissionPolicy may raise a character's permission as it spawns. online is
// the number of characters already spawned.
type PermissionPolicy func(rec *game.CharacterRecord, online int)

// FirstJoinerPolicy grants level to the first character spawned on the server.
func FirstJoinerPolicy(level int) PermissionPolicy {
	return func(rec *game.CharacterRecord, online int) {
		if online == 0 && rec.Permission < level {
			rec.Permission = level
		}
	}
}

// ReadyData is sent by a client once it has loaded its character.
type ReadyData struct {
	Character *game.CharacterRecord `json:"character"`
	Buffs     []game.SummonBuff     `json:"buffs,omitempty"`
	Storage   []game.ItemStack      `json:"storage,omitempty"`
}

// player is a spawned character bound to a connection. The record is owned
// by the player while bound and only touched with mu held.
type player struct {
	mu sync.Mutex

	conn   game.ConnectionId
	record *game.CharacterRecord
	buffs  []game.SummonBuff
	handle game.EntityHandle

	awaitingTeleport bool
}

// Manager admits clients, spawns their characters, persists them and moves
// them between maps.
type Manager struct {
	entities game.EntityService
	host     game.MapHost
	storages Storages
	members  MembershipSync
	kicker   Disconnector
	policy   PermissionPolicy

	characters storage.Storer[*game.CharacterRecord]
	buffs      storage.Storer[*game.SummonBuffs]
	locations  storage.Storer[*game.EnterGameLocation]
	worlds     storage.Storer[*game.WorldSnapshot]

	mapMu      sync.RWMutex
	currentMap string
	entries    map[string]game.EnterGameLocation

	persistInterval time.Duration
	lastPersist     time.Time
	now             func() time.Time

	connected   *registry.Set[game.ConnectionId]
	pending     *registry.Queue[game.ConnectionId, game.PendingSpawn]
	players     *registry.Map[game.ConnectionId, *player]
	byCharacter *registry.Map[string, game.ConnectionId]
	teleporting *registry.Set[string]
	saved       *registry.Map[string, game.Fingerprint]
}

func NewManager(entities game.EntityService, host game.MapHost, storages Storages, opts ...ManagerOpt) *Manager {
	m := &Manager{
		entities:        entities,
		host:            host,
		storages:        storages,
		characters:      storage.NewMemoryStore[*game.CharacterRecord](),
		buffs:           storage.NewMemoryStore[*game.SummonBuffs](),
		locations:       storage.NewMemoryStore[*game.EnterGameLocation](),
		worlds:          storage.NewMemoryStore[*game.WorldSnapshot](),
		entries:         map[string]game.EnterGameLocation{},
		persistInterval: DefaultPersistInterval,
		now:             time.Now,
		connected:       registry.NewSet[game.ConnectionId](),
		pending:         registry.NewQueue[game.ConnectionId, game.PendingSpawn](),
		players:         registry.NewMap[game.ConnectionId, *player](),
		byCharacter:     registry.NewMap[string, game.ConnectionId](),
		teleporting:     registry.NewSet[string](),
		saved:           registry.NewMap[string, game.Fingerprint](),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetMembershipSync makes spawning characters pick up their guild and party
// from s. It must be called before clients connect.
func (m *Manager) SetMembershipSync(s MembershipSync) {
	m.members = s
}

// CurrentMap is the map the host is serving.
func (m *Manager) CurrentMap() string {
	m.mapMu.RLock()
	defer m.mapMu.RUnlock()
	return m.currentMap
}

// entry is the default entry point of mapName.
func (m *Manager) entry(mapName string) game.EnterGameLocation {
	m.mapMu.RLock()
	defer m.mapMu.RUnlock()
	if e, ok := m.entries[mapName]; ok {
		return e
	}
	return game.EnterGameLocation{MapName: mapName}
}

// OnClientReady stores the client's storage snapshot and spawns its
// character, or queues the spawn while the world is not ready.
func (m *Manager) OnClientReady(ctx context.Context, conn game.ConnectionId, data ReadyData) error {
	rec := data.Character
	if rec == nil {
		return fmt.Errorf("ready data for connection %d has no character", conn)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validating character: %w", err)
	}
	m.connected.Add(conn)

	if data.Storage != nil {
		m.storages.SetItems(ctx, game.StorageId{Kind: game.StorageKindPlayer, OwnerId: rec.Id}, data.Storage)
	}

	buffs := data.Buffs
	if buffs == nil {
		if saved := m.buffs.Get(rec.Id); saved != nil {
			buffs = saved.Buffs
		}
	}

	if !m.entities.Ready() {
		m.pending.Put(conn, game.PendingSpawn{Conn: conn, Character: rec, Buffs: buffs})
		slog.InfoContext(ctx, "queued spawn until world is ready", "conn", conn, "character", rec.Id)
		return nil
	}

	_, err := m.Spawn(ctx, conn, rec, buffs)
	if errors.Is(err, ErrUnresolvableEntity) {
		m.drop(ctx, conn, err)
	}
	return err
}

// Tick spawns queued clients and runs the periodic save.
func (m *Manager) Tick(ctx context.Context) error {
	m.TickSpawnPendingQueue(ctx)

	if m.now().Sub(m.lastPersist) < m.persistInterval {
		return nil
	}
	m.lastPersist = m.now()
	return m.persistAll(ctx)
}

// TickSpawnPendingQueue spawns every queued client in arrival order once the
// world is ready. Clients that disconnected while queued are dropped.
func (m *Manager) TickSpawnPendingQueue(ctx context.Context) {
	if m.pending.Len() == 0 || !m.entities.Ready() {
		return
	}

	for _, ps := range m.pending.Drain() {
		if !m.connected.Has(ps.Conn) {
			slog.InfoContext(ctx, "dropping orphaned pending spawn", "conn", ps.Conn, "character", ps.Character.Id)
			continue
		}

		_, err := m.Spawn(ctx, ps.Conn, ps.Character, ps.Buffs)
		if errors.Is(err, ErrUnresolvableEntity) {
			m.drop(ctx, ps.Conn, err)
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "spawning pending character", "conn", ps.Conn, "character", ps.Character.Id, "error", err)
		}
	}
}

// drop logs err and disconnects the client.
func (m *Manager) drop(ctx context.Context, conn game.ConnectionId, err error) {
	slog.ErrorContext(ctx, "disconnecting client", "conn", conn, "error", err)
	m.connected.Remove(conn)
	if m.kicker == nil {
		return
	}
	if kerr := m.kicker.Disconnect(ctx, conn); kerr != nil {
		slog.ErrorContext(ctx, "disconnecting client", "conn", conn, "error", kerr)
	}
}

// OnDisconnect saves and removes whatever the connection left behind.
func (m *Manager) OnDisconnect(ctx context.Context, conn game.ConnectionId) error {
	m.connected.Remove(conn)
	if ps, ok := m.pending.Remove(conn); ok {
		slog.InfoContext(ctx, "dropped pending spawn", "conn", conn, "character", ps.Character.Id)
	}

	p, ok := m.players.Delete(conn)
	if !ok {
		return nil
	}
	m.unbindCharacter(p)

	var errs []error
	if err := m.persistPlayer(ctx, p, PersistOptions{SaveStorage: true, Force: true}); err != nil {
		errs = append(errs, err)
	}
	m.storages.CloseAll(ctx, conn)
	if err := m.entities.Destroy(ctx, p.handle); err != nil {
		errs = append(errs, fmt.Errorf("destroying entity %d: %w", p.handle, err))
	}

	slog.InfoContext(ctx, "client disconnected", "conn", conn, "character", p.record.Id)
	return errors.Join(errs...)
}

// OnSceneChange records that the host now serves mapName.
func (m *Manager) OnSceneChange(ctx context.Context, mapName string) {
	m.mapMu.Lock()
	prev := m.currentMap
	m.currentMap = mapName
	m.mapMu.Unlock()

	slog.InfoContext(ctx, "scene changed", "from", prev, "to", mapName)
}

func (m *Manager) unbindCharacter(p *player) {
	m.byCharacter.Update(p.record.Id, func(c game.ConnectionId, exists bool) (game.ConnectionId, bool) {
		return c, exists && c != p.conn
	})
}

// Online is the number of spawned characters.
func (m *Manager) Online() int {
	return m.players.Len()
}

// Pending is the number of clients waiting to spawn.
func (m *Manager) Pending() int {
	return m.pending.Len()
}

// CharacterId returns the id of the character bound to conn.
func (m *Manager) CharacterId(conn game.ConnectionId) (string, bool) {
	p, ok := m.players.Get(conn)
	if !ok {
		return "", false
	}
	return p.record.Id, true
}

// Character returns a copy of the character bound to conn.
func (m *Manager) Character(conn game.ConnectionId) (*game.CharacterRecord, bool) {
	p, ok := m.players.Get(conn)
	if !ok {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record.Clone(), true
}

// OnlineCharacter returns a copy of an online character.
func (m *Manager) OnlineCharacter(characterId string) (*game.CharacterRecord, bool) {
	conn, ok := m.byCharacter.Get(characterId)
	if !ok {
		return nil, false
	}
	return m.Character(conn)
}

// Entity returns the entity bound to conn.
func (m *Manager) Entity(conn game.ConnectionId) (game.EntityHandle, bool) {
	p, ok := m.players.Get(conn)
	if !ok {
		return 0, false
	}
	return p.handle, true
}

// Connection returns the connection of an online character.
func (m *Manager) Connection(characterId string) (game.ConnectionId, bool) {
	return m.byCharacter.Get(characterId)
}

// WithCharacter runs fn with exclusive access to the character bound to
// conn. fn must not call back into the social coordinator.
func (m *Manager) WithCharacter(conn game.ConnectionId, fn func(rec *game.CharacterRecord, handle game.EntityHandle) error) error {
	p, ok := m.players.Get(conn)
	if !ok {
		return ErrNotSpawned
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.record, p.handle)
}

// UpdateCharacter runs fn with exclusive access to an online character.
func (m *Manager) UpdateCharacter(characterId string, fn func(*game.CharacterRecord) error) error {
	conn, ok := m.byCharacter.Get(characterId)
	if !ok {
		return game.ErrPlayerNotFound
	}
	p, ok := m.players.Get(conn)
	if !ok {
		return game.ErrPlayerNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.record)
}
