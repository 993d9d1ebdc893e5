package containers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/registry"
	"github.com/pixil98/go-realm/internal/rules"
	"github.com/pixil98/go-realm/internal/storage"
)

const DefaultSweepInterval = time.Second

// ErrConversionBusy is returned when a conversion is already running on the
// same storage.
var ErrConversionBusy = errors.New("storage conversion already in progress")

// StorageRecord is the persisted item list of one storage.
type StorageRecord struct {
	Storage game.StorageId   `json:"storage"`
	Items   []game.ItemStack `json:"items"`
}

func (r *StorageRecord) Validate() error {
	if r.Storage.OwnerId == "" {
		return fmt.Errorf("storage owner is required")
	}
	return nil
}

// Viewer is a connection together with the character it controls.
type Viewer struct {
	Conn      game.ConnectionId
	Character *game.CharacterRecord
	// Entity is the character's spawned entity, used for range checks.
	Entity game.EntityHandle
}

// StoragePayload is sent with StorageOpened and StorageItemsUpdated.
type StoragePayload struct {
	Storage game.StorageId      `json:"storage"`
	Items   []game.ItemStack    `json:"items,omitempty"`
	Limits  rules.StorageLimits `json:"limits"`
}

type openEntry struct {
	storage game.StorageId
	// handle is the storage entity; zero when opened without one.
	handle game.EntityHandle
	viewer game.EntityHandle
}

type container struct {
	mu      sync.Mutex
	items   []game.ItemStack
	limits  rules.StorageLimits
	viewers *registry.Set[game.ConnectionId]
}

// Controller gates access to storage containers and keeps every viewer's
// copy of a container in sync.
type Controller struct {
	rules    *rules.Rules
	entities game.EntityService
	pub      game.Publisher
	store    storage.Storer[*StorageRecord]

	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time

	containers *registry.Map[game.StorageId, *container]
	open       *registry.Map[game.ConnectionId, *registry.Set[openEntry]]
	converting *registry.Guard[game.StorageId]
}

func NewController(r *rules.Rules, entities game.EntityService, pub game.Publisher, opts ...ControllerOpt) *Controller {
	c := &Controller{
		rules:         r,
		entities:      entities,
		pub:           pub,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		containers:    registry.NewMap[game.StorageId, *container](),
		open:          registry.NewMap[game.ConnectionId, *registry.Set[openEntry]](),
		converting:    registry.NewGuard[game.StorageId](),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) container(id game.StorageId) *container {
	ct, _ := c.containers.LoadOrStore(id, func() *container {
		limits := c.rules.Limits(id.Kind)
		var items []game.ItemStack
		if c.store != nil {
			if rec := c.store.Get(id.Key()); rec != nil {
				items = game.CloneItems(rec.Items)
			}
		}
		return &container{
			items:   game.FillEmptySlots(items, limits.SlotLimit),
			limits:  limits,
			viewers: registry.NewSet[game.ConnectionId](),
		}
	})
	return ct
}

// Open validates ownership and range, then adds the connection as a viewer
// and sends it the current contents. Validation failures change nothing.
func (c *Controller) Open(ctx context.Context, v Viewer, handle game.EntityHandle, id game.StorageId) error {
	if v.Character == nil {
		return game.NewUserError(game.UIErrorNotLoggedIn)
	}

	var entity game.StorageEntity
	hasEntity := false
	if handle != 0 {
		se, ok := c.entities.StorageEntity(handle)
		if !ok || se.Storage != id {
			return game.NewUserError(game.UIErrorStorageNotFound)
		}
		entity, hasEntity = se, true
	}

	if !c.rules.AllowStorageWithoutEntity && !hasEntity {
		return game.NewUserError(game.UIErrorStorageNotFound)
	}

	if id.Kind == game.StorageKindBuilding {
		if !hasEntity {
			return game.NewUserError(game.UIErrorStorageNotFound)
		}
		if !entity.Public && entity.OwnerId != v.Character.Id {
			return game.NewUserError(game.UIErrorCannotAccess)
		}
	} else if !v.Character.CanAccessStorage(id) {
		return game.NewUserError(game.UIErrorCannotAccess)
	}

	if hasEntity && !c.rules.AllowStorageWithoutEntity {
		pos, ok := c.entities.Position(v.Entity)
		if !ok {
			return game.NewUserError(game.UIErrorCharacterNotFound)
		}
		if pos.Distance(entity.Position) > entity.Radius {
			return game.NewUserError(game.UIErrorCharacterIsTooFar)
		}
	}

	ct := c.container(id)
	ct.viewers.Add(v.Conn)
	entries, _ := c.open.LoadOrStore(v.Conn, func() *registry.Set[openEntry] {
		return registry.NewSet[openEntry]()
	})
	entries.Add(openEntry{storage: id, handle: handle, viewer: v.Entity})

	ct.mu.Lock()
	payload := StoragePayload{Storage: id, Items: game.CloneItems(ct.items), Limits: ct.limits}
	ct.mu.Unlock()

	if err := c.pub.Send(v.Conn, game.Notification{Kind: game.NotifyStorageOpened, Payload: StoragePayload{Storage: id, Limits: payload.Limits}}); err != nil {
		slog.WarnContext(ctx, "sending storage opened", "conn", v.Conn, "storage", id, "error", err)
	}
	if err := c.pub.Send(v.Conn, game.Notification{Kind: game.NotifyStorageItemsUpdated, Payload: payload}); err != nil {
		slog.WarnContext(ctx, "sending storage items", "conn", v.Conn, "storage", id, "error", err)
	}
	return nil
}

// Close removes the connection from the storage's viewers. Closing a storage
// that is not open does nothing.
func (c *Controller) Close(ctx context.Context, conn game.ConnectionId, id game.StorageId) {
	entries, ok := c.open.Get(conn)
	if !ok {
		return
	}
	removed := entries.RemoveFunc(func(e openEntry) bool { return e.storage == id })
	if len(removed) == 0 {
		return
	}
	c.closed(ctx, conn, id)
}

// CloseAll closes every storage the connection has open.
func (c *Controller) CloseAll(ctx context.Context, conn game.ConnectionId) {
	entries, ok := c.open.Delete(conn)
	if !ok {
		return
	}
	seen := map[game.StorageId]bool{}
	for _, e := range entries.Members() {
		if seen[e.storage] {
			continue
		}
		seen[e.storage] = true
		c.closed(ctx, conn, e.storage)
	}
}

func (c *Controller) closed(ctx context.Context, conn game.ConnectionId, id game.StorageId) {
	if ct, ok := c.containers.Get(id); ok {
		ct.viewers.Remove(conn)
	}
	err := c.pub.Send(conn, game.Notification{Kind: game.NotifyStorageClosed, Payload: StoragePayload{Storage: id}})
	if err != nil {
		slog.WarnContext(ctx, "sending storage closed", "conn", conn, "storage", id, "error", err)
	}
}

// Tick closes storages whose viewer has walked out of range. The sweep runs
// at most once per sweep interval.
func (c *Controller) Tick(ctx context.Context) error {
	if c.rules.AllowStorageWithoutEntity {
		return nil
	}
	now := c.now()
	if now.Sub(c.lastSweep) < c.sweepInterval {
		return nil
	}
	c.lastSweep = now

	c.open.Range(func(conn game.ConnectionId, entries *registry.Set[openEntry]) bool {
		for _, e := range entries.Members() {
			if e.handle == 0 {
				continue
			}
			if c.inRange(e) {
				continue
			}
			slog.DebugContext(ctx, "closing out of range storage", "conn", conn, "storage", e.storage)
			c.Close(ctx, conn, e.storage)
		}
		return true
	})
	return nil
}

func (c *Controller) inRange(e openEntry) bool {
	se, ok := c.entities.StorageEntity(e.handle)
	if !ok {
		return false
	}
	pos, ok := c.entities.Position(e.viewer)
	if !ok {
		return false
	}
	return pos.Distance(se.Position) <= se.Radius
}

// IsViewing reports whether conn currently has the storage open.
func (c *Controller) IsViewing(conn game.ConnectionId, id game.StorageId) bool {
	ct, ok := c.containers.Get(id)
	return ok && ct.viewers.Has(conn)
}

// Items returns a copy of the storage's item list.
func (c *Controller) Items(id game.StorageId) []game.ItemStack {
	ct := c.container(id)
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return game.CloneItems(ct.items)
}

// Limits returns the storage's weight and slot limits.
func (c *Controller) Limits(id game.StorageId) rules.StorageLimits {
	return c.container(id).limits
}

// SetItems replaces the storage contents, e.g. from a client ready snapshot,
// and resends them to current viewers.
func (c *Controller) SetItems(ctx context.Context, id game.StorageId, items []game.ItemStack) {
	ct := c.container(id)
	ct.mu.Lock()
	ct.items = game.FillEmptySlots(game.CloneItems(items), ct.limits.SlotLimit)
	payload := StoragePayload{Storage: id, Items: game.CloneItems(ct.items), Limits: ct.limits}
	ct.mu.Unlock()

	c.replicate(ctx, ct, payload)
}

// SaveStorage writes the storage's current contents to the store.
func (c *Controller) SaveStorage(id game.StorageId) error {
	if c.store == nil {
		return nil
	}
	ct, ok := c.containers.Get(id)
	if !ok {
		return nil
	}
	ct.mu.Lock()
	rec := &StorageRecord{Storage: id, Items: game.CloneItems(ct.items)}
	ct.mu.Unlock()

	if err := c.store.Save(id.Key(), rec); err != nil {
		return fmt.Errorf("saving storage %s: %w", id, err)
	}
	return nil
}

// ClearMap drops every cached building storage of the current map after
// closing it for its viewers. Player and guild storages outlive the map.
func (c *Controller) ClearMap(ctx context.Context) {
	dropped := c.containers.DeleteFunc(func(id game.StorageId, _ *container) bool {
		return id.Kind == game.StorageKindBuilding
	})
	if len(dropped) == 0 {
		return
	}
	c.open.Range(func(conn game.ConnectionId, entries *registry.Set[openEntry]) bool {
		for _, e := range entries.RemoveFunc(func(e openEntry) bool { return e.storage.Kind == game.StorageKindBuilding }) {
			c.closed(ctx, conn, e.storage)
		}
		return true
	})
}

// Reset forgets every container and viewer. Running conversions finish on
// their own copy and release their guard as usual.
func (c *Controller) Reset() {
	c.containers.Clear()
	c.open.Clear()
}

func (c *Controller) replicate(ctx context.Context, ct *container, payload StoragePayload) {
	n := game.Notification{Kind: game.NotifyStorageItemsUpdated, Payload: payload}
	if err := game.Broadcast(c.pub, ct.viewers.Members(), n); err != nil {
		slog.WarnContext(ctx, "replicating storage items", "storage", payload.Storage, "error", err)
	}
}
