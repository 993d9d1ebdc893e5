package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/registry"
)

// HostState is pushed by the map host on realm.host.ready.
type HostState struct {
	Ready   bool   `json:"ready"`
	MapName string `json:"map_name,omitempty"`
	Prefabs []int  `json:"prefabs,omitempty"`
}

// EntityState is pushed by the map host on realm.host.entity whenever an
// entity moves, locks or disappears.
type EntityState struct {
	Handle   game.EntityHandle   `json:"handle"`
	Position game.Vector3        `json:"position"`
	Locked   bool                `json:"locked,omitempty"`
	Storage  *game.StorageEntity `json:"storage,omitempty"`
	Removed  bool                `json:"removed,omitempty"`
}

// TeleportRequest is sent on realm.host.teleport.
type TeleportRequest struct {
	Handle   game.EntityHandle `json:"handle"`
	Position game.Vector3      `json:"position"`
	Rotation game.Vector3      `json:"rotation"`
}

// HandleRequest is sent on realm.host.destroy.
type HandleRequest struct {
	Handle game.EntityHandle `json:"handle"`
}

// MapRequest is sent on realm.host.serve and realm.host.world.
type MapRequest struct {
	MapName string `json:"map_name"`
}

// HostReply is the map host's answer to every request.
type HostReply struct {
	Error  string              `json:"error,omitempty"`
	Handle game.EntityHandle   `json:"handle,omitempty"`
	World  *game.WorldSnapshot `json:"world,omitempty"`
}

// HostClient talks to the map host over the bus. Entity queries are
// answered from state the host pushes.
type HostClient struct {
	server *NatsServer

	ready    atomic.Bool
	prefabs  *registry.Set[int]
	entities *registry.Map[game.EntityHandle, EntityState]
}

func NewHostClient(server *NatsServer) *HostClient {
	return &HostClient{
		server:   server,
		prefabs:  registry.NewSet[int](),
		entities: registry.NewMap[game.EntityHandle, EntityState](),
	}
}

func (h *HostClient) Start(ctx context.Context) error {
	if err := h.server.WaitReady(ctx); err != nil {
		return nil
	}

	unsubReady, err := h.server.Subscribe(SubjectHostReady, func(_ string, data []byte) {
		var st HostState
		if err := json.Unmarshal(data, &st); err != nil {
			slog.ErrorContext(ctx, "decoding host state", "error", err)
			return
		}
		h.applyState(st)
		slog.InfoContext(ctx, "map host state", "ready", st.Ready, "map", st.MapName, "prefabs", len(st.Prefabs))
	})
	if err != nil {
		return fmt.Errorf("subscribing to host state: %w", err)
	}
	defer unsubReady()

	unsubEntity, err := h.server.Subscribe(SubjectHostEntity, func(_ string, data []byte) {
		var st EntityState
		if err := json.Unmarshal(data, &st); err != nil {
			slog.ErrorContext(ctx, "decoding entity state", "error", err)
			return
		}
		h.applyEntity(st)
	})
	if err != nil {
		return fmt.Errorf("subscribing to entity state: %w", err)
	}
	defer unsubEntity()

	<-ctx.Done()
	return nil
}

func (h *HostClient) applyState(st HostState) {
	if len(st.Prefabs) > 0 {
		h.prefabs.Clear()
		for _, p := range st.Prefabs {
			h.prefabs.Add(p)
		}
	}
	if !st.Ready {
		h.entities.Clear()
	}
	h.ready.Store(st.Ready)
}

func (h *HostClient) applyEntity(st EntityState) {
	if st.Removed {
		h.entities.Delete(st.Handle)
		return
	}
	h.entities.Update(st.Handle, func(old EntityState, exists bool) (EntityState, bool) {
		if exists && st.Storage == nil {
			st.Storage = old.Storage
		}
		return st, true
	})
}

func (h *HostClient) request(ctx context.Context, subject string, req any) (HostReply, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return HostReply{}, fmt.Errorf("encoding %s request: %w", subject, err)
	}
	out, err := h.server.Request(ctx, subject, data)
	if err != nil {
		return HostReply{}, err
	}
	var reply HostReply
	if err := json.Unmarshal(out, &reply); err != nil {
		return HostReply{}, fmt.Errorf("decoding %s reply: %w", subject, err)
	}
	if reply.Error != "" {
		return reply, errors.New(reply.Error)
	}
	return reply, nil
}

func (h *HostClient) Ready() bool {
	return h.ready.Load()
}

func (h *HostClient) TryGetEntityPrefab(entityId int) bool {
	return h.prefabs.Has(entityId)
}

func (h *HostClient) Spawn(ctx context.Context, req game.SpawnRequest) (game.EntityHandle, error) {
	reply, err := h.request(ctx, SubjectHostSpawn, req)
	if err != nil {
		return 0, fmt.Errorf("spawning %s: %w", req.Character.Id, err)
	}
	h.entities.Set(reply.Handle, EntityState{Handle: reply.Handle, Position: req.Position})
	return reply.Handle, nil
}

func (h *HostClient) Destroy(ctx context.Context, handle game.EntityHandle) error {
	if _, err := h.request(ctx, SubjectHostDestroy, HandleRequest{Handle: handle}); err != nil {
		return err
	}
	h.entities.Delete(handle)
	return nil
}

func (h *HostClient) Teleport(ctx context.Context, handle game.EntityHandle, pos, rot game.Vector3) error {
	_, err := h.request(ctx, SubjectHostTeleport, TeleportRequest{Handle: handle, Position: pos, Rotation: rot})
	return err
}

func (h *HostClient) Position(handle game.EntityHandle) (game.Vector3, bool) {
	st, ok := h.entities.Get(handle)
	return st.Position, ok
}

func (h *HostClient) StorageEntity(handle game.EntityHandle) (game.StorageEntity, bool) {
	st, ok := h.entities.Get(handle)
	if !ok || st.Storage == nil {
		return game.StorageEntity{}, false
	}
	se := *st.Storage
	se.Handle = handle
	se.Position = st.Position
	return se, true
}

func (h *HostClient) CanWarp(handle game.EntityHandle) bool {
	st, ok := h.entities.Get(handle)
	return ok && !st.Locked
}

// ServeMap asks the host to load mapName. The host reports the switch on
// realm.evt.scene once it is done.
func (h *HostClient) ServeMap(ctx context.Context, mapName string) error {
	h.ready.Store(false)
	_, err := h.request(ctx, SubjectHostServe, MapRequest{MapName: mapName})
	return err
}

func (h *HostClient) WorldSnapshot(ctx context.Context, mapName string) (*game.WorldSnapshot, error) {
	reply, err := h.request(ctx, SubjectHostWorld, MapRequest{MapName: mapName})
	if err != nil {
		return nil, err
	}
	if reply.World == nil {
		return &game.WorldSnapshot{MapName: mapName}, nil
	}
	return reply.World, nil
}
