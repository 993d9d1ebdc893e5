package game

import (
	"context"
	"fmt"
	"time"
)

// SpawnRequest asks the map host to instantiate a character entity.
type SpawnRequest struct {
	Conn          ConnectionId     `json:"conn"`
	Character     *CharacterRecord `json:"character"`
	Position      Vector3          `json:"position"`
	Rotation      Vector3          `json:"rotation"`
	MountEntityId int              `json:"mount_entity_id,omitempty"`
	SummonBuffs   []SummonBuff     `json:"summon_buffs,omitempty"`
}

// StorageEntity is a world object that exposes a storage container.
type StorageEntity struct {
	Handle   EntityHandle `json:"handle"`
	Storage  StorageId    `json:"storage"`
	Position Vector3      `json:"position"`
	Radius   float64      `json:"radius"`

	// OwnerId and Public gate access to building storages.
	OwnerId string `json:"owner_id,omitempty"`
	Public  bool   `json:"public,omitempty"`
}

// EntityService instantiates and tracks world entities. It is implemented
// by the map-hosting layer.
type EntityService interface {
	// Ready reports whether entities can be instantiated right now.
	Ready() bool
	// TryGetEntityPrefab reports whether entityId resolves to a known prefab.
	TryGetEntityPrefab(entityId int) bool
	Spawn(ctx context.Context, req SpawnRequest) (EntityHandle, error)
	Destroy(ctx context.Context, h EntityHandle) error
	Teleport(ctx context.Context, h EntityHandle, pos, rot Vector3) error
	Position(h EntityHandle) (Vector3, bool)
	StorageEntity(h EntityHandle) (StorageEntity, bool)
	// CanWarp is false while the entity is locked, e.g. in combat.
	CanWarp(h EntityHandle) bool
}

// MapHost serves maps and owns their building state.
type MapHost interface {
	ServeMap(ctx context.Context, mapName string) error
	WorldSnapshot(ctx context.Context, mapName string) (*WorldSnapshot, error)
}

// BuildingState is one placed building in a world snapshot.
type BuildingState struct {
	Id       string  `json:"id"`
	EntityId int     `json:"entity_id"`
	OwnerId  string  `json:"owner_id"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
	Health   int     `json:"health"`
}

// WorldSnapshot is the persisted building state of one map.
type WorldSnapshot struct {
	MapName   string          `json:"map_name"`
	Buildings []BuildingState `json:"buildings"`
	SavedAt   time.Time       `json:"saved_at"`
}

func (w *WorldSnapshot) Validate() error {
	if w.MapName == "" {
		return fmt.Errorf("map name is required")
	}
	return nil
}
