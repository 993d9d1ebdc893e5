package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/storage"
)

// CharacterRecord holds a character's persistent attributes. While spawned it
// is owned by the connection's session; otherwise by the persistence store.
type CharacterRecord struct {
	Id     string `json:"id"`
	UserId string `json:"user_id"`
	Name   string `json:"name"`

	// EntityId is the prefab the map host instantiates for this character.
	EntityId int `json:"entity_id"`

	MapName  string  `json:"map_name"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`

	Level      int   `json:"level"`
	Exp        int64 `json:"exp"`
	Gold       int64 `json:"gold"`
	StatPoint  int   `json:"stat_point"`
	SkillPoint int   `json:"skill_point"`

	Inventory            []ItemStack `json:"inventory,omitempty"`
	InventoryWeightLimit float64     `json:"inventory_weight_limit,omitempty"`
	InventorySlotLimit   int         `json:"inventory_slot_limit,omitempty"`

	GuildId   int `json:"guild_id,omitempty"`
	GuildRole int `json:"guild_role,omitempty"`
	PartyId   int `json:"party_id,omitempty"`

	MountEntityId int `json:"mount_entity_id,omitempty"`

	// Permission is the character's privilege level; 0 is a regular player.
	Permission int `json:"permission,omitempty"`

	storage.ExtensionState `json:"ext,omitempty"`
}

func (c *CharacterRecord) Validate() error {
	el := errors.NewErrorList()
	if c.Id == "" {
		el.Add(fmt.Errorf("character id is required"))
	}
	if c.Name == "" {
		el.Add(fmt.Errorf("character name is required"))
	}
	if c.Gold < 0 {
		el.Add(fmt.Errorf("gold must not be negative"))
	}
	return el.Err()
}

// CanAccessStorage reports whether the character owns, or belongs to the
// owner of, the storage. Building storages are checked against the building
// entity by the storage controller.
func (c *CharacterRecord) CanAccessStorage(id StorageId) bool {
	switch id.Kind {
	case StorageKindPlayer:
		return id.OwnerId == c.Id
	case StorageKindGuild:
		return c.GuildId != 0 && id.OwnerId == fmt.Sprintf("%d", c.GuildId)
	case StorageKindBuilding:
		return true
	default:
		return false
	}
}

// Fingerprint captures the attributes whose change makes a periodic save worthwhile.
type Fingerprint struct {
	Level      int
	Exp        int64
	Gold       int64
	StatPoint  int
	SkillPoint int
}

// Fingerprint returns the character's current dirty-tracking fingerprint.
func (c *CharacterRecord) Fingerprint() Fingerprint {
	return Fingerprint{
		Level:      c.Level,
		Exp:        c.Exp,
		Gold:       c.Gold,
		StatPoint:  c.StatPoint,
		SkillPoint: c.SkillPoint,
	}
}

// Clone returns a deep copy of the record.
func (c *CharacterRecord) Clone() *CharacterRecord {
	cp := *c
	cp.Inventory = CloneItems(c.Inventory)
	cp.ExtensionState = c.ExtensionState.Clone()
	return &cp
}

// SummonBuff is an active buff on a summon or mount, restored on spawn.
type SummonBuff struct {
	SummonId  string  `json:"summon_id"`
	BuffId    string  `json:"buff_id"`
	Level     int     `json:"level"`
	Remaining float64 `json:"remaining"`
}

// SummonBuffs is the persisted summon buff list of one character.
type SummonBuffs struct {
	CharacterId string       `json:"character_id"`
	Buffs       []SummonBuff `json:"buffs"`
}

func (s *SummonBuffs) Validate() error {
	if s.CharacterId == "" {
		return fmt.Errorf("character id is required")
	}
	return nil
}

// EnterGameLocation is the last known placement of a character, used to pick
// a spawn point and to resume after an interrupted warp.
type EnterGameLocation struct {
	MapName  string  `json:"map_name"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
	SafeArea string  `json:"safe_area,omitempty"`
}

func (l *EnterGameLocation) Validate() error {
	if l.MapName == "" {
		return fmt.Errorf("map name is required")
	}
	return nil
}

// PendingSpawn is a ready client waiting for the world to accept entities.
type PendingSpawn struct {
	Conn      ConnectionId
	Character *CharacterRecord
	Buffs     []SummonBuff
}
