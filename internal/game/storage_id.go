package game

import "fmt"

// StorageKind is the owner category of a storage container.
type StorageKind int

const (
	StorageKindPlayer StorageKind = iota
	StorageKindGuild
	StorageKindBuilding
)

func (k StorageKind) String() string {
	switch k {
	case StorageKindPlayer:
		return "player"
	case StorageKindGuild:
		return "guild"
	case StorageKindBuilding:
		return "building"
	default:
		return "unknown"
	}
}

func (k *StorageKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*k = StorageKindPlayer
	case "guild":
		*k = StorageKindGuild
	case "building":
		*k = StorageKindBuilding
	default:
		return fmt.Errorf("unknown storage kind: %s", text)
	}
	return nil
}

func (k StorageKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// StorageId identifies one logical storage container.
type StorageId struct {
	Kind    StorageKind `json:"kind"`
	OwnerId string      `json:"owner_id"`
}

// Key is the persistence key for the container.
func (id StorageId) Key() string {
	return fmt.Sprintf("%s-%s", id.Kind, id.OwnerId)
}

func (id StorageId) String() string {
	return id.Key()
}
