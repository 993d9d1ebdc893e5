package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestCharacterRecord_CanAccessStorage(t *testing.T) {
	char := &CharacterRecord{Id: "char-1", GuildId: 7}

	tests := map[string]struct {
		char *CharacterRecord
		id   StorageId
		exp  bool
	}{
		"own player storage":   {char: char, id: StorageId{Kind: StorageKindPlayer, OwnerId: "char-1"}, exp: true},
		"other player storage": {char: char, id: StorageId{Kind: StorageKindPlayer, OwnerId: "char-2"}, exp: false},
		"own guild storage":    {char: char, id: StorageId{Kind: StorageKindGuild, OwnerId: "7"}, exp: true},
		"other guild storage":  {char: char, id: StorageId{Kind: StorageKindGuild, OwnerId: "8"}, exp: false},
		"guildless":            {char: &CharacterRecord{Id: "c"}, id: StorageId{Kind: StorageKindGuild, OwnerId: "0"}, exp: false},
		"building deferred":    {char: char, id: StorageId{Kind: StorageKindBuilding, OwnerId: "b-1"}, exp: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "access", tt.char.CanAccessStorage(tt.id), tt.exp)
		})
	}
}

func TestCharacterRecord_Validate(t *testing.T) {
	err := (&CharacterRecord{Gold: -1}).Validate()
	testutil.AssertErrorContains(t, err, "character id is required")
	testutil.AssertErrorContains(t, err, "gold must not be negative")

	if err := (&CharacterRecord{Id: "c", Name: "Ayla"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCharacterRecord_CloneIsDeep(t *testing.T) {
	orig := &CharacterRecord{Id: "c", Inventory: []ItemStack{{ItemId: "ore", Amount: 1}}}

	cp := orig.Clone()
	cp.Inventory[0].Amount = 5
	cp.Gold = 10

	testutil.AssertEqual(t, "inventory", orig.Inventory[0].Amount, 1)
	testutil.AssertEqual(t, "gold", orig.Gold, int64(0))
}

func TestStorageId_Key(t *testing.T) {
	id := StorageId{Kind: StorageKindGuild, OwnerId: "12"}
	testutil.AssertEqual(t, "key", id.Key(), "guild-12")

	var k StorageKind
	if err := k.UnmarshalText([]byte("building")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "kind", k, StorageKindBuilding)
	testutil.AssertErrorContains(t, k.UnmarshalText([]byte("vault")), "unknown storage kind")
}
