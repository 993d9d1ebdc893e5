package rules

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/game"
)

// GuildRole is one rank of a guild. Index 0 is always the leader's role.
type GuildRole struct {
	Name            string `json:"name"`
	CanInvite       bool   `json:"can_invite"`
	CanKick         bool   `json:"can_kick"`
	CanUseStorage   bool   `json:"can_use_storage"`
	ShareExpPercent int    `json:"share_exp_percent"`
}

// StorageLimits bounds a container. Zero means unlimited.
type StorageLimits struct {
	WeightLimit float64 `json:"weight_limit"`
	SlotLimit   int     `json:"slot_limit"`
}

// CashShopItem is a catalog entry bought with cash.
type CashShopItem struct {
	Id        string  `json:"id"`
	ItemId    string  `json:"item_id"`
	Amount    int     `json:"amount"`
	MaxStack  int     `json:"max_stack"`
	Weight    float64 `json:"weight"`
	SellPrice int64   `json:"sell_price"`
}

// CashPackage grants cash once a purchase receipt is validated.
type CashPackage struct {
	Id   string `json:"id"`
	Cash int64  `json:"cash"`
}

// Rules supplies fee and limit constants to the gameplay services.
type Rules struct {
	DepositFeePercent  int `json:"deposit_fee_percent"`
	WithdrawFeePercent int `json:"withdraw_fee_percent"`
	MaxShareExpPercent int `json:"max_share_exp_percent"`

	CreateGuildGold       int64       `json:"create_guild_gold"`
	MinGuildNameLength    int         `json:"min_guild_name_length"`
	MaxGuildNameLength    int         `json:"max_guild_name_length"`
	MaxGuildMembers       int         `json:"max_guild_members"`
	MaxGuildMessageLength int         `json:"max_guild_message_length"`
	GuildRoles            []GuildRole `json:"guild_roles"`
	MaxPartyMembers       int         `json:"max_party_members"`

	// PartyLeaderLeavePromotes hands a party to the next member when its
	// leader leaves. Guilds are always disbanded when their leader leaves.
	PartyLeaderLeavePromotes bool `json:"party_leader_leave_promotes"`

	PlayerStorage   StorageLimits `json:"player_storage"`
	GuildStorage    StorageLimits `json:"guild_storage"`
	BuildingStorage StorageLimits `json:"building_storage"`

	AllowStorageWithoutEntity bool `json:"allow_storage_without_entity"`

	CashShop     []CashShopItem `json:"cash_shop"`
	CashPackages []CashPackage  `json:"cash_packages"`
}

// Default returns the rules used when none are configured.
func Default() *Rules {
	return &Rules{
		DepositFeePercent:     0,
		WithdrawFeePercent:    0,
		MaxShareExpPercent:    20,
		CreateGuildGold:       1000,
		MinGuildNameLength:    2,
		MaxGuildNameLength:    16,
		MaxGuildMembers:       50,
		MaxGuildMessageLength: 140,
		GuildRoles: []GuildRole{
			{Name: "Master", CanInvite: true, CanKick: true, CanUseStorage: true},
			{Name: "Officer", CanInvite: true, CanKick: true, CanUseStorage: true},
			{Name: "Member"},
		},
		MaxPartyMembers:          8,
		PartyLeaderLeavePromotes: true,
		PlayerStorage:            StorageLimits{SlotLimit: 30},
		GuildStorage:             StorageLimits{SlotLimit: 60},
		BuildingStorage:          StorageLimits{SlotLimit: 20},
	}
}

func (r *Rules) Validate() error {
	el := errors.NewErrorList()

	if r.DepositFeePercent < 0 || r.DepositFeePercent > 100 {
		el.Add(fmt.Errorf("deposit_fee_percent must be between 0 and 100"))
	}
	if r.WithdrawFeePercent < 0 || r.WithdrawFeePercent > 100 {
		el.Add(fmt.Errorf("withdraw_fee_percent must be between 0 and 100"))
	}
	if r.MaxShareExpPercent < 0 || r.MaxShareExpPercent > 100 {
		el.Add(fmt.Errorf("max_share_exp_percent must be between 0 and 100"))
	}
	if len(r.GuildRoles) < 2 {
		el.Add(fmt.Errorf("guild_roles needs a leader role and at least one member role"))
	}
	for i, role := range r.GuildRoles {
		if role.Name == "" {
			el.Add(fmt.Errorf("guild role %d: name is required", i))
		}
		if role.ShareExpPercent > r.MaxShareExpPercent {
			el.Add(fmt.Errorf("guild role %d: share_exp_percent exceeds max_share_exp_percent", i))
		}
	}
	if r.MinGuildNameLength > r.MaxGuildNameLength {
		el.Add(fmt.Errorf("min_guild_name_length must not exceed max_guild_name_length"))
	}
	if r.MaxPartyMembers < 2 {
		el.Add(fmt.Errorf("max_party_members must be at least 2"))
	}

	seen := map[string]bool{}
	for i, it := range r.CashShop {
		if it.Id == "" || it.ItemId == "" {
			el.Add(fmt.Errorf("cash shop item %d: id and item_id are required", i))
		}
		if seen[it.Id] {
			el.Add(fmt.Errorf("cash shop item %d: duplicate id %q", i, it.Id))
		}
		seen[it.Id] = true
	}
	for i, p := range r.CashPackages {
		if p.Id == "" || p.Cash <= 0 {
			el.Add(fmt.Errorf("cash package %d: id and positive cash are required", i))
		}
	}

	return el.Err()
}

// Limits returns the configured limits for a storage kind.
func (r *Rules) Limits(kind game.StorageKind) StorageLimits {
	switch kind {
	case game.StorageKindGuild:
		return r.GuildStorage
	case game.StorageKindBuilding:
		return r.BuildingStorage
	default:
		return r.PlayerStorage
	}
}

// Role returns the guild role at index, or false if out of range.
func (r *Rules) Role(index int) (GuildRole, bool) {
	if index < 0 || index >= len(r.GuildRoles) {
		return GuildRole{}, false
	}
	return r.GuildRoles[index], true
}

// MemberRole is the role given to newly joined guild members.
func (r *Rules) MemberRole() int {
	return len(r.GuildRoles) - 1
}

// DepositFee is the fee charged on top of a deposit of amount.
func (r *Rules) DepositFee(amount int64) int64 {
	return amount * int64(r.DepositFeePercent) / 100
}

// WithdrawFee is the fee deducted from a withdrawal of amount.
func (r *Rules) WithdrawFee(amount int64) int64 {
	return amount * int64(r.WithdrawFeePercent) / 100
}

// ShopItem looks up a cash shop entry.
func (r *Rules) ShopItem(id string) (CashShopItem, bool) {
	for _, it := range r.CashShop {
		if it.Id == id {
			return it, true
		}
	}
	return CashShopItem{}, false
}

// Package looks up a cash package.
func (r *Rules) Package(id string) (CashPackage, bool) {
	for _, p := range r.CashPackages {
		if p.Id == id {
			return p, true
		}
	}
	return CashPackage{}, false
}
