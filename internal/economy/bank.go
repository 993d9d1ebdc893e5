package economy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/registry"
	"github.com/pixil98/go-realm/internal/rules"
	"github.com/pixil98/go-realm/internal/storage"
)

// Account is the per-user bank: gold shared by the user's characters and
// cash-shop currency.
type Account struct {
	UserId string `json:"user_id"`
	Gold   int64  `json:"gold"`
	Cash   int64  `json:"cash"`
}

func (a *Account) Validate() error {
	if a.UserId == "" {
		return fmt.Errorf("user id is required")
	}
	if a.Gold < 0 || a.Cash < 0 {
		return fmt.Errorf("balances must not be negative")
	}
	return nil
}

// Characters updates online character records.
type Characters interface {
	UpdateCharacter(characterId string, fn func(*game.CharacterRecord) error) error
}

// Guilds owns guild membership and guild gold.
type Guilds interface {
	GuildRole(characterId string) (int, rules.GuildRole, bool)
	AdjustGuildGold(ctx context.Context, guildId int, delta int64) (int64, error)
}

// ReceiptValidator confirms a cash package purchase with the store front.
type ReceiptValidator interface {
	ValidateReceipt(ctx context.Context, userId, packageId, receipt string) error
}

// Balance is returned by gold operations.
type Balance struct {
	CharacterGold int64 `json:"character_gold"`
	BankGold      int64 `json:"bank_gold"`
}

// Bank moves gold between characters, user accounts and guild banks, and
// sells cash shop items.
type Bank struct {
	rules      *rules.Rules
	characters Characters
	guilds     Guilds
	receipts   ReceiptValidator
	store      storage.Storer[*Account]

	accounts *registry.Map[string, Account]
}

func NewBank(r *rules.Rules, characters Characters, guilds Guilds, opts ...BankOpt) *Bank {
	b := &Bank{
		rules:      r,
		characters: characters,
		guilds:     guilds,
		receipts:   nonEmptyReceipt{},
		accounts:   registry.NewMap[string, Account](),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Account returns the user's bank account.
func (b *Bank) Account(userId string) Account {
	a, ok := b.accounts.Get(userId)
	if ok {
		return a
	}
	return b.load(userId)
}

func (b *Bank) load(userId string) Account {
	if b.store != nil {
		if a := b.store.Get(userId); a != nil {
			return *a
		}
	}
	return Account{UserId: userId}
}

// updateAccount applies fn to the user's account and persists the result.
// The account is unchanged when fn fails.
func (b *Bank) updateAccount(userId string, fn func(a *Account) error) (Account, error) {
	var out Account
	var err error
	b.accounts.Update(userId, func(a Account, exists bool) (Account, bool) {
		if !exists {
			a = b.load(userId)
		}
		next := a
		if err = fn(&next); err != nil {
			return a, exists
		}
		if b.store != nil {
			if err = b.store.Save(userId, &next); err != nil {
				err = fmt.Errorf("saving account %s: %w", userId, err)
				return a, exists
			}
		}
		out = next
		return next, true
	})
	return out, err
}

// DepositUserGold moves amount from the character into the user's bank,
// charging the deposit fee on top.
func (b *Bank) DepositUserGold(ctx context.Context, characterId string, amount int64) (Balance, error) {
	if amount <= 0 {
		return Balance{}, game.NewUserError(game.UIErrorInvalidAmount)
	}
	cost := amount + b.rules.DepositFee(amount)

	var bal Balance
	err := b.characters.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		if rec.Gold < cost {
			return game.NewUserError(game.UIErrorNotEnoughGoldDep)
		}
		acct, err := b.updateAccount(rec.UserId, func(a *Account) error {
			a.Gold += amount
			return nil
		})
		if err != nil {
			return err
		}
		rec.Gold -= cost
		bal = Balance{CharacterGold: rec.Gold, BankGold: acct.Gold}
		return nil
	})
	return bal, loginError(err)
}

// WithdrawUserGold moves amount out of the user's bank. The character
// receives amount less the withdraw fee.
func (b *Bank) WithdrawUserGold(ctx context.Context, characterId string, amount int64) (Balance, error) {
	if amount <= 0 {
		return Balance{}, game.NewUserError(game.UIErrorInvalidAmount)
	}
	received := amount - b.rules.WithdrawFee(amount)

	var bal Balance
	err := b.characters.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		acct, err := b.updateAccount(rec.UserId, func(a *Account) error {
			if a.Gold < amount {
				return game.NewUserError(game.UIErrorNotEnoughGoldWd)
			}
			a.Gold -= amount
			return nil
		})
		if err != nil {
			return err
		}
		rec.Gold += received
		bal = Balance{CharacterGold: rec.Gold, BankGold: acct.Gold}
		return nil
	})
	return bal, loginError(err)
}

// DepositGuildGold moves amount from the character into the guild bank,
// charging the deposit fee on top.
func (b *Bank) DepositGuildGold(ctx context.Context, characterId string, amount int64) (Balance, error) {
	if amount <= 0 {
		return Balance{}, game.NewUserError(game.UIErrorInvalidAmount)
	}
	guildId, _, ok := b.guilds.GuildRole(characterId)
	if !ok {
		return Balance{}, game.NewUserError(game.UIErrorNotJoinedGuild)
	}
	cost := amount + b.rules.DepositFee(amount)

	var bal Balance
	err := b.characters.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		if rec.Gold < cost {
			return game.NewUserError(game.UIErrorNotEnoughGoldDep)
		}
		rec.Gold -= cost
		bal.CharacterGold = rec.Gold
		return nil
	})
	if err != nil {
		return Balance{}, loginError(err)
	}

	// The guild is credited after the character lock is released; the
	// coordinator takes character locks while holding guild locks.
	guildGold, err := b.guilds.AdjustGuildGold(ctx, guildId, amount)
	if err != nil {
		b.refund(ctx, characterId, cost)
		return Balance{}, err
	}
	bal.BankGold = guildGold
	return bal, nil
}

// WithdrawGuildGold moves amount out of the guild bank. Only roles allowed
// to use guild storage may withdraw.
func (b *Bank) WithdrawGuildGold(ctx context.Context, characterId string, amount int64) (Balance, error) {
	if amount <= 0 {
		return Balance{}, game.NewUserError(game.UIErrorInvalidAmount)
	}
	guildId, role, ok := b.guilds.GuildRole(characterId)
	if !ok {
		return Balance{}, game.NewUserError(game.UIErrorNotJoinedGuild)
	}
	if !role.CanUseStorage {
		return Balance{}, game.NewUserError(game.UIErrorNoPermission)
	}

	guildGold, err := b.guilds.AdjustGuildGold(ctx, guildId, -amount)
	if err != nil {
		return Balance{}, err
	}

	received := amount - b.rules.WithdrawFee(amount)
	bal := Balance{BankGold: guildGold}
	err = b.characters.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		rec.Gold += received
		bal.CharacterGold = rec.Gold
		return nil
	})
	if err != nil {
		if _, rerr := b.guilds.AdjustGuildGold(ctx, guildId, amount); rerr != nil {
			slog.ErrorContext(ctx, "refunding guild withdrawal", "guild", guildId, "amount", amount, "error", rerr)
		}
		return Balance{}, loginError(err)
	}
	return bal, nil
}

func (b *Bank) refund(ctx context.Context, characterId string, amount int64) {
	err := b.characters.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		rec.Gold += amount
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "refunding character gold", "character", characterId, "amount", amount, "error", err)
	}
}

// CashShopBuy buys amount of a cash shop entry into the character's
// inventory.
func (b *Bank) CashShopBuy(ctx context.Context, characterId, shopItemId string, amount int) (Account, error) {
	item, ok := b.rules.ShopItem(shopItemId)
	if !ok {
		return Account{}, game.NewUserError(game.UIErrorItemNotFound)
	}
	if amount <= 0 {
		return Account{}, game.NewUserError(game.UIErrorInvalidAmount)
	}
	price := item.SellPrice * int64(amount)
	stack := game.ItemStack{
		ItemId:   item.ItemId,
		Amount:   item.Amount * amount,
		MaxStack: item.MaxStack,
		Weight:   item.Weight,
	}

	var acct Account
	err := b.characters.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		if rec.InventoryWeightLimit > 0 && game.ItemsWeight(rec.Inventory)+stack.TotalWeight() > rec.InventoryWeightLimit {
			return game.NewUserError(game.UIErrorWillOverwhelming)
		}
		inventory, overflow := game.IncreaseItems(game.CloneItems(rec.Inventory), stack, rec.InventorySlotLimit)
		if !overflow.Empty() {
			return game.NewUserError(game.UIErrorWillOverwhelming)
		}

		var err error
		acct, err = b.updateAccount(rec.UserId, func(a *Account) error {
			if a.Cash < price {
				return game.NewUserError(game.UIErrorNotEnoughCash)
			}
			a.Cash -= price
			return nil
		})
		if err != nil {
			return err
		}
		rec.Inventory = game.FillEmptySlots(inventory, rec.InventorySlotLimit)
		return nil
	})
	if err != nil {
		return Account{}, loginError(err)
	}
	slog.InfoContext(ctx, "cash shop purchase", "character", characterId, "item", shopItemId, "amount", amount, "price", price)
	return acct, nil
}

// CashPackageBuyValidation credits a cash package once its receipt checks out.
func (b *Bank) CashPackageBuyValidation(ctx context.Context, userId, packageId, receipt string) (Account, error) {
	pkg, ok := b.rules.Package(packageId)
	if !ok {
		return Account{}, game.NewUserError(game.UIErrorItemNotFound)
	}
	if err := b.receipts.ValidateReceipt(ctx, userId, packageId, receipt); err != nil {
		slog.WarnContext(ctx, "rejected cash package receipt", "user", userId, "package", packageId, "error", err)
		return Account{}, game.NewUserError(game.UIErrorInvalidData)
	}
	return b.updateAccount(userId, func(a *Account) error {
		a.Cash += pkg.Cash
		return nil
	})
}

type nonEmptyReceipt struct{}

func (nonEmptyReceipt) ValidateReceipt(_ context.Context, _, _, receipt string) error {
	if receipt == "" {
		return errors.New("empty receipt")
	}
	return nil
}

func loginError(err error) error {
	if errors.Is(err, game.ErrPlayerNotFound) {
		return game.NewUserError(game.UIErrorNotLoggedIn)
	}
	return err
}
