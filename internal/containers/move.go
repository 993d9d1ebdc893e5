package containers

import (
	"context"

	"github.com/pixil98/go-realm/internal/game"
)

// MoveItemToStorage moves amount units from the character's inventory slot
// into the storage, preferring storageIndex when that slot can take them.
func (c *Controller) MoveItemToStorage(ctx context.Context, conn game.ConnectionId, char *game.CharacterRecord, id game.StorageId, inventoryIndex, amount, storageIndex int) error {
	if err := c.checkUse(conn, char, id); err != nil {
		return err
	}
	if inventoryIndex < 0 || inventoryIndex >= len(char.Inventory) || char.Inventory[inventoryIndex].Empty() {
		return game.NewUserError(game.UIErrorInvalidItemIndex)
	}
	source := char.Inventory[inventoryIndex]
	if amount <= 0 || amount > source.Amount {
		return game.NewUserError(game.UIErrorInvalidAmount)
	}
	moving := source.Clone()
	moving.Amount = amount

	ct := c.container(id)
	ct.mu.Lock()
	if ct.limits.WeightLimit > 0 && game.ItemsWeight(ct.items)+moving.TotalWeight() > ct.limits.WeightLimit {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorStorageFull)
	}
	items, overflow := placeAt(game.CloneItems(ct.items), storageIndex, moving, ct.limits.SlotLimit)
	if !overflow.Empty() {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorStorageFull)
	}

	inventory := game.CloneItems(char.Inventory)
	inventory[inventoryIndex].Amount -= amount
	if inventory[inventoryIndex].Amount <= 0 {
		inventory[inventoryIndex] = game.ItemStack{}
	}
	char.Inventory = game.FillEmptySlots(inventory, char.InventorySlotLimit)

	ct.items = game.FillEmptySlots(items, ct.limits.SlotLimit)
	payload := StoragePayload{Storage: id, Items: game.CloneItems(ct.items), Limits: ct.limits}
	ct.mu.Unlock()

	c.replicate(ctx, ct, payload)
	return nil
}

// MoveItemFromStorage moves amount units from a storage slot into the
// character's inventory, preferring inventoryIndex when that slot can take
// them.
func (c *Controller) MoveItemFromStorage(ctx context.Context, conn game.ConnectionId, char *game.CharacterRecord, id game.StorageId, storageIndex, amount, inventoryIndex int) error {
	if err := c.checkUse(conn, char, id); err != nil {
		return err
	}

	ct := c.container(id)
	ct.mu.Lock()
	if storageIndex < 0 || storageIndex >= len(ct.items) || ct.items[storageIndex].Empty() {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorInvalidItemIndex)
	}
	source := ct.items[storageIndex]
	if amount <= 0 || amount > source.Amount {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorInvalidAmount)
	}
	moving := source.Clone()
	moving.Amount = amount

	if char.InventoryWeightLimit > 0 && game.ItemsWeight(char.Inventory)+moving.TotalWeight() > char.InventoryWeightLimit {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorWillOverwhelming)
	}
	inventory, overflow := placeAt(game.CloneItems(char.Inventory), inventoryIndex, moving, char.InventorySlotLimit)
	if !overflow.Empty() {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorWillOverwhelming)
	}
	char.Inventory = game.FillEmptySlots(inventory, char.InventorySlotLimit)

	items := game.CloneItems(ct.items)
	items[storageIndex].Amount -= amount
	if items[storageIndex].Amount <= 0 {
		items[storageIndex] = game.ItemStack{}
	}
	ct.items = game.FillEmptySlots(items, ct.limits.SlotLimit)
	payload := StoragePayload{Storage: id, Items: game.CloneItems(ct.items), Limits: ct.limits}
	ct.mu.Unlock()

	c.replicate(ctx, ct, payload)
	return nil
}

// SwapOrMergeItem merges the stack at fromIndex into toIndex when they stack,
// otherwise swaps the two slots.
func (c *Controller) SwapOrMergeItem(ctx context.Context, conn game.ConnectionId, char *game.CharacterRecord, id game.StorageId, fromIndex, toIndex int) error {
	if err := c.checkUse(conn, char, id); err != nil {
		return err
	}

	ct := c.container(id)
	ct.mu.Lock()
	if fromIndex < 0 || fromIndex >= len(ct.items) || toIndex < 0 || toIndex >= len(ct.items) || ct.items[fromIndex].Empty() {
		ct.mu.Unlock()
		return game.NewUserError(game.UIErrorInvalidItemIndex)
	}
	if fromIndex == toIndex {
		ct.mu.Unlock()
		return nil
	}

	items := game.CloneItems(ct.items)
	from, to := items[fromIndex], items[toIndex]
	if to.CanStackWith(from) && to.Room() > 0 {
		n := min(to.Room(), from.Amount)
		items[toIndex].Amount += n
		items[fromIndex].Amount -= n
		if items[fromIndex].Amount <= 0 {
			items[fromIndex] = game.ItemStack{}
		}
	} else {
		items[fromIndex], items[toIndex] = to, from
	}
	ct.items = game.FillEmptySlots(items, ct.limits.SlotLimit)
	payload := StoragePayload{Storage: id, Items: game.CloneItems(ct.items), Limits: ct.limits}
	ct.mu.Unlock()

	c.replicate(ctx, ct, payload)
	return nil
}

// checkUse requires the connection to have the storage open. Guild storages
// additionally require a role allowed to use them.
func (c *Controller) checkUse(conn game.ConnectionId, char *game.CharacterRecord, id game.StorageId) error {
	if char == nil {
		return game.NewUserError(game.UIErrorNotLoggedIn)
	}
	if !c.IsViewing(conn, id) {
		return game.NewUserError(game.UIErrorCannotAccess)
	}
	if id.Kind == game.StorageKindGuild {
		role, ok := c.rules.Role(char.GuildRole)
		if !ok || !role.CanUseStorage {
			return game.NewUserError(game.UIErrorNoPermission)
		}
	}
	return nil
}

// placeAt puts it into items[index] when that slot is empty or can absorb
// the whole stack, and otherwise spreads it over the list.
func placeAt(items []game.ItemStack, index int, it game.ItemStack, slotLimit int) ([]game.ItemStack, game.ItemStack) {
	if index >= 0 && index < len(items) {
		target := items[index]
		switch {
		case target.Empty():
			items[index] = it
			return items, game.ItemStack{}
		case target.CanStackWith(it) && target.Room() >= it.Amount:
			items[index].Amount += it.Amount
			return items, game.ItemStack{}
		}
	}
	return game.IncreaseItems(items, it, slotLimit)
}
