package containers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-realm/internal/game"
)

// ConversionRule turns SourceAmount units of Source into Result.
type ConversionRule struct {
	Source       string         `json:"source"`
	SourceAmount int            `json:"source_amount"`
	Result       game.ItemStack `json:"result"`
}

// OverflowSink receives converted items that did not fit the storage.
type OverflowSink func(ctx context.Context, item game.ItemStack) error

// ConvertItems applies every rule to the storage as one step. A second call
// on the same storage while one is running fails with ErrConversionBusy and
// changes nothing. Results exceeding the storage's limits go to overflow.
func (c *Controller) ConvertItems(ctx context.Context, id game.StorageId, conversions []ConversionRule, overflow OverflowSink) error {
	token, ok := c.converting.TryAcquire(id)
	if !ok {
		return ErrConversionBusy
	}
	defer c.converting.Release(token)

	ct := c.container(id)
	ct.mu.Lock()
	items := game.CloneItems(ct.items)
	var spilled []game.ItemStack
	for _, conv := range conversions {
		if !game.DecreaseItems(items, conv.Source, conv.SourceAmount) {
			ct.mu.Unlock()
			return game.NewUserError(game.UIErrorItemNotFound)
		}

		result := conv.Result.Clone()
		if n := fitByWeight(items, result, ct.limits.WeightLimit); n < result.Amount {
			spill := result.Clone()
			spill.Amount = result.Amount - n
			spilled = append(spilled, spill)
			result.Amount = n
		}

		var rest game.ItemStack
		items, rest = game.IncreaseItems(items, result, ct.limits.SlotLimit)
		if !rest.Empty() {
			spilled = append(spilled, rest)
		}
	}
	ct.items = game.FillEmptySlots(items, ct.limits.SlotLimit)
	payload := StoragePayload{Storage: id, Items: game.CloneItems(ct.items), Limits: ct.limits}
	ct.mu.Unlock()

	c.replicate(ctx, ct, payload)

	for _, it := range spilled {
		if overflow == nil {
			slog.WarnContext(ctx, "dropping conversion overflow", "storage", id, "item", it.ItemId, "amount", it.Amount)
			continue
		}
		if err := overflow(ctx, it); err != nil {
			return fmt.Errorf("routing overflow for %s: %w", id, err)
		}
	}
	return nil
}

// fitByWeight returns how many units of it the list can take before reaching
// the weight limit.
func fitByWeight(items []game.ItemStack, it game.ItemStack, limit float64) int {
	if limit <= 0 || it.Weight <= 0 || it.Empty() {
		return it.Amount
	}
	free := limit - game.ItemsWeight(items)
	if free <= 0 {
		return 0
	}
	return min(it.Amount, int(free/it.Weight))
}
