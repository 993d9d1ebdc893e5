package game

import "github.com/pixil98/go-realm/internal/storage"

// ItemStack is one slot's worth of an item. The item's own layout is opaque
// to this layer and carried in Data.
type ItemStack struct {
	ItemId   string  `json:"item_id,omitempty"`
	Amount   int     `json:"amount,omitempty"`
	MaxStack int     `json:"max_stack,omitempty"`
	Weight   float64 `json:"weight,omitempty"`

	Data storage.ExtensionState `json:"data,omitempty"`
}

// Empty reports whether the slot holds nothing.
func (s ItemStack) Empty() bool {
	return s.ItemId == "" || s.Amount <= 0
}

// TotalWeight is the weight of the whole stack.
func (s ItemStack) TotalWeight() float64 {
	if s.Empty() {
		return 0
	}
	return s.Weight * float64(s.Amount)
}

// CanStackWith reports whether o may merge into s.
func (s ItemStack) CanStackWith(o ItemStack) bool {
	return !s.Empty() && !o.Empty() && s.ItemId == o.ItemId && s.Data.Equal(o.Data)
}

// Room is how many more units s can take.
func (s ItemStack) Room() int {
	max := s.MaxStack
	if max <= 0 {
		max = 1
	}
	if r := max - s.Amount; r > 0 {
		return r
	}
	return 0
}

// Clone returns a deep copy of the stack.
func (s ItemStack) Clone() ItemStack {
	s.Data = s.Data.Clone()
	return s
}

// CloneItems deep-copies an item list.
func CloneItems(items []ItemStack) []ItemStack {
	if items == nil {
		return nil
	}
	out := make([]ItemStack, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// ItemsWeight sums the weight of every stack.
func ItemsWeight(items []ItemStack) float64 {
	var w float64
	for _, it := range items {
		w += it.TotalWeight()
	}
	return w
}

// UsedSlots counts non-empty stacks.
func UsedSlots(items []ItemStack) int {
	n := 0
	for _, it := range items {
		if !it.Empty() {
			n++
		}
	}
	return n
}

// FillEmptySlots compacts the list when slotLimit is zero, otherwise pads or
// trims it to exactly slotLimit entries. Trimming only drops empty slots.
func FillEmptySlots(items []ItemStack, slotLimit int) []ItemStack {
	if slotLimit <= 0 {
		out := items[:0:0]
		for _, it := range items {
			if !it.Empty() {
				out = append(out, it)
			}
		}
		return out
	}

	out := make([]ItemStack, 0, slotLimit)
	for _, it := range items {
		if it.Empty() {
			it = ItemStack{}
		}
		out = append(out, it)
	}
	for len(out) < slotLimit {
		out = append(out, ItemStack{})
	}
	for len(out) > slotLimit {
		i := lastEmpty(out)
		if i < 0 {
			break
		}
		out = append(out[:i], out[i+1:]...)
	}
	return out
}

func lastEmpty(items []ItemStack) int {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Empty() {
			return i
		}
	}
	return -1
}

// CountItem returns the total amount of itemId across the list.
func CountItem(items []ItemStack, itemId string) int {
	n := 0
	for _, it := range items {
		if !it.Empty() && it.ItemId == itemId {
			n += it.Amount
		}
	}
	return n
}

// IncreaseItems adds it to the list, topping up matching stacks before using
// empty slots. New slots are appended only while the list is below slotLimit
// (or always when slotLimit is zero). Whatever does not fit is returned as
// the overflow stack.
func IncreaseItems(items []ItemStack, it ItemStack, slotLimit int) ([]ItemStack, ItemStack) {
	if it.Empty() {
		return items, ItemStack{}
	}
	remaining := it.Amount

	for i := range items {
		if remaining == 0 {
			break
		}
		if !items[i].CanStackWith(it) {
			continue
		}
		n := min(items[i].Room(), remaining)
		items[i].Amount += n
		remaining -= n
	}

	perStack := it.MaxStack
	if perStack <= 0 {
		perStack = 1
	}
	place := func(i int) {
		stack := it.Clone()
		stack.Amount = min(perStack, remaining)
		items[i] = stack
		remaining -= stack.Amount
	}

	for i := range items {
		if remaining == 0 {
			break
		}
		if items[i].Empty() {
			place(i)
		}
	}

	for remaining > 0 && (slotLimit <= 0 || len(items) < slotLimit) {
		items = append(items, ItemStack{})
		place(len(items) - 1)
	}

	if remaining == 0 {
		return items, ItemStack{}
	}
	overflow := it.Clone()
	overflow.Amount = remaining
	return items, overflow
}

// DecreaseItems removes amount units of itemId, taking from the last stacks
// first. It reports false, leaving items untouched, if there are not enough.
func DecreaseItems(items []ItemStack, itemId string, amount int) bool {
	if amount <= 0 || CountItem(items, itemId) < amount {
		return false
	}
	for i := len(items) - 1; i >= 0 && amount > 0; i-- {
		if items[i].Empty() || items[i].ItemId != itemId {
			continue
		}
		n := min(items[i].Amount, amount)
		items[i].Amount -= n
		amount -= n
		if items[i].Amount == 0 {
			items[i] = ItemStack{}
		}
	}
	return true
}
