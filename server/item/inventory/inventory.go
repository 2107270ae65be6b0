package inventory

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dm-vev/ember/server/item"
)

// ErrSlotOutOfRange is returned by any methods on inventory when a slot is
// passed which is not within the range of valid values for the inventory.
var ErrSlotOutOfRange = errors.New("slot is out of range: must be in range 0 <= slot < inventory.Size()")

// Inventory represents the inventory of an entity. All methods on Inventory
// are safe for concurrent use.
type Inventory struct {
	mu    sync.RWMutex
	slots []item.Stack
	held  int

	h atomic.Pointer[Handler]
}

// New creates a new inventory with the size passed. If size is 0 or lower,
// an inventory of Size slots is created.
func New(size int) *Inventory {
	if size <= 0 {
		size = Size
	}
	inv := &Inventory{slots: make([]item.Stack, size)}
	inv.Handle(nil)
	return inv
}

// Item attempts to obtain an item from a specific slot in the inventory. If
// an item was present in that slot, the item is returned and the error is
// nil. If no item was present in the slot, an empty stack is returned.
func (inv *Inventory) Item(slot int) (item.Stack, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if !inv.validSlot(slot) {
		return item.Stack{}, ErrSlotOutOfRange
	}
	return inv.slots[slot], nil
}

// SetItem sets a stack of items to a specific slot in the inventory. The
// Handler of the inventory is notified of the change.
func (inv *Inventory) SetItem(slot int, s item.Stack) error {
	inv.mu.Lock()
	if !inv.validSlot(slot) {
		inv.mu.Unlock()
		return ErrSlotOutOfRange
	}
	inv.slots[slot] = s
	inv.mu.Unlock()

	inv.Handler().HandleChange(inv, []int{slot})
	return nil
}

// SetItems sets multiple slots at once, notifying the Handler once with all
// slots changed in the order passed.
func (inv *Inventory) SetItems(items map[int]item.Stack) error {
	slots := make([]int, 0, len(items))
	for slot := range items {
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	inv.mu.Lock()
	for _, slot := range slots {
		if !inv.validSlot(slot) {
			inv.mu.Unlock()
			return fmt.Errorf("set slot %d: %w", slot, ErrSlotOutOfRange)
		}
	}
	for _, slot := range slots {
		inv.slots[slot] = items[slot]
	}
	inv.mu.Unlock()

	if len(slots) > 0 {
		inv.Handler().HandleChange(inv, slots)
	}
	return nil
}

// HeldSlot returns the hotbar slot currently held, in the range 0-8.
func (inv *Inventory) HeldSlot() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.held
}

// SetHeldSlot changes the held hotbar slot. The Handler is notified of a
// change of the slot that is now held.
func (inv *Inventory) SetHeldSlot(held int) error {
	if held < 0 || held >= HotbarSize {
		return fmt.Errorf("held slot %d: %w", held, ErrSlotOutOfRange)
	}
	inv.mu.Lock()
	inv.held = held
	inv.mu.Unlock()

	inv.Handler().HandleChange(inv, []int{HotbarOffset + held})
	return nil
}

// Equipment returns the stack held in the Equipment slot e.
func (inv *Inventory) Equipment(e Equipment) item.Stack {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	slot := e.SlotIndex(inv.held)
	if !inv.validSlot(slot) {
		return item.Stack{}
	}
	return inv.slots[slot]
}

// Size returns the amount of slots in the inventory.
func (inv *Inventory) Size() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.slots)
}

// Clear clears the entire inventory. All non-empty slots are reported to the
// Handler.
func (inv *Inventory) Clear() {
	inv.mu.Lock()
	var slots []int
	for slot, s := range inv.slots {
		if !s.Empty() {
			slots = append(slots, slot)
			inv.slots[slot] = item.Stack{}
		}
	}
	inv.mu.Unlock()

	if len(slots) > 0 {
		inv.Handler().HandleChange(inv, slots)
	}
}

// Handle assigns a Handler to an Inventory so that its methods are called
// for the respective events. Nil may be passed to set the default
// NopHandler.
func (inv *Inventory) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	h = wrapInventoryHandler(inv, h)
	inv.h.Store(&h)
}

// Handler returns the Handler currently assigned to the Inventory.
func (inv *Inventory) Handler() Handler {
	return *inv.h.Load()
}

func (inv *Inventory) validSlot(slot int) bool {
	return slot >= 0 && slot < len(inv.slots)
}
