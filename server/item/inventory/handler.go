package inventory

import "github.com/dm-vev/ember/server/world"

// Handler is a type that may be used to handle changes to an Inventory.
// Handlers are called after the change was made, outside of the lock of the
// Inventory.
type Handler interface {
	// HandleChange handles a change of the slots passed.
	HandleChange(inv *Inventory, slots []int)
}

// NopHandler is an implementation of Handler that does not run any code in
// any of its methods. It is the default Handler of an Inventory.
type NopHandler struct{}

func (NopHandler) HandleChange(*Inventory, []int) {}

// UpdateEvent describes a change of one or more slots of the inventory of an
// entity. It is passed to the broadcast subsystem to project the change to
// clients.
type UpdateEvent struct {
	// Entity is the runtime ID of the entity owning the inventory.
	Entity world.EntityID
	// Slots are the slots that changed, in order.
	Slots []int
}
