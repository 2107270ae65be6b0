package broadcast

import (
	"github.com/dm-vev/ember/server/item/inventory"
	"github.com/dm-vev/ember/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Client is a connected client that packets may be broadcast to.
type Client interface {
	// ID returns the unique ID of the client.
	ID() uuid.UUID
	// Alive checks if the client is still connected. Packets are never sent
	// to clients that are not alive.
	Alive() bool
	// Entity returns the entity controlled by the client, or 0 if none.
	Entity() world.EntityID
	// ChunkLoaded checks if the client currently has the chunk at pos loaded.
	ChunkLoaded(pos world.ChunkPos) bool
	// EntityVisible checks if the client can currently see the entity e.
	EntityVisible(e world.EntityID) bool
	// WritePacket writes a packet to the client. It does not block on the
	// network and does not report errors.
	WritePacket(pk packet.Packet)
}

// EntityStore provides the state of entities needed to project changes to
// clients.
type EntityStore interface {
	// Alive checks if the entity e is still alive.
	Alive(e world.EntityID) bool
	// Inventory returns the inventory of the entity e, if it has one.
	Inventory(e world.EntityID) (*inventory.Inventory, bool)
	// Controller returns the ID of the client controlling the entity e.
	Controller(e world.EntityID) (uuid.UUID, bool)
}
