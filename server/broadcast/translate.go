package broadcast

import (
	"github.com/dm-vev/ember/server/block/cube"
	"github.com/dm-vev/ember/server/item/inventory"
	"github.com/dm-vev/ember/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// BlockUpdate sends the block b at pos to every client that has the chunk of
// pos loaded, except the client exclude.
func (b *Broadcaster) BlockUpdate(pos cube.Pos, bl world.Block, exclude uuid.UUID) {
	b.ChunkScoped(world.ChunkPosFromBlockPos(pos), exclude, blockPacket(pos, bl))
}

// InventoryUpdate projects a change of the inventory of an entity to
// clients. Slots holding equipment are shown to every client viewing the
// entity except its controller, and every slot changed is sent to the
// controller directly. Updates of dead entities are dropped.
func (b *Broadcaster) InventoryUpdate(ev inventory.UpdateEvent) {
	if !b.conf.Store.Alive(ev.Entity) {
		b.conf.Metrics.IncSkipped(PolicyEntity)
		return
	}
	inv, ok := b.conf.Store.Inventory(ev.Entity)
	if !ok {
		return
	}
	owner, controlled := b.conf.Store.Controller(ev.Entity)
	held := inv.HeldSlot()

	for _, slot := range ev.Slots {
		if e, ok := inventory.SlotEquipment(slot, held); ok {
			b.EntityScoped(ev.Entity, owner, equipmentPacket(ev.Entity, e, inv))
		}
		if controlled {
			s, err := inv.Item(slot)
			if err != nil {
				continue
			}
			b.Direct(owner, slotPacket(slot, s))
		}
	}
}

// EntityShown sends all equipment of the entity e to the client passed, which
// just started viewing the entity.
func (b *Broadcaster) EntityShown(e world.EntityID, client uuid.UUID) {
	if !b.conf.Store.Alive(e) {
		b.conf.Metrics.IncSkipped(PolicyDirect)
		return
	}
	inv, ok := b.conf.Store.Inventory(e)
	if !ok {
		return
	}
	pks := make([]packet.Packet, 0, len(inventory.AllEquipment))
	for _, eq := range inventory.AllEquipment {
		pks = append(pks, equipmentPacket(e, eq, inv))
	}
	b.Direct(client, pks...)
}

// ChunkShown shows every entity in the chunk at pos to the client passed,
// which just loaded the chunk. The client's own entity is skipped.
func (b *Broadcaster) ChunkShown(pos world.ChunkPos, client uuid.UUID) {
	if b.conf.Index == nil {
		return
	}
	c, ok := b.conf.Registry.Client(client)
	if !ok || !c.Alive() {
		return
	}
	for _, e := range b.conf.Index.EntitiesInChunk(pos) {
		if e == c.Entity() {
			continue
		}
		b.EntityShown(e, client)
	}
}

// WeatherChange sends the weather to every connected client except the
// client exclude.
func (b *Broadcaster) WeatherChange(to world.Weather, exclude uuid.UUID) {
	b.Global(exclude, weatherPackets(to)...)
}

// BroadcastWeather sends the weather to every connected client.
func (b *Broadcaster) BroadcastWeather(to world.Weather) {
	b.conf.Log.Debug("Broadcasting weather.", "weather", to, "clients", b.conf.Registry.Len())
	b.WeatherChange(to, uuid.Nil)
}

// WeatherTo sends the weather to the client passed only, such as when it
// joins.
func (b *Broadcaster) WeatherTo(client uuid.UUID, to world.Weather) {
	b.Direct(client, weatherPackets(to)...)
}
