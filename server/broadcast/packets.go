package broadcast

import (
	"github.com/dm-vev/ember/server/block/cube"
	"github.com/dm-vev/ember/server/item"
	"github.com/dm-vev/ember/server/item/inventory"
	"github.com/dm-vev/ember/server/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// blockPacket returns an UpdateBlock packet setting the block at pos.
func blockPacket(pos cube.Pos, b world.Block) *packet.UpdateBlock {
	return &packet.UpdateBlock{
		Position:          protocol.BlockPos{int32(pos[0]), int32(pos[1]), int32(pos[2])},
		NewBlockRuntimeID: uint32(b),
		Flags:             packet.BlockUpdateNetwork | packet.BlockUpdateNeighbours,
		Layer:             0,
	}
}

// equipmentPacket returns the packet showing the Equipment e of an entity to
// other clients.
func equipmentPacket(id world.EntityID, e inventory.Equipment, inv *inventory.Inventory) packet.Packet {
	switch e {
	case inventory.MainHand:
		held := inv.HeldSlot()
		return &packet.MobEquipment{
			EntityRuntimeID: uint64(id),
			NewItem:         instanceFromStack(inv.Equipment(inventory.MainHand)),
			InventorySlot:   byte(held),
			HotBarSlot:      byte(held),
			WindowID:        protocol.WindowIDInventory,
		}
	case inventory.OffHand:
		return &packet.MobEquipment{
			EntityRuntimeID: uint64(id),
			NewItem:         instanceFromStack(inv.Equipment(inventory.OffHand)),
			WindowID:        protocol.WindowIDOffHand,
		}
	}
	return &packet.MobArmourEquipment{
		EntityRuntimeID: uint64(id),
		Helmet:          instanceFromStack(inv.Equipment(inventory.Helmet)),
		Chestplate:      instanceFromStack(inv.Equipment(inventory.Chestplate)),
		Leggings:        instanceFromStack(inv.Equipment(inventory.Leggings)),
		Boots:           instanceFromStack(inv.Equipment(inventory.Boots)),
	}
}

// slotPacket returns an InventorySlot packet updating a slot of the
// inventory of the client itself.
func slotPacket(slot int, s item.Stack) *packet.InventorySlot {
	window, index := windowSlot(slot)
	return &packet.InventorySlot{
		WindowID: window,
		Slot:     index,
		NewItem:  instanceFromStack(s),
	}
}

// windowSlot translates an inventory slot to the window and slot the client
// knows it under.
func windowSlot(slot int) (window uint32, index uint32) {
	switch {
	case slot == 0:
		return protocol.WindowIDUI, 50
	case slot < inventory.SlotHelmet:
		return protocol.WindowIDUI, uint32(27 + slot)
	case slot <= inventory.SlotBoots:
		return protocol.WindowIDArmour, uint32(slot - inventory.SlotHelmet)
	case slot == inventory.SlotOffHand:
		return protocol.WindowIDOffHand, 0
	case slot >= inventory.HotbarOffset:
		return protocol.WindowIDInventory, uint32(slot - inventory.HotbarOffset)
	}
	return protocol.WindowIDInventory, uint32(slot)
}

// instanceFromStack converts an item.Stack to its network ItemInstance.
func instanceFromStack(s item.Stack) protocol.ItemInstance {
	if s.Empty() {
		return protocol.ItemInstance{}
	}
	return protocol.ItemInstance{
		Stack: protocol.ItemStack{
			ItemType: protocol.ItemType{
				NetworkID:     s.NetworkID(),
				MetadataValue: uint32(s.Meta()),
			},
			HasNetworkID: true,
			Count:        uint16(s.Count()),
		},
	}
}

// weatherPackets returns the level events that show the weather w.
func weatherPackets(w world.Weather) []packet.Packet {
	rain, thunder := int32(packet.LevelEventStopRaining), int32(packet.LevelEventStopThunderstorm)
	switch w {
	case world.WeatherRain:
		rain = packet.LevelEventStartRaining
	case world.WeatherThunder:
		rain, thunder = packet.LevelEventStartRaining, packet.LevelEventStartThunderstorm
	}
	return []packet.Packet{
		&packet.LevelEvent{EventType: rain, EventData: weatherIntensity(rain)},
		&packet.LevelEvent{EventType: thunder, EventData: weatherIntensity(thunder)},
	}
}

func weatherIntensity(event int32) int32 {
	if event == packet.LevelEventStartRaining || event == packet.LevelEventStartThunderstorm {
		return 65535
	}
	return 0
}
