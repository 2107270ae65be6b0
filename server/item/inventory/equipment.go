package inventory

// Slot layout of an entity inventory.
const (
	SlotHelmet     = 5
	SlotChestplate = 6
	SlotLeggings   = 7
	SlotBoots      = 8
	SlotOffHand    = 45

	// HotbarOffset is the slot index of the first hotbar slot.
	HotbarOffset = 36
	// HotbarSize is the number of hotbar slots.
	HotbarSize = 9

	// Size is the number of slots of an entity inventory.
	Size = 46
)

// Equipment is a slot of an entity whose contents are visible to other
// clients.
type Equipment uint8

const (
	MainHand Equipment = iota
	OffHand
	Boots
	Leggings
	Chestplate
	Helmet
)

// AllEquipment holds every Equipment in the order it is shown to a client
// that starts viewing an entity.
var AllEquipment = [...]Equipment{MainHand, Boots, Leggings, Chestplate, Helmet, OffHand}

// SlotIndex returns the inventory slot holding the Equipment, where held is
// the held hotbar slot of the entity.
func (e Equipment) SlotIndex(held int) int {
	switch e {
	case MainHand:
		return HotbarOffset + held
	case OffHand:
		return SlotOffHand
	case Boots:
		return SlotBoots
	case Leggings:
		return SlotLeggings
	case Chestplate:
		return SlotChestplate
	default:
		return SlotHelmet
	}
}

// String ...
func (e Equipment) String() string {
	switch e {
	case MainHand:
		return "main_hand"
	case OffHand:
		return "off_hand"
	case Boots:
		return "boots"
	case Leggings:
		return "leggings"
	case Chestplate:
		return "chestplate"
	default:
		return "helmet"
	}
}

// Armour checks if the Equipment is an armour piece.
func (e Equipment) Armour() bool {
	return e >= Boots && e <= Helmet
}

// EquipmentFromSlot returns the Equipment fixed to an inventory slot. Only
// armour slots and the off hand map to Equipment: hotbar slots depend on the
// held slot, see SlotEquipment.
func EquipmentFromSlot(slot int) (Equipment, bool) {
	switch slot {
	case SlotHelmet:
		return Helmet, true
	case SlotChestplate:
		return Chestplate, true
	case SlotLeggings:
		return Leggings, true
	case SlotBoots:
		return Boots, true
	case SlotOffHand:
		return OffHand, true
	}
	return 0, false
}

// SlotEquipment returns the Equipment that the slot passed holds for an
// entity with held as held hotbar slot. The slot of the held item maps to
// MainHand, other hotbar and main inventory slots do not map to anything.
func SlotEquipment(slot, held int) (Equipment, bool) {
	if slot >= HotbarOffset && slot-HotbarOffset == held {
		return MainHand, true
	}
	return EquipmentFromSlot(slot)
}
