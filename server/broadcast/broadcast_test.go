package broadcast

import (
	"sync"
	"testing"

	"github.com/dm-vev/ember/server/block/cube"
	"github.com/dm-vev/ember/server/item"
	"github.com/dm-vev/ember/server/item/inventory"
	"github.com/dm-vev/ember/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// fakeClient records every packet written to it.
type fakeClient struct {
	id      uuid.UUID
	entity  world.EntityID
	dead    bool
	chunks  map[world.ChunkPos]bool
	visible map[world.EntityID]bool

	mu  sync.Mutex
	pks []packet.Packet
}

func newFakeClient() *fakeClient {
	return &fakeClient{id: uuid.New(), chunks: map[world.ChunkPos]bool{}, visible: map[world.EntityID]bool{}}
}

func (c *fakeClient) ID() uuid.UUID                       { return c.id }
func (c *fakeClient) Alive() bool                         { return !c.dead }
func (c *fakeClient) Entity() world.EntityID              { return c.entity }
func (c *fakeClient) ChunkLoaded(pos world.ChunkPos) bool { return c.chunks[pos] }
func (c *fakeClient) EntityVisible(e world.EntityID) bool { return c.visible[e] }
func (c *fakeClient) WritePacket(pk packet.Packet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pks = append(c.pks, pk)
}

func (c *fakeClient) packets() []packet.Packet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]packet.Packet(nil), c.pks...)
}

// fakeStore is a map backed EntityStore.
type fakeStore struct {
	alive       map[world.EntityID]bool
	inventories map[world.EntityID]*inventory.Inventory
	controllers map[world.EntityID]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		alive:       map[world.EntityID]bool{},
		inventories: map[world.EntityID]*inventory.Inventory{},
		controllers: map[world.EntityID]uuid.UUID{},
	}
}

func (s *fakeStore) add(e world.EntityID, controller uuid.UUID) *inventory.Inventory {
	inv := inventory.New(0)
	s.alive[e] = true
	s.inventories[e] = inv
	if controller != uuid.Nil {
		s.controllers[e] = controller
	}
	return inv
}

func (s *fakeStore) Alive(e world.EntityID) bool { return s.alive[e] }
func (s *fakeStore) Inventory(e world.EntityID) (*inventory.Inventory, bool) {
	inv, ok := s.inventories[e]
	return inv, ok
}
func (s *fakeStore) Controller(e world.EntityID) (uuid.UUID, bool) {
	id, ok := s.controllers[e]
	return id, ok
}

func setup(t *testing.T, clients ...*fakeClient) (*Broadcaster, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	b := Config{Store: store, Index: world.NewChunkEntities(0), Metrics: NewMetrics()}.New()
	for _, c := range clients {
		b.Registry().Add(c)
	}
	return b, store
}

func countEquipment(pks []packet.Packet) (mainHand, offHand, armour int) {
	for _, pk := range pks {
		switch pk := pk.(type) {
		case *packet.MobEquipment:
			if pk.WindowID == protocol.WindowIDOffHand {
				offHand++
			} else {
				mainHand++
			}
		case *packet.MobArmourEquipment:
			armour++
		}
	}
	return
}

func TestChunkScoped(t *testing.T) {
	viewer, other, origin, dead := newFakeClient(), newFakeClient(), newFakeClient(), newFakeClient()
	pos := world.ChunkPos{1, -1}
	viewer.chunks[pos], origin.chunks[pos], dead.chunks[pos] = true, true, true
	dead.dead = true
	b, _ := setup(t, viewer, other, origin, dead)

	b.BlockUpdate(cube.Pos{20, 64, -3}, 7, origin.ID())

	pks := viewer.packets()
	if len(pks) != 1 {
		t.Fatalf("expected viewer to receive one packet, got %d", len(pks))
	}
	pk, ok := pks[0].(*packet.UpdateBlock)
	if !ok || pk.NewBlockRuntimeID != 7 || pk.Position != (protocol.BlockPos{20, 64, -3}) {
		t.Fatalf("unexpected packet %#v", pks[0])
	}
	if pk.Flags != packet.BlockUpdateNetwork|packet.BlockUpdateNeighbours || pk.Layer != 0 {
		t.Fatalf("unexpected flags or layer: %#v", pk)
	}
	if len(other.packets()) != 0 || len(origin.packets()) != 0 || len(dead.packets()) != 0 {
		t.Fatalf("expected only the viewer of the chunk to receive the update")
	}
	if b.Metrics().Skipped(PolicyChunk) != 1 || b.Metrics().Sent(PolicyChunk) != 1 {
		t.Fatalf("unexpected metrics: sent %d, skipped %d", b.Metrics().Sent(PolicyChunk), b.Metrics().Skipped(PolicyChunk))
	}
}

func TestHeldSlotUpdateSendsOneMainHandPacket(t *testing.T) {
	owner, viewer := newFakeClient(), newFakeClient()
	b, store := setup(t, owner, viewer)
	inv := store.add(1, owner.ID())
	owner.visible[1], viewer.visible[1] = true, true
	_ = inv.SetHeldSlot(2)
	_ = inv.SetItem(inventory.HotbarOffset+2, item.NewStack(5, 0, 1))

	b.InventoryUpdate(inventory.UpdateEvent{Entity: 1, Slots: []int{inventory.HotbarOffset + 2}})

	mainHand, offHand, armour := countEquipment(viewer.packets())
	if mainHand != 1 || offHand != 0 || armour != 0 {
		t.Fatalf("expected exactly one main hand packet, got %d/%d/%d", mainHand, offHand, armour)
	}
	pk := viewer.packets()[0].(*packet.MobEquipment)
	if pk.EntityRuntimeID != 1 || pk.HotBarSlot != 2 || pk.NewItem.Stack.ItemType.NetworkID != 5 {
		t.Fatalf("unexpected packet %#v", pk)
	}

	// The owner only gets the slot itself, never its own equipment.
	pks := owner.packets()
	if len(pks) != 1 {
		t.Fatalf("expected owner to receive one packet, got %d", len(pks))
	}
	slot, ok := pks[0].(*packet.InventorySlot)
	if !ok || slot.WindowID != protocol.WindowIDInventory || slot.Slot != 2 {
		t.Fatalf("unexpected owner packet %#v", pks[0])
	}
}

func TestUnmappedSlotSendsNoEquipment(t *testing.T) {
	owner, viewer := newFakeClient(), newFakeClient()
	b, store := setup(t, owner, viewer)
	store.add(1, owner.ID())
	viewer.visible[1] = true

	// Slot 12 is part of the main inventory and slot 40 is a hotbar slot that
	// is not held.
	b.InventoryUpdate(inventory.UpdateEvent{Entity: 1, Slots: []int{12, inventory.HotbarOffset + 4}})

	if got := len(viewer.packets()); got != 0 {
		t.Fatalf("expected no equipment packets, got %d", got)
	}
	if got := len(owner.packets()); got != 2 {
		t.Fatalf("expected two slot packets for the owner, got %d", got)
	}
}

func TestArmourAndOffHandUpdates(t *testing.T) {
	viewer, hidden := newFakeClient(), newFakeClient()
	b, store := setup(t, viewer, hidden)
	store.add(1, uuid.Nil)
	viewer.visible[1] = true

	b.InventoryUpdate(inventory.UpdateEvent{Entity: 1, Slots: []int{inventory.SlotBoots, inventory.SlotOffHand}})

	mainHand, offHand, armour := countEquipment(viewer.packets())
	if mainHand != 0 || offHand != 1 || armour != 1 {
		t.Fatalf("expected one armour and one off hand packet, got %d/%d/%d", mainHand, offHand, armour)
	}
	if len(hidden.packets()) != 0 {
		t.Fatalf("expected client not viewing the entity to receive nothing")
	}
}

func TestInventoryUpdateOfDeadEntity(t *testing.T) {
	owner, viewer := newFakeClient(), newFakeClient()
	b, store := setup(t, owner, viewer)
	store.add(1, owner.ID())
	store.alive[1] = false
	viewer.visible[1] = true

	b.InventoryUpdate(inventory.UpdateEvent{Entity: 1, Slots: []int{inventory.SlotHelmet}})
	if len(owner.packets()) != 0 || len(viewer.packets()) != 0 {
		t.Fatalf("expected no packets for a dead entity")
	}
}

func TestEntityShown(t *testing.T) {
	viewer, other := newFakeClient(), newFakeClient()
	b, store := setup(t, viewer, other)
	store.add(3, uuid.Nil)

	b.EntityShown(3, viewer.ID())

	pks := viewer.packets()
	if len(pks) != len(inventory.AllEquipment) {
		t.Fatalf("expected %d packets, got %d", len(inventory.AllEquipment), len(pks))
	}
	if _, ok := pks[0].(*packet.MobEquipment); !ok {
		t.Fatalf("expected main hand first, got %T", pks[0])
	}
	for _, pk := range pks[1:5] {
		if _, ok := pk.(*packet.MobArmourEquipment); !ok {
			t.Fatalf("expected armour packets, got %T", pk)
		}
	}
	if pk, ok := pks[5].(*packet.MobEquipment); !ok || pk.WindowID != protocol.WindowIDOffHand {
		t.Fatalf("expected off hand last, got %#v", pks[5])
	}
	if len(other.packets()) != 0 {
		t.Fatalf("expected only the viewer to receive the equipment")
	}

	viewer.dead = true
	b.EntityShown(3, viewer.ID())
	if len(viewer.packets()) != len(inventory.AllEquipment) {
		t.Fatalf("expected dead client to receive nothing")
	}
}

func TestChunkShown(t *testing.T) {
	viewer := newFakeClient()
	viewer.entity = 1
	store := newFakeStore()
	store.add(1, viewer.ID())
	store.add(2, uuid.Nil)
	index := world.NewChunkEntities(0)
	index.Spawn(1, world.ChunkPos{})
	index.Spawn(2, world.ChunkPos{})
	b := Config{Store: store, Index: index}.New()
	b.Registry().Add(viewer)

	b.ChunkShown(world.ChunkPos{}, viewer.ID())
	pks := viewer.packets()
	if len(pks) != len(inventory.AllEquipment) {
		t.Fatalf("expected the other entity's equipment only, got %d packets", len(pks))
	}
	for _, pk := range pks {
		if id := entityOf(pk); id != 2 {
			t.Fatalf("expected packets for entity 2, got %d", id)
		}
	}
}

func entityOf(pk packet.Packet) uint64 {
	switch pk := pk.(type) {
	case *packet.MobEquipment:
		return pk.EntityRuntimeID
	case *packet.MobArmourEquipment:
		return pk.EntityRuntimeID
	}
	return 0
}

func TestWeatherBroadcast(t *testing.T) {
	a, c, dead := newFakeClient(), newFakeClient(), newFakeClient()
	dead.dead = true
	b, _ := setup(t, a, c, dead)

	tests := []struct {
		w             world.Weather
		rain, thunder int32
	}{
		{world.WeatherClear, packet.LevelEventStopRaining, packet.LevelEventStopThunderstorm},
		{world.WeatherRain, packet.LevelEventStartRaining, packet.LevelEventStopThunderstorm},
		{world.WeatherThunder, packet.LevelEventStartRaining, packet.LevelEventStartThunderstorm},
	}
	for i, tt := range tests {
		b.BroadcastWeather(tt.w)
		for _, cl := range []*fakeClient{a, c} {
			pks := cl.packets()
			if len(pks) != 2*(i+1) {
				t.Fatalf("%v: expected %d packets, got %d", tt.w, 2*(i+1), len(pks))
			}
			rain, thunder := pks[2*i].(*packet.LevelEvent), pks[2*i+1].(*packet.LevelEvent)
			if rain.EventType != tt.rain || thunder.EventType != tt.thunder {
				t.Fatalf("%v: unexpected events %d, %d", tt.w, rain.EventType, thunder.EventType)
			}
		}
	}
	if len(dead.packets()) != 0 {
		t.Fatalf("expected no packets for dead client")
	}

	b.WeatherChange(world.WeatherRain, a.ID())
	if len(a.packets()) != 6 || len(c.packets()) != 8 {
		t.Fatalf("expected excluded client to receive nothing")
	}
	b.WeatherTo(a.ID(), world.WeatherClear)
	if len(a.packets()) != 8 || len(c.packets()) != 8 {
		t.Fatalf("expected direct weather to reach one client")
	}
}

func TestWindowSlot(t *testing.T) {
	tests := []struct {
		slot          int
		window, index uint32
	}{
		{inventory.SlotHelmet, protocol.WindowIDArmour, 0},
		{inventory.SlotBoots, protocol.WindowIDArmour, 3},
		{inventory.SlotOffHand, protocol.WindowIDOffHand, 0},
		{inventory.HotbarOffset + 8, protocol.WindowIDInventory, 8},
		{9, protocol.WindowIDInventory, 9},
		{35, protocol.WindowIDInventory, 35},
	}
	for _, tt := range tests {
		window, index := windowSlot(tt.slot)
		if window != tt.window || index != tt.index {
			t.Errorf("windowSlot(%d) = %d, %d; want %d, %d", tt.slot, window, index, tt.window, tt.index)
		}
	}
}

func TestRegistrySnapshotRelease(t *testing.T) {
	a, b := newFakeClient(), newFakeClient()
	r := NewRegistry()
	r.Add(a)
	r.Add(b)

	for range 3 {
		clients := r.snapshot()
		if len(*clients) != 2 {
			t.Fatalf("snapshot holds %d clients, want 2", len(*clients))
		}
		seen := map[uuid.UUID]bool{}
		for _, c := range *clients {
			seen[c.ID()] = true
		}
		if !seen[a.id] || !seen[b.id] {
			t.Fatalf("snapshot missing clients: %v", seen)
		}
		backing := (*clients)[:cap(*clients)]
		release(clients)
		if len(*clients) != 0 {
			t.Fatalf("released slice has length %d, want 0", len(*clients))
		}
		for i, c := range backing {
			if c != nil {
				t.Fatalf("released slice still references client at %d", i)
			}
		}
	}
}
