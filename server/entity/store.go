package entity

import (
	"sync"
	"sync/atomic"

	"github.com/dm-vev/ember/server/item/inventory"
	"github.com/dm-vev/ember/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// InventorySink receives the changes made to the inventories of entities in
// a Store.
type InventorySink interface {
	InventoryUpdate(ev inventory.UpdateEvent)
}

// SpawnOpts holds the parameters of an entity spawned in a Store.
type SpawnOpts struct {
	// Position is the position the entity is spawned at.
	Position mgl64.Vec3
	// Controller is the ID of the session controlling the entity, or
	// uuid.Nil if the entity is not controlled by a client.
	Controller uuid.UUID
	// Inventory specifies if the entity carries an inventory.
	Inventory bool
}

// Store holds the live entities of a world. It keeps the chunk-entity index
// of the world up to date as entities spawn, move and despawn. All methods
// are safe for concurrent use.
type Store struct {
	index *world.ChunkEntities

	next atomic.Uint64

	mu       sync.RWMutex
	entities map[world.EntityID]*Entity

	sink atomic.Pointer[InventorySink]
}

// Entity is a live entity in a Store.
type Entity struct {
	id         world.EntityID
	controller uuid.UUID
	inv        *inventory.Inventory

	// mu guards pos and dead, and is held while the index is updated so that
	// a despawned entity is never added back to a chunk.
	mu   sync.Mutex
	pos  mgl64.Vec3
	dead bool
}

// ID returns the runtime ID of the entity.
func (e *Entity) ID() world.EntityID {
	return e.id
}

// Controller returns the ID of the session controlling the entity.
func (e *Entity) Controller() uuid.UUID {
	return e.controller
}

// Inventory returns the inventory of the entity, or nil if it has none.
func (e *Entity) Inventory() *inventory.Inventory {
	return e.inv
}

// Position returns the current position of the entity.
func (e *Entity) Position() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

// NewStore creates an empty Store that records entities in index.
func NewStore(index *world.ChunkEntities) *Store {
	return &Store{index: index, entities: make(map[world.EntityID]*Entity)}
}

// HandleInventory sets the InventorySink that receives inventory changes of
// all entities in the Store. Passing nil discards further changes.
func (s *Store) HandleInventory(sink InventorySink) {
	if sink == nil {
		s.sink.Store(nil)
		return
	}
	s.sink.Store(&sink)
}

// Spawn adds a new entity to the Store and to the chunk it is spawned in.
func (s *Store) Spawn(opts SpawnOpts) *Entity {
	e := &Entity{
		id:         world.EntityID(s.next.Add(1)),
		controller: opts.Controller,
		pos:        opts.Position,
	}
	if opts.Inventory {
		e.inv = inventory.New(inventory.Size)
		e.inv.Handle(inventoryHandler{s: s, id: e.id})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	s.entities[e.id] = e
	s.mu.Unlock()

	s.index.Spawn(e.id, world.ChunkPosFromVec3(opts.Position))
	return e
}

// Move moves an entity to the position passed, updating the chunk it is
// recorded in if it crossed a chunk border. Move returns false if the entity
// is not alive.
func (s *Store) Move(id world.EntityID, pos mgl64.Vec3) bool {
	e, ok := s.entity(id)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return false
	}
	from := world.ChunkPosFromVec3(e.pos)
	e.pos = pos
	s.index.Move(id, from, world.ChunkPosFromVec3(pos))
	return true
}

// Despawn removes an entity from the Store and from its chunk. Despawn
// returns false if the entity was not alive.
func (s *Store) Despawn(id world.EntityID) bool {
	s.mu.Lock()
	e, ok := s.entities[id]
	delete(s.entities, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	if e.inv != nil {
		e.inv.Handle(nil)
	}
	e.mu.Lock()
	e.dead = true
	s.index.Despawn(id, world.ChunkPosFromVec3(e.pos))
	e.mu.Unlock()
	return true
}

// Entity returns the live entity with the ID passed.
func (s *Store) Entity(id world.EntityID) (*Entity, bool) {
	return s.entity(id)
}

// Alive checks if the entity with the ID passed is still alive.
func (s *Store) Alive(id world.EntityID) bool {
	_, ok := s.entity(id)
	return ok
}

// Inventory returns the inventory of an entity. False is returned if the
// entity is not alive or has no inventory.
func (s *Store) Inventory(id world.EntityID) (*inventory.Inventory, bool) {
	e, ok := s.entity(id)
	if !ok || e.inv == nil {
		return nil, false
	}
	return e.inv, true
}

// Controller returns the ID of the session controlling an entity. False is
// returned if the entity is not alive or not controlled by a session.
func (s *Store) Controller(id world.EntityID) (uuid.UUID, bool) {
	e, ok := s.entity(id)
	if !ok || e.controller == uuid.Nil {
		return uuid.Nil, false
	}
	return e.controller, true
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func (s *Store) entity(id world.EntityID) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// inventoryHandler forwards changes of an entity inventory to the sink of
// the Store.
type inventoryHandler struct {
	s  *Store
	id world.EntityID
}

func (h inventoryHandler) HandleChange(_ *inventory.Inventory, slots []int) {
	if sink := h.s.sink.Load(); sink != nil {
		(*sink).InventoryUpdate(inventory.UpdateEvent{Entity: h.id, Slots: slots})
	}
}
