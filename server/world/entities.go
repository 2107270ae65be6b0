package world

import (
	"slices"
	"sync"

	"github.com/brentp/intintmap"
	"github.com/segmentio/fasthash/fnv1a"
)

// DefaultIndexShards is the number of shards used by a ChunkEntities created
// with a shard count of zero or lower.
const DefaultIndexShards = 64

// ChunkEntities stores which entities belong to every chunk. It is used to
// speed up lookups such as selecting the entities to show to a client that
// just loaded a chunk, or querying for entities near a position.
//
// The data held is a best effort snapshot: an entity may briefly still be
// listed in a chunk it just left, or be missing from one it just entered.
// Callers must only use it for performance decisions. All methods are safe
// for concurrent use. Chunks are spread over independently locked shards so
// that updating one chunk never blocks readers of an unrelated shard.
type ChunkEntities struct {
	shards []entityShard
	mask   uint64

	locMu sync.Mutex
	loc   *intintmap.Map
}

type entityShard struct {
	mu     sync.RWMutex
	chunks map[ChunkPos][]EntityID
}

// NewChunkEntities creates an empty ChunkEntities. The shard count is rounded
// up to the next power of two. A count of zero or lower results in
// DefaultIndexShards shards.
func NewChunkEntities(shards int) *ChunkEntities {
	if shards <= 0 {
		shards = DefaultIndexShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	c := &ChunkEntities{
		shards: make([]entityShard, n),
		mask:   uint64(n - 1),
		loc:    intintmap.New(1024, 0.6),
	}
	for i := range c.shards {
		c.shards[i].chunks = make(map[ChunkPos][]EntityID)
	}
	return c
}

func (c *ChunkEntities) shard(pos ChunkPos) *entityShard {
	return &c.shards[fnv1a.HashUint64(pos.pack())&c.mask]
}

// EntitiesInChunk returns a copy of the entities currently believed to be in
// the chunk at pos. Nil is returned for chunks that hold no entities.
func (c *ChunkEntities) EntitiesInChunk(pos ChunkPos) []EntityID {
	s := c.shard(pos)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.chunks[pos])
}

// EntitiesWithin returns the entities in all chunks within a square radius of
// chunks around centre. A radius of 0 is equal to calling EntitiesInChunk.
func (c *ChunkEntities) EntitiesWithin(centre ChunkPos, radius int32) []EntityID {
	if radius < 0 {
		return nil
	}
	var out []EntityID
	for x := centre[0] - radius; x <= centre[0]+radius; x++ {
		for z := centre[1] - radius; z <= centre[1]+radius; z++ {
			pos := ChunkPos{x, z}
			s := c.shard(pos)
			s.mu.RLock()
			out = append(out, s.chunks[pos]...)
			s.mu.RUnlock()
		}
	}
	return out
}

// Spawn adds an entity to the chunk at pos. Adding an entity that is already
// present in the chunk has no effect.
func (c *ChunkEntities) Spawn(e EntityID, pos ChunkPos) {
	c.add(e, pos)
	c.setLocation(e, pos)
}

// Move moves an entity from the chunk at from to the chunk at to. Move is a
// no-op if both positions are equal. A concurrent reader may observe the
// entity in neither or both chunks while the move is in progress.
func (c *ChunkEntities) Move(e EntityID, from, to ChunkPos) {
	if from == to {
		return
	}
	c.remove(e, from)
	c.add(e, to)
	c.setLocation(e, to)
}

// Relocate moves an entity to the chunk at to, removing it from the chunk it
// was last recorded in. The entity is spawned if it has no recorded chunk.
func (c *ChunkEntities) Relocate(e EntityID, to ChunkPos) {
	if from, ok := c.Locate(e); ok {
		c.Move(e, from, to)
		return
	}
	c.Spawn(e, to)
}

// Despawn removes an entity from the chunk at pos. Chunks left without
// entities are pruned.
func (c *ChunkEntities) Despawn(e EntityID, pos ChunkPos) {
	c.remove(e, pos)

	c.locMu.Lock()
	if v, ok := c.loc.Get(int64(e)); ok && unpackChunkPos(uint64(v)) == pos {
		c.loc.Del(int64(e))
	}
	c.locMu.Unlock()
}

// Locate returns the chunk an entity was last added to.
func (c *ChunkEntities) Locate(e EntityID) (ChunkPos, bool) {
	c.locMu.Lock()
	defer c.locMu.Unlock()
	v, ok := c.loc.Get(int64(e))
	if !ok {
		return ChunkPos{}, false
	}
	return unpackChunkPos(uint64(v)), true
}

// Len returns the number of chunks that currently hold at least one entity.
func (c *ChunkEntities) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.chunks)
		s.mu.RUnlock()
	}
	return n
}

func (c *ChunkEntities) add(e EntityID, pos ChunkPos) {
	s := c.shard(pos)
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.chunks[pos], e) {
		return
	}
	s.chunks[pos] = append(s.chunks[pos], e)
}

func (c *ChunkEntities) remove(e EntityID, pos ChunkPos) {
	s := c.shard(pos)
	s.mu.Lock()
	defer s.mu.Unlock()
	entities, ok := s.chunks[pos]
	if !ok {
		return
	}
	if i := slices.Index(entities, e); i != -1 {
		entities = slices.Delete(entities, i, i+1)
	}
	if len(entities) == 0 {
		delete(s.chunks, pos)
		return
	}
	s.chunks[pos] = entities
}

func (c *ChunkEntities) setLocation(e EntityID, pos ChunkPos) {
	c.locMu.Lock()
	c.loc.Put(int64(e), int64(pos.pack()))
	c.locMu.Unlock()
}
