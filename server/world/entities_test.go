package world

import (
	"slices"
	"sync"
	"testing"

	"github.com/dm-vev/ember/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

func count(ids []EntityID, e EntityID) int {
	n := 0
	for _, id := range ids {
		if id == e {
			n++
		}
	}
	return n
}

func TestEntitiesInUnknownChunk(t *testing.T) {
	c := NewChunkEntities(0)
	for _, pos := range []ChunkPos{{}, {1, -1}, {-1 << 20, 1 << 20}} {
		if got := c.EntitiesInChunk(pos); len(got) != 0 {
			t.Fatalf("expected no entities in %v, got %v", pos, got)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty index, got %d chunks", c.Len())
	}
}

func TestSpawnAddsOnce(t *testing.T) {
	c := NewChunkEntities(4)
	pos := ChunkPos{3, -7}
	c.Spawn(1, pos)
	c.Spawn(1, pos)
	if n := count(c.EntitiesInChunk(pos), 1); n != 1 {
		t.Fatalf("expected entity present exactly once, got %d", n)
	}
	if got, ok := c.Locate(1); !ok || got != pos {
		t.Fatalf("expected entity located in %v, got %v (%v)", pos, got, ok)
	}
}

func TestMoveBetweenChunks(t *testing.T) {
	c := NewChunkEntities(0)
	from, to := ChunkPos{0, 0}, ChunkPos{0, 1}
	c.Spawn(5, from)
	c.Spawn(6, from)
	c.Move(5, from, to)

	if n := count(c.EntitiesInChunk(from), 5); n != 0 {
		t.Fatalf("expected entity removed from %v", from)
	}
	if n := count(c.EntitiesInChunk(to), 5); n != 1 {
		t.Fatalf("expected entity present exactly once in %v, got %d", to, n)
	}
	if !slices.Equal(c.EntitiesInChunk(from), []EntityID{6}) {
		t.Fatalf("unrelated entity lost: %v", c.EntitiesInChunk(from))
	}
}

func TestMoveWithinChunkIsNoop(t *testing.T) {
	c := NewChunkEntities(0)
	pos := ChunkPos{2, 2}
	c.Spawn(1, pos)
	c.Spawn(2, pos)
	before := c.EntitiesInChunk(pos)
	c.Move(1, pos, pos)
	if after := c.EntitiesInChunk(pos); !slices.Equal(before, after) {
		t.Fatalf("expected %v unchanged, got %v", before, after)
	}
}

func TestDespawnPrunesChunk(t *testing.T) {
	c := NewChunkEntities(0)
	pos := ChunkPos{-1, 9}
	c.Spawn(1, pos)
	c.Despawn(1, pos)
	if got := c.EntitiesInChunk(pos); len(got) != 0 {
		t.Fatalf("expected no entities, got %v", got)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty chunk to be pruned")
	}
	if _, ok := c.Locate(1); ok {
		t.Fatalf("expected despawned entity to have no location")
	}
	// Despawning from a chunk never inserted is a no-op.
	c.Despawn(1, ChunkPos{100, 100})
}

func TestRelocate(t *testing.T) {
	c := NewChunkEntities(0)
	c.Relocate(1, ChunkPos{0, 0})
	c.Relocate(1, ChunkPos{4, 4})
	if got := c.EntitiesInChunk(ChunkPos{0, 0}); len(got) != 0 {
		t.Fatalf("expected old chunk empty, got %v", got)
	}
	if !slices.Equal(c.EntitiesInChunk(ChunkPos{4, 4}), []EntityID{1}) {
		t.Fatalf("expected entity in new chunk")
	}
}

func TestEntitiesWithin(t *testing.T) {
	c := NewChunkEntities(0)
	c.Spawn(1, ChunkPos{0, 0})
	c.Spawn(2, ChunkPos{1, -1})
	c.Spawn(3, ChunkPos{2, 0})

	got := c.EntitiesWithin(ChunkPos{0, 0}, 1)
	slices.Sort(got)
	if !slices.Equal(got, []EntityID{1, 2}) {
		t.Fatalf("expected [1 2], got %v", got)
	}
	if got := c.EntitiesWithin(ChunkPos{0, 0}, -1); got != nil {
		t.Fatalf("expected nil for negative radius, got %v", got)
	}
}

func TestChunkPosFloors(t *testing.T) {
	tests := []struct {
		vec  mgl64.Vec3
		want ChunkPos
	}{
		{mgl64.Vec3{0, 0, 0}, ChunkPos{0, 0}},
		{mgl64.Vec3{15.9, 64, 16}, ChunkPos{0, 1}},
		{mgl64.Vec3{-0.1, 64, -16}, ChunkPos{-1, -1}},
		{mgl64.Vec3{-16.5, 0, -17}, ChunkPos{-2, -2}},
	}
	for _, tt := range tests {
		if got := ChunkPosFromVec3(tt.vec); got != tt.want {
			t.Errorf("ChunkPosFromVec3(%v) = %v, want %v", tt.vec, got, tt.want)
		}
	}
	if got := ChunkPosFromBlockPos(cube.Pos{-1, 0, 31}); got != (ChunkPos{-1, 1}) {
		t.Errorf("ChunkPosFromBlockPos = %v", got)
	}
}

func TestConcurrentMovesNeverLoseEntities(t *testing.T) {
	c := NewChunkEntities(8)
	const (
		workers = 8
		perWork = 32
		moves   = 200
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWork; i++ {
				e := EntityID(w*perWork + i + 1)
				pos := ChunkPos{0, 0}
				c.Spawn(e, pos)
				for m := 0; m < moves; m++ {
					next := ChunkPos{int32((m + i) % 5), int32(w % 3)}
					c.Move(e, pos, next)
					pos = next
				}
			}
		}(w)
	}
	// Readers run alongside the writers.
	done := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
					_ = c.EntitiesWithin(ChunkPos{2, 1}, 3)
				}
			}
		}()
	}
	wg.Wait()
	close(done)
	readers.Wait()

	seen := make(map[EntityID]int)
	for _, id := range c.EntitiesWithin(ChunkPos{2, 1}, 3) {
		seen[id]++
	}
	if len(seen) != workers*perWork {
		t.Fatalf("expected %d entities, got %d", workers*perWork, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("entity %d present %d times", id, n)
		}
	}
}
