package finisher

import (
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dm-vev/ember/server/world"
)

type placement struct {
	x, z uint8
	y    int16
	b    world.Block
}

// memChunk records every block set in order.
type memChunk struct {
	pos world.ChunkPos
	set []placement
}

func (c *memChunk) Position() world.ChunkPos { return c.pos }
func (c *memChunk) SetBlock(x uint8, y int16, z uint8, b world.Block) {
	c.set = append(c.set, placement{x: x, z: z, y: y, b: b})
}

const (
	plains world.Biome = 1
	desert world.Biome = 2
	grass  world.Block = 31
)

func uniform(b world.Biome) *Biomes {
	var biomes Biomes
	for x := range biomes {
		for z := range biomes[x] {
			biomes[x][z] = b
		}
	}
	return &biomes
}

func flat(h int16) *TopBlocks {
	var top TopBlocks
	for x := range top {
		for z := range top[x] {
			top[x][z] = h
		}
	}
	return &top
}

// dense returns a ClumpedFoliage that makes every eligible column the centre
// of a clump.
func dense() ClumpedFoliage {
	return ClumpedFoliage{Chance: 1, Blocks: map[world.Biome]world.Block{plains: grass}}
}

func TestClumpedFoliageDeterministic(t *testing.T) {
	f := ClumpedFoliage{Chance: 4, Blocks: map[world.Biome]world.Block{plains: grass}}
	a, b := &memChunk{pos: world.ChunkPos{3, -2}}, &memChunk{pos: world.ChunkPos{3, -2}}
	f.Finish(a, uniform(plains), flat(63), 1234)
	f.Finish(b, uniform(plains), flat(63), 1234)
	if len(a.set) == 0 {
		t.Fatalf("expected at least one placement")
	}
	if !slices.Equal(a.set, b.set) {
		t.Fatalf("expected identical output for identical input")
	}
}

func TestClumpedFoliageIndependentChunks(t *testing.T) {
	f := ClumpedFoliage{Chance: 4, Blocks: map[world.Biome]world.Block{plains: grass}}
	a, b := &memChunk{pos: world.ChunkPos{0, 0}}, &memChunk{pos: world.ChunkPos{1, 0}}
	f.Finish(a, uniform(plains), flat(63), 1234)
	f.Finish(b, uniform(plains), flat(63), 1234)
	if slices.Equal(a.set, b.set) {
		t.Fatalf("expected adjacent chunks to produce different placements")
	}
	if ChunkSeed(1234, a.pos) == ChunkSeed(1234, b.pos) {
		t.Fatalf("expected adjacent chunks to get different seeds")
	}
	if ChunkSeed(1234, a.pos) == ChunkSeed(1235, a.pos) {
		t.Fatalf("expected different world seeds to give different chunk seeds")
	}
}

func TestClumpedFoliageStaysInChunk(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		c := &memChunk{pos: world.ChunkPos{int32(seed), -int32(seed)}}
		dense().Finish(c, uniform(plains), flat(70), seed)
		for _, p := range c.set {
			if p.x > 15 || p.z > 15 {
				t.Fatalf("placement %+v outside chunk", p)
			}
			if p.y != 71 {
				t.Fatalf("expected placement one block above top, got %+v", p)
			}
		}
	}
}

func TestClumpedFoliageRespectsBiome(t *testing.T) {
	biomes := uniform(plains)
	for x := range biomes {
		for z := 8; z < 16; z++ {
			biomes[x][z] = desert
		}
	}
	c := &memChunk{}
	dense().Finish(c, biomes, flat(64), 99)
	if len(c.set) == 0 {
		t.Fatalf("expected placements in the plains half")
	}
	for _, p := range c.set {
		if biomes[p.x][p.z] != plains {
			t.Fatalf("placement %+v written into a column of another biome", p)
		}
	}
}

func TestClumpedFoliageUnmappedBiome(t *testing.T) {
	c := &memChunk{}
	dense().Finish(c, uniform(desert), flat(64), 5)
	if len(c.set) != 0 {
		t.Fatalf("expected no placements in unmapped biome, got %d", len(c.set))
	}
}

func TestClumpedFoliageUsesTopTable(t *testing.T) {
	top := flat(60)
	for x := range top {
		for z := range top[x] {
			top[x][z] = int16(x*16 + z)
		}
	}
	c := &memChunk{}
	dense().Finish(c, uniform(plains), top, 7)
	for _, p := range c.set {
		if p.y != top[p.x][p.z]+1 {
			t.Fatalf("placement %+v not one above top %d", p, top[p.x][p.z])
		}
	}
}

type orderFinisher struct {
	name  string
	order *[]string
}

func (f orderFinisher) Finish(Chunk, *Biomes, *TopBlocks, uint64) {
	*f.order = append(*f.order, f.name)
}

func TestPipelineOrder(t *testing.T) {
	var order []string
	p := Pipeline{orderFinisher{"a", &order}, orderFinisher{"b", &order}, orderFinisher{"c", &order}}
	p.Finish(&memChunk{}, uniform(plains), flat(0), 0)
	if !slices.Equal(order, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestNewClumpedFoliageResolvesNames(t *testing.T) {
	reg := NewMapRegistry()
	reg.RegisterBiome("minecraft:Plains", plains)
	reg.RegisterBlock("short_grass", grass)

	f, unknown := NewClumpedFoliage(reg, 0, []string{"PLAINS", "nether_wastes"}, "minecraft:short_grass")
	if !slices.Equal(unknown, []string{"nether_wastes"}) {
		t.Fatalf("unexpected unknown names %v", unknown)
	}
	if b, ok := f.Blocks[plains]; !ok || b != grass {
		t.Fatalf("expected plains to map to grass, got %v", f.Blocks)
	}

	if _, unknown := NewClumpedFoliage(reg, 0, []string{"plains"}, "stone"); len(unknown) != 1 {
		t.Fatalf("expected unknown block to be reported, got %v", unknown)
	}
}

func TestDefaultRegistryKnowsDefaults(t *testing.T) {
	f, unknown := NewClumpedFoliage(DefaultRegistry(), 0, DefaultClumpBiomes, DefaultClumpBlock)
	if len(unknown) != 0 {
		t.Fatalf("default names not registered: %v", unknown)
	}
	if len(f.Blocks) != len(DefaultClumpBiomes) {
		t.Fatalf("expected %d biomes, got %d", len(DefaultClumpBiomes), len(f.Blocks))
	}
}

func TestWorkersFinishEveryChunk(t *testing.T) {
	w := WorkerConfig{Workers: 4, QueueSize: 2, Seed: 42, Finisher: dense()}.New()
	t.Cleanup(w.Close)

	const n = 64
	var (
		mu   sync.Mutex
		done = make(map[world.ChunkPos]bool)
		wg   sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		w.Submit(Task{
			Chunk:  &memChunk{pos: world.ChunkPos{int32(i), 0}},
			Biomes: uniform(plains),
			Top:    flat(64),
			Done: func(c Chunk, finished bool) {
				defer wg.Done()
				mu.Lock()
				defer mu.Unlock()
				if !finished || len(c.(*memChunk).set) == 0 {
					t.Errorf("chunk %v not finished", c.Position())
				}
				done[c.Position()] = true
			},
		})
	}
	waitTimeout(t, &wg, 5*time.Second)
	if len(done) != n {
		t.Fatalf("expected %d chunks finished, got %d", n, len(done))
	}
}

type panicFinisher struct{}

func (panicFinisher) Finish(Chunk, *Biomes, *TopBlocks, uint64) { panic("boom") }

func TestWorkersRecoverFromPanic(t *testing.T) {
	w := WorkerConfig{Workers: 1, Finisher: panicFinisher{}}.New()
	t.Cleanup(w.Close)

	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		w.Submit(Task{Chunk: &memChunk{}, Done: func(_ Chunk, finished bool) { results <- finished }})
	}
	for i := 0; i < 2; i++ {
		select {
		case finished := <-results:
			if finished {
				t.Fatalf("expected panicking task to be reported unfinished")
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("worker did not survive panic")
		}
	}
}

func TestWorkersSubmitAfterClose(t *testing.T) {
	w := WorkerConfig{Workers: 1}.New()
	w.Close()
	called := false
	w.Submit(Task{Chunk: &memChunk{}, Done: func(_ Chunk, finished bool) {
		called = !finished
	}})
	if !called {
		t.Fatalf("expected Done to be called synchronously with finished=false")
	}
}

func TestWorkersSubmitRacingClose(t *testing.T) {
	for round := 0; round < 20; round++ {
		w := WorkerConfig{Workers: 2, QueueSize: 1, Log: slog.New(slog.DiscardHandler)}.New()

		const n = 32
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			calls = make(map[int]int)
		)
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				w.Submit(Task{Chunk: &memChunk{}, Done: func(Chunk, bool) {
					mu.Lock()
					calls[i]++
					mu.Unlock()
					wg.Done()
				}})
			}()
		}
		w.Close()
		waitTimeout(t, &wg, 5*time.Second)

		for i := 0; i < n; i++ {
			if calls[i] != 1 {
				t.Fatalf("round %d: expected Done of task %d to be called once, got %d", round, i, calls[i])
			}
		}
	}
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	c := make(chan struct{})
	go func() {
		wg.Wait()
		close(c)
	}()
	select {
	case <-c:
	case <-time.After(d):
		t.Fatalf("timed out after %v", d)
	}
}
