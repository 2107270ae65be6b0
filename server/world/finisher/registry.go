package finisher

import (
	"strings"
	"sync"

	"github.com/dm-vev/ember/server/world"
	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/text/cases"
)

// Registry resolves biome and block names to their runtime values.
type Registry interface {
	Biome(name string) (world.Biome, bool)
	Block(name string) (world.Block, bool)
}

// MapRegistry is a Registry backed by maps. Names are case folded and may be
// passed with or without the "minecraft:" namespace. It is safe for
// concurrent use.
type MapRegistry struct {
	mu     sync.RWMutex
	biomes map[string]world.Biome
	blocks map[string]world.Block
}

// NewMapRegistry returns an empty MapRegistry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{biomes: make(map[string]world.Biome), blocks: make(map[string]world.Block)}
}

// RegisterBiome registers a biome under the name passed.
func (r *MapRegistry) RegisterBiome(name string, b world.Biome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.biomes[normaliseName(name)] = b
}

// RegisterBlock registers a block under the name passed.
func (r *MapRegistry) RegisterBlock(name string, b world.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[normaliseName(name)] = b
}

// Biome ...
func (r *MapRegistry) Biome(name string) (world.Biome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.biomes[normaliseName(name)]
	return b, ok
}

// Block ...
func (r *MapRegistry) Block(name string) (world.Block, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blocks[normaliseName(name)]
	return b, ok
}

// normaliseName case folds a name and strips the minecraft namespace.
func normaliseName(name string) string {
	return strings.TrimPrefix(cases.Fold().String(strings.TrimSpace(name)), "minecraft:")
}

// defaultBiomeIDs are the Bedrock numeric IDs of the biomes that grow
// clumps by default.
var defaultBiomeIDs = map[string]world.Biome{
	"plains":             1,
	"sunflower_plains":   129,
	"mountains":          3,
	"wooded_mountains":   34,
	"savanna":            35,
	"savanna_plateau":    36,
	"forest":             4,
	"dark_forest":        29,
	"dark_forest_hills":  157,
	"birch_forest":       27,
	"tall_birch_forest":  155,
	"birch_forest_hills": 28,
	"swamp":              6,
}

// DefaultRegistry returns a MapRegistry holding the biomes that grow clumps by
// default, and the default clump block. Block runtime IDs are the FNV-1a hash
// of the namespaced block name, as with hashed block network IDs.
func DefaultRegistry() *MapRegistry {
	r := NewMapRegistry()
	for name, id := range defaultBiomeIDs {
		r.RegisterBiome(name, id)
	}
	r.RegisterBlock(DefaultClumpBlock, HashedBlock(DefaultClumpBlock))
	return r
}

// HashedBlock returns the runtime ID of a block derived from its name.
func HashedBlock(name string) world.Block {
	return world.Block(fnv1a.HashString32("minecraft:" + normaliseName(name)))
}
