package finisher

import (
	"github.com/dm-vev/ember/server/world"
)

// DefaultClumpChance is the chance, as 1 in n, that a column becomes the
// centre of a clump.
const DefaultClumpChance = 48

// DefaultClumpBiomes are the names of the biomes that grow grass clumps by
// default.
var DefaultClumpBiomes = []string{
	"plains",
	"sunflower_plains",
	"wooded_mountains",
	"mountains",
	"savanna",
	"savanna_plateau",
	"forest",
	"dark_forest",
	"dark_forest_hills",
	"birch_forest",
	"tall_birch_forest",
	"birch_forest_hills",
	"swamp",
}

// DefaultClumpBlock is the name of the block placed in clumps by default.
const DefaultClumpBlock = "short_grass"

// ClumpedFoliage places small clumps of a block, such as grass, on top of
// the columns of a chunk. Every column whose biome is found in Blocks has a
// one in Chance chance to become the centre of a clump of 3 to 5 blocks,
// placed at most 2 columns away from it. Placements that fall outside the
// chunk or on a column of another biome are dropped.
type ClumpedFoliage struct {
	// Chance is the chance, as 1 in Chance, for a column to become the centre
	// of a clump. If 0 or lower, DefaultClumpChance is used.
	Chance int
	// Blocks maps biomes to the block placed in clumps in that biome. Columns
	// of biomes not present are never decorated.
	Blocks map[world.Biome]world.Block
}

// NewClumpedFoliage resolves the biome and block names passed through reg and
// returns a ClumpedFoliage placing the block in every biome found. Names that
// reg does not know are returned in unknown.
func NewClumpedFoliage(reg Registry, chance int, biomes []string, block string) (f ClumpedFoliage, unknown []string) {
	f = ClumpedFoliage{Chance: chance, Blocks: make(map[world.Biome]world.Block, len(biomes))}
	b, ok := reg.Block(block)
	if !ok {
		return f, []string{block}
	}
	for _, name := range biomes {
		biome, ok := reg.Biome(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		f.Blocks[biome] = b
	}
	return f, unknown
}

// Finish ...
func (f ClumpedFoliage) Finish(c Chunk, biomes *Biomes, top *TopBlocks, seed uint64) {
	if len(f.Blocks) == 0 {
		return
	}
	chance := f.Chance
	if chance <= 0 {
		chance = DefaultClumpChance
	}
	r := chunkRand(seed, c.Position())

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			biome := biomes[x][z]
			b, ok := f.Blocks[biome]
			if !ok || r.IntN(chance) != 0 {
				continue
			}
			n := 3 + r.IntN(3)
			for i := 0; i < n; i++ {
				px, pz := x+r.IntN(5)-2, z+r.IntN(5)-2
				// Clumps never cross into neighbouring chunks.
				if !inChunk(px, pz) || biomes[px][pz] != biome {
					continue
				}
				c.SetBlock(uint8(px), top[px][pz]+1, uint8(pz), b)
			}
		}
	}
}
