// Package finisher decorates freshly generated chunks with secondary content
// such as clustered foliage. Finishers only ever write inside the chunk they
// are given, and their output depends only on the world seed and the inputs
// of that chunk.
package finisher

import (
	"github.com/dm-vev/ember/server/world"
)

// Chunk is a chunk that is being generated. It is exclusively owned by the
// generation pipeline until finishing completes.
type Chunk interface {
	// Position returns the position of the chunk.
	Position() world.ChunkPos
	// SetBlock sets the block at the chunk-relative position passed.
	SetBlock(x uint8, y int16, z uint8, b world.Block)
}

// Biomes holds the biome of every column of a chunk, indexed [x][z].
type Biomes [16][16]world.Biome

// TopBlocks holds the height of the highest solid block of every column of a
// chunk, indexed [x][z].
type TopBlocks [16][16]int16

// Finisher adds secondary content to a chunk after its terrain has been
// generated. Finish never fails: placements that cannot be made are skipped.
type Finisher interface {
	Finish(c Chunk, biomes *Biomes, top *TopBlocks, seed uint64)
}

// Pipeline is an ordered list of finishers. It implements Finisher itself by
// running every finisher in order.
type Pipeline []Finisher

// Finish runs all finishers of the Pipeline on c in order.
func (p Pipeline) Finish(c Chunk, biomes *Biomes, top *TopBlocks, seed uint64) {
	for _, f := range p {
		f.Finish(c, biomes, top, seed)
	}
}

// inChunk checks if a column offset still lies in the chunk being finished.
func inChunk(x, z int) bool {
	return x >= 0 && x < 16 && z >= 0 && z < 16
}
