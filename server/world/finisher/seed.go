package finisher

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/dm-vev/ember/server/world"
)

// ChunkSeed mixes the world seed with the position of a chunk. Adjacent
// chunks get unrelated seeds, while the same chunk always gets the same seed.
func ChunkSeed(seed uint64, pos world.ChunkPos) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], seed)
	binary.LittleEndian.PutUint32(b[8:12], uint32(pos[0]))
	binary.LittleEndian.PutUint32(b[12:], uint32(pos[1]))
	return xxhash.Sum64(b[:])
}

// chunkRand returns the random source used to finish the chunk at pos.
func chunkRand(seed uint64, pos world.ChunkPos) *rand.Rand {
	s := ChunkSeed(seed, pos)
	return rand.New(rand.NewPCG(s, seed))
}
