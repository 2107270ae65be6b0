package world

import (
	"fmt"
	"math"

	"github.com/dm-vev/ember/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// ChunkPos holds the position of a chunk. The type is provided as a utility
// struct for keeping track of a chunk's position. Chunks do not themselves
// keep track of that. Chunk positions are different from block positions in
// the way that increasing the X/Z by one means increasing the absolute value
// on the X/Z axis in terms of blocks by 16.
type ChunkPos [2]int32

// String implements fmt.Stringer and returns (x, z).
func (p ChunkPos) String() string {
	return fmt.Sprintf("(%v, %v)", p[0], p[1])
}

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 {
	return p[0]
}

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 {
	return p[1]
}

// pack folds the chunk position into a single uint64 for hashing and for
// use as a key in integer maps.
func (p ChunkPos) pack() uint64 {
	return uint64(uint32(p[0]))<<32 | uint64(uint32(p[1]))
}

// unpackChunkPos reverses ChunkPos.pack.
func unpackChunkPos(v uint64) ChunkPos {
	return ChunkPos{int32(uint32(v >> 32)), int32(uint32(v))}
}

// ChunkPosFromBlockPos returns the ChunkPos of the chunk that a block at a
// cube.Pos is in.
func ChunkPosFromBlockPos(p cube.Pos) ChunkPos {
	return ChunkPos{int32(p[0] >> 4), int32(p[2] >> 4)}
}

// ChunkPosFromVec3 returns the ChunkPos of the chunk that a position is in.
func ChunkPosFromVec3(vec mgl64.Vec3) ChunkPos {
	return ChunkPos{int32(math.Floor(vec[0])) >> 4, int32(math.Floor(vec[2])) >> 4}
}

// EntityID is an opaque handle to a live entity owned by the entity store.
// It is unique while the entity is alive and doubles as the runtime ID sent
// to clients.
type EntityID uint64

// Block is a runtime ID of a block state. The mapping of runtime IDs to
// concrete block types is owned by the block registry.
type Block uint32

// Biome is the numeric ID of a biome.
type Biome uint32
