package world

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Chunk dimensions in blocks. Y is the vertical axis.
const (
	SizeX  = 16
	SizeY  = 128
	SizeZ  = 16
	Area   = SizeX * SizeZ
	Volume = SizeX * SizeY * SizeZ
)

// BlockID identifies the material of a single voxel.
type BlockID uint8

const (
	BlockAir BlockID = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockSandstone
	BlockSnow
	BlockGravel
)

// Solid reports whether the block takes part in collision.
func (b BlockID) Solid() bool {
	return b != BlockAir
}

// ChunkKey identifies a chunk at a given level of detail.
type ChunkKey struct {
	X   int
	Z   int
	LOD int
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("%d,%d,L%d", k.X, k.Z, k.LOD)
}

// Origin returns the world-space block coordinate of the chunk's (0,0,0) corner.
func (k ChunkKey) Origin() (x, z int) {
	return k.X * SizeX, k.Z * SizeZ
}

// VoxelIndex maps local coordinates into the dense voxel buffer.
func VoxelIndex(x, y, z int) int {
	return y*Area + z*SizeX + x
}

// ColumnIndex maps local column coordinates into the heightmap.
func ColumnIndex(x, z int) int {
	return z*SizeX + x
}

// ColliderHandle references a collider owned by the physics space.
type ColliderHandle uint64

// Chunk is a materialized chunk. Voxels and Heightmap never change once the
// chunk has been inserted into a State; only collider handles are appended.
type Chunk struct {
	Key          ChunkKey
	Voxels       []BlockID
	Heightmap    []int
	LastModified int64

	mu       sync.RWMutex
	handles  []ColliderHandle
	digest   uint64
	digested bool
}

// NewChunk validates buffer sizes and wraps them in a Chunk.
func NewChunk(key ChunkKey, voxels []BlockID, heightmap []int, lastModified int64) (*Chunk, error) {
	if len(voxels) != Volume {
		return nil, fmt.Errorf("chunk %s: voxel buffer has %d entries, want %d", key, len(voxels), Volume)
	}
	if len(heightmap) != Area {
		return nil, fmt.Errorf("chunk %s: heightmap has %d entries, want %d", key, len(heightmap), Area)
	}
	return &Chunk{
		Key:          key,
		Voxels:       voxels,
		Heightmap:    heightmap,
		LastModified: lastModified,
	}, nil
}

// Block returns the block at local coordinates, or air when out of range.
func (c *Chunk) Block(x, y, z int) BlockID {
	if x < 0 || y < 0 || z < 0 || x >= SizeX || y >= SizeY || z >= SizeZ {
		return BlockAir
	}
	return c.Voxels[VoxelIndex(x, y, z)]
}

// Height returns the heightmap entry for a local column.
func (c *Chunk) Height(x, z int) int {
	if x < 0 || z < 0 || x >= SizeX || z >= SizeZ {
		return 0
	}
	return c.Heightmap[ColumnIndex(x, z)]
}

// AppendCollider records a collider created for this chunk.
func (c *Chunk) AppendCollider(h ColliderHandle) {
	c.mu.Lock()
	c.handles = append(c.handles, h)
	c.mu.Unlock()
}

// ColliderHandles returns a copy of the handles in insertion order.
func (c *Chunk) ColliderHandles() []ColliderHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ColliderHandle(nil), c.handles...)
}

// ColliderCount returns the number of colliders created so far.
func (c *Chunk) ColliderCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// SolidColumns counts columns holding at least one non-air block.
func (c *Chunk) SolidColumns() int {
	count := 0
	for z := 0; z < SizeZ; z++ {
		for x := 0; x < SizeX; x++ {
			for y := 0; y < SizeY; y++ {
				if c.Voxels[VoxelIndex(x, y, z)].Solid() {
					count++
					break
				}
			}
		}
	}
	return count
}

// Digest hashes the voxel buffer so replicas can skip unchanged chunks.
func (c *Chunk) Digest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.digested {
		return c.digest
	}
	buf := make([]byte, len(c.Voxels))
	for i, b := range c.Voxels {
		buf[i] = byte(b)
	}
	c.digest = xxhash.Sum64(buf)
	c.digested = true
	return c.digest
}
