package physics

import (
	"errors"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"voxelworld/internal/world"
)

// ErrPhysicsNotReady is reported when colliders are requested before a
// physics space exists. It is logged, never returned to chunk requesters.
var ErrPhysicsNotReady = errors.New("physics world not ready")

// Descriptor describes one axis-aligned box collider in world space.
type Descriptor struct {
	HalfExtents mgl64.Vec3
	Center      mgl64.Vec3
}

// ColumnRuns scans every column bottom-up and emits one descriptor per
// maximal run of solid blocks. Columns are visited z-major, x-minor.
func ColumnRuns(chunk *world.Chunk) []Descriptor {
	originX, originZ := chunk.Key.Origin()
	descriptors := make([]Descriptor, 0, world.Area)
	for z := 0; z < world.SizeZ; z++ {
		for x := 0; x < world.SizeX; x++ {
			runStart := -1
			for y := 0; y <= world.SizeY; y++ {
				solid := y < world.SizeY && chunk.Voxels[world.VoxelIndex(x, y, z)].Solid()
				switch {
				case solid && runStart < 0:
					runStart = y
				case !solid && runStart >= 0:
					descriptors = append(descriptors, runDescriptor(originX, originZ, x, z, runStart, y))
					runStart = -1
				}
			}
		}
	}
	return descriptors
}

func runDescriptor(originX, originZ, x, z, y0, y1 int) Descriptor {
	return Descriptor{
		HalfExtents: mgl64.Vec3{0.5, float64(y1-y0) / 2, 0.5},
		Center: mgl64.Vec3{
			float64(originX+x) + 0.5,
			float64(y0+y1) / 2,
			float64(originZ+z) + 0.5,
		},
	}
}

// Builder turns finished chunks into deferred collider insertions.
type Builder struct {
	space   Space
	pending *PendingQueue
	logger  *log.Logger
}

// NewBuilder creates a builder. space may be nil, in which case every chunk
// yields zero colliders.
func NewBuilder(space Space, pending *PendingQueue, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(log.Writer(), "physics ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Builder{
		space:   space,
		pending: pending,
		logger:  logger,
	}
}

// Enqueue queues one InsertCollider command per solid run of chunk and returns
// how many were queued. It never touches the physics space itself.
func (b *Builder) Enqueue(chunk *world.Chunk) int {
	if b.space == nil || !b.space.Ready() || b.pending == nil {
		b.logger.Printf("chunk %s: %v, enqueued 0 colliders", chunk.Key, ErrPhysicsNotReady)
		return 0
	}
	descriptors := ColumnRuns(chunk)
	cmds := make([]Command, len(descriptors))
	for i, desc := range descriptors {
		cmds[i] = Command{
			Kind:       InsertCollider,
			ChunkKey:   chunk.Key,
			Descriptor: desc,
		}
	}
	b.pending.Push(cmds...)
	return len(cmds)
}
