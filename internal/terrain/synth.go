package terrain

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"voxelworld/internal/world"
)

// fillerDepth is the number of filler blocks below the surface block.
const fillerDepth = 3

// Result holds the buffers produced for one chunk.
type Result struct {
	Voxels       []world.BlockID
	Heightmap    []int
	LastModified int64
}

// Synthesizer fills chunk buffers from a Sampler. It touches no shared state
// and is safe to call from any goroutine.
type Synthesizer struct {
	workers int
	now     func() time.Time
	sample  func(s *Sampler, wx, wz int) HeightInfo
}

// NewSynthesizer returns a synthesizer that spreads columns over the given
// number of workers. Zero or negative selects GOMAXPROCS.
func NewSynthesizer(workers int) *Synthesizer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > world.SizeX {
		workers = world.SizeX
	}
	return &Synthesizer{
		workers: workers,
		now:     time.Now,
		sample:  (*Sampler).Sample,
	}
}

// Synthesize generates the voxel buffer and heightmap for chunk (cx, cz) at
// the given LOD.
func (s *Synthesizer) Synthesize(ctx context.Context, seed int64, cx, cz, lod int) (Result, error) {
	if lod < 0 {
		return Result{}, fmt.Errorf("synthesize chunk %d,%d: negative lod %d", cx, cz, lod)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("synthesize chunk %d,%d: %w", cx, cz, err)
	}

	sampler := NewSampler(seed, lod)
	voxels := make([]world.BlockID, world.Volume)
	heightmap := make([]int, world.Area)
	originX, originZ := world.ChunkKey{X: cx, Z: cz}.Origin()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for x := 0; x < world.SizeX; x++ {
		x := x
		g.Go(func() (err error) {
			// Workers run on their own goroutines, out of reach of any recover
			// in the caller.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("column slab x=%d: panic: %v", x, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			for z := 0; z < world.SizeZ; z++ {
				info := s.sample(sampler, originX+x, originZ+z)
				heightmap[world.ColumnIndex(x, z)] = fillColumn(voxels, x, z, info)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("synthesize chunk %d,%d: %w", cx, cz, err)
	}

	return Result{
		Voxels:       voxels,
		Heightmap:    heightmap,
		LastModified: s.now().UnixMilli(),
	}, nil
}

// fillColumn writes one column and returns its clamped height.
func fillColumn(voxels []world.BlockID, x, z int, info HeightInfo) int {
	height := info.Height
	if height > world.SizeY {
		height = world.SizeY
	}
	def := BiomeByID(info.Biome)
	for y := 0; y < height; y++ {
		voxels[world.VoxelIndex(x, y, z)] = blockAt(def, y, height)
	}
	return height
}

func blockAt(def BiomeDefinition, y, height int) world.BlockID {
	depth := height - 1 - y
	switch {
	case depth == 0:
		if def.SnowLine > 0 && y >= def.SnowLine {
			return world.BlockSnow
		}
		return def.Surface
	case depth <= fillerDepth:
		return def.Filler
	default:
		return world.BlockStone
	}
}
