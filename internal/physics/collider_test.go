package physics

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"voxelworld/internal/terrain"
	"voxelworld/internal/world"
)

func testChunk(t *testing.T, key world.ChunkKey, fill func(x, y, z int) world.BlockID) *world.Chunk {
	t.Helper()
	voxels := make([]world.BlockID, world.Volume)
	if fill != nil {
		for y := 0; y < world.SizeY; y++ {
			for z := 0; z < world.SizeZ; z++ {
				for x := 0; x < world.SizeX; x++ {
					voxels[world.VoxelIndex(x, y, z)] = fill(x, y, z)
				}
			}
		}
	}
	ch, err := world.NewChunk(key, voxels, make([]int, world.Area), 0)
	if err != nil {
		t.Fatalf("new chunk: %v", err)
	}
	return ch
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestBuilderAllAirChunkEnqueuesNothing(t *testing.T) {
	logger, _ := quietLogger()
	pending := NewPendingQueue()
	builder := NewBuilder(NewBoxSpace(), pending, logger)

	if n := builder.Enqueue(testChunk(t, world.ChunkKey{}, nil)); n != 0 {
		t.Fatalf("expected 0 colliders for all-air chunk, got %d", n)
	}
	if pending.Len() != 0 {
		t.Fatalf("expected empty pending queue, got %d", pending.Len())
	}
}

func TestBuilderAllSolidChunkOneColliderPerColumn(t *testing.T) {
	logger, _ := quietLogger()
	pending := NewPendingQueue()
	builder := NewBuilder(NewBoxSpace(), pending, logger)

	ch := testChunk(t, world.ChunkKey{X: 1, Z: -1}, func(int, int, int) world.BlockID { return world.BlockStone })
	n := builder.Enqueue(ch)
	if n != world.SizeX*world.SizeZ {
		t.Fatalf("expected %d colliders, got %d", world.SizeX*world.SizeZ, n)
	}

	cmds := pending.Drain(0)
	if len(cmds) != n {
		t.Fatalf("expected %d pending commands, got %d", n, len(cmds))
	}
	first := cmds[0]
	if first.Kind != InsertCollider || first.ChunkKey != ch.Key {
		t.Fatalf("unexpected first command %+v", first)
	}
	wantHalf := mgl64.Vec3{0.5, float64(world.SizeY) / 2, 0.5}
	if !first.Descriptor.HalfExtents.ApproxEqual(wantHalf) {
		t.Fatalf("expected half extents %v, got %v", wantHalf, first.Descriptor.HalfExtents)
	}
	wantCenter := mgl64.Vec3{16.5, float64(world.SizeY) / 2, -15.5}
	if !first.Descriptor.Center.ApproxEqual(wantCenter) {
		t.Fatalf("expected center %v, got %v", wantCenter, first.Descriptor.Center)
	}
	second := cmds[1].Descriptor.Center
	if second.X() != 17.5 || second.Z() != -15.5 {
		t.Fatalf("expected x-minor column order, got second center %v", second)
	}
}

func TestColumnRunsSplitsOnAirGaps(t *testing.T) {
	ch := testChunk(t, world.ChunkKey{}, func(x, y, z int) world.BlockID {
		if x != 2 || z != 3 {
			return world.BlockAir
		}
		switch {
		case y < 4:
			return world.BlockStone
		case y >= 10 && y < 13:
			return world.BlockDirt
		case y == world.SizeY-1:
			return world.BlockSnow
		}
		return world.BlockAir
	})

	runs := ColumnRuns(ch)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs for a column with two air gaps, got %d", len(runs))
	}
	want := []Descriptor{
		{HalfExtents: mgl64.Vec3{0.5, 2, 0.5}, Center: mgl64.Vec3{2.5, 2, 3.5}},
		{HalfExtents: mgl64.Vec3{0.5, 1.5, 0.5}, Center: mgl64.Vec3{2.5, 11.5, 3.5}},
		{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}, Center: mgl64.Vec3{2.5, float64(world.SizeY) - 0.5, 3.5}},
	}
	for i := range want {
		if !runs[i].HalfExtents.ApproxEqual(want[i].HalfExtents) || !runs[i].Center.ApproxEqual(want[i].Center) {
			t.Fatalf("run %d: expected %+v, got %+v", i, want[i], runs[i])
		}
	}
}

func TestBuilderWithoutPhysicsLogsAndSkips(t *testing.T) {
	logger, buf := quietLogger()
	pending := NewPendingQueue()
	solid := func(int, int, int) world.BlockID { return world.BlockStone }

	builder := NewBuilder(nil, pending, logger)
	if n := builder.Enqueue(testChunk(t, world.ChunkKey{}, solid)); n != 0 {
		t.Fatalf("expected 0 colliders without physics space, got %d", n)
	}

	space := NewBoxSpace()
	space.SetReady(false)
	builder = NewBuilder(space, pending, logger)
	if n := builder.Enqueue(testChunk(t, world.ChunkKey{X: 1}, solid)); n != 0 {
		t.Fatalf("expected 0 colliders while space not ready, got %d", n)
	}

	if pending.Len() != 0 {
		t.Fatalf("expected nothing queued, got %d", pending.Len())
	}
	if !strings.Contains(buf.String(), ErrPhysicsNotReady.Error()) {
		t.Fatalf("expected not-ready log, got %q", buf.String())
	}
}

func TestNaturalChunkCollidersMatchSolidColumns(t *testing.T) {
	res, err := terrain.NewSynthesizer(2).Synthesize(context.Background(), 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	ch, err := world.NewChunk(world.ChunkKey{}, res.Voxels, res.Heightmap, res.LastModified)
	if err != nil {
		t.Fatalf("new chunk: %v", err)
	}

	logger, _ := quietLogger()
	state := world.NewState()
	space := NewBoxSpace()
	pending := NewPendingQueue()
	builder := NewBuilder(space, pending, logger)

	n := builder.Enqueue(ch)
	if want := ch.SolidColumns(); n != want {
		t.Fatalf("expected %d colliders (solid columns), got %d", want, n)
	}
	state.Insert(ch)

	stepper := NewStepper(space, pending, state, time.Millisecond, 0, logger)
	for pending.Len() > 0 {
		stepper.Step(time.Millisecond)
	}
	if got := len(ch.ColliderHandles()); got != n {
		t.Fatalf("expected %d collider handles after drain, got %d", n, got)
	}
	if space.Len() != n {
		t.Fatalf("expected %d colliders in space, got %d", n, space.Len())
	}
}
