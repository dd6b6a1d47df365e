package physics

import (
	"context"
	"testing"
	"time"

	"voxelworld/internal/world"
)

func TestStepperDefersCommandsUntilChunkCached(t *testing.T) {
	logger, _ := quietLogger()
	state := world.NewState()
	space := NewBoxSpace()
	pending := NewPendingQueue()
	builder := NewBuilder(space, pending, logger)
	stepper := NewStepper(space, pending, state, time.Millisecond, 0, logger)

	column := func(x, y, z int) world.BlockID {
		if x == 0 && z == 0 && y < 3 {
			return world.BlockStone
		}
		return world.BlockAir
	}
	ch := testChunk(t, world.ChunkKey{X: 4}, column)
	if n := builder.Enqueue(ch); n != 1 {
		t.Fatalf("expected 1 collider, got %d", n)
	}

	if created := stepper.Step(time.Millisecond); created != 0 {
		t.Fatalf("expected no colliders before chunk is cached, got %d", created)
	}
	if pending.Len() != 1 || stepper.Deferred() != 1 {
		t.Fatalf("expected command to be re-queued, pending=%d deferred=%d", pending.Len(), stepper.Deferred())
	}

	state.Insert(ch)
	if created := stepper.Step(time.Millisecond); created != 1 {
		t.Fatalf("expected 1 collider once cached, got %d", created)
	}
	handles := ch.ColliderHandles()
	if len(handles) != 1 {
		t.Fatalf("expected 1 handle, got %d", len(handles))
	}
	desc, ok := space.Collider(handles[0])
	if !ok || desc.Center.Y() != 1.5 {
		t.Fatalf("expected collider centered at y=1.5, got %+v (ok=%v)", desc, ok)
	}
	if space.Steps() != 2 {
		t.Fatalf("expected 2 space steps, got %d", space.Steps())
	}
}

func TestStepperHandlesAreStableAndMonotonic(t *testing.T) {
	logger, _ := quietLogger()
	state := world.NewState()
	space := NewBoxSpace()
	pending := NewPendingQueue()
	builder := NewBuilder(space, pending, logger)
	stepper := NewStepper(space, pending, state, time.Millisecond, 5, logger)

	solid := func(int, int, int) world.BlockID { return world.BlockStone }
	a := testChunk(t, world.ChunkKey{X: 0}, solid)
	b := testChunk(t, world.ChunkKey{X: 1}, solid)
	builder.Enqueue(a)
	builder.Enqueue(b)
	state.Insert(a)
	state.Insert(b)

	for pending.Len() > 0 {
		stepper.Step(time.Millisecond)
	}

	ha := a.ColliderHandles()
	hb := b.ColliderHandles()
	if len(ha) != world.Area || len(hb) != world.Area {
		t.Fatalf("expected %d handles per chunk, got %d and %d", world.Area, len(ha), len(hb))
	}
	if ha[len(ha)-1] >= hb[0] {
		t.Fatalf("expected FIFO application across chunks")
	}
	for i := 1; i < len(ha); i++ {
		if ha[i] <= ha[i-1] {
			t.Fatalf("expected monotonic handles, got %d after %d", ha[i], ha[i-1])
		}
	}
	if stepper.Applied() != uint64(2*world.Area) {
		t.Fatalf("expected %d applied colliders, got %d", 2*world.Area, stepper.Applied())
	}
}

func TestStepperSkipsWhileSpaceNotReady(t *testing.T) {
	logger, _ := quietLogger()
	state := world.NewState()
	space := NewBoxSpace()
	pending := NewPendingQueue()
	stepper := NewStepper(space, pending, state, time.Millisecond, 0, logger)

	pending.Push(sampleCommand(0))
	space.SetReady(false)
	if created := stepper.Step(time.Millisecond); created != 0 {
		t.Fatalf("expected no work while not ready, got %d", created)
	}
	if pending.Len() != 1 || space.Steps() != 0 {
		t.Fatalf("expected queue untouched and space not stepped")
	}
}

func TestStepperRunLoopDrainsOnTicks(t *testing.T) {
	logger, _ := quietLogger()
	state := world.NewState()
	space := NewBoxSpace()
	pending := NewPendingQueue()
	stepper := NewStepper(space, pending, state, time.Millisecond, 0, logger)

	ticks := make(chan time.Time)
	stepper.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
	base := time.Unix(0, 0)
	stepper.now = func() time.Time { return base }

	ch := testChunk(t, world.ChunkKey{}, func(x, y, z int) world.BlockID {
		if y == 0 {
			return world.BlockStone
		}
		return world.BlockAir
	})
	NewBuilder(space, pending, logger).Enqueue(ch)
	state.Insert(ch)

	ctx, cancel := context.WithCancel(context.Background())
	stepper.Start(ctx)
	ticks <- base.Add(time.Millisecond)
	ticks <- base.Add(2 * time.Millisecond)
	cancel()
	stepper.Wait()

	if got := ch.ColliderCount(); got != world.Area {
		t.Fatalf("expected %d colliders after ticking, got %d", world.Area, got)
	}
}
