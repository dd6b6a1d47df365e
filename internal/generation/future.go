package generation

import (
	"context"

	"voxelworld/internal/world"
)

// Future is one caller's completion handle for a chunk key. Futures handed out
// while the key is in flight all settle from the same synthesis run.
type Future struct {
	key  world.ChunkKey
	done chan struct{}

	chunk *world.Chunk
	err   error
}

func newFuture(key world.ChunkKey) *Future {
	return &Future{key: key, done: make(chan struct{})}
}

func resolvedFuture(chunk *world.Chunk) *Future {
	f := newFuture(chunk.Key)
	f.resolve(chunk, nil)
	return f
}

// resolve must be called exactly once.
func (f *Future) resolve(chunk *world.Chunk, err error) {
	f.chunk = chunk
	f.err = err
	close(f.done)
}

func (f *Future) Key() world.ChunkKey {
	return f.key
}

// Done is closed once the future is resolved or rejected.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx ends. Ending ctx only stops the
// wait; the generation itself keeps running and still populates the cache.
func (f *Future) Wait(ctx context.Context) (*world.Chunk, error) {
	select {
	case <-f.done:
		return f.chunk, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
