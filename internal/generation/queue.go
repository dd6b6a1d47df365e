package generation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"voxelworld/internal/physics"
	"voxelworld/internal/terrain"
	"voxelworld/internal/world"
)

// Synthesizer produces the buffers for one chunk. terrain.Synthesizer is the
// production implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, seed int64, cx, cz, lod int) (terrain.Result, error)
}

// Stats is a point-in-time view of queue activity.
type Stats struct {
	Runs      uint64
	Failures  uint64
	DedupHits uint64
	CacheHits uint64
}

// Queue turns chunk requests into cached chunks. Concurrent requests for the
// same key join one singleflight call, so they share one synthesis run and
// settle with the same chunk.
type Queue struct {
	state   *world.State
	synth   Synthesizer
	builder *physics.Builder
	sem     *semaphore.Weighted
	logger  *log.Logger

	group singleflight.Group

	mu      sync.Mutex
	waiting map[world.ChunkKey]int

	runs      atomic.Uint64
	failures  atomic.Uint64
	dedupHits atomic.Uint64
	cacheHits atomic.Uint64
}

// NewQueue binds a queue to state. builder may be nil when physics is
// disabled. maxInFlight caps concurrent synthesis runs; zero means unbounded.
func NewQueue(state *world.State, synth Synthesizer, builder *physics.Builder, maxInFlight int, logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.New(log.Writer(), "generation ", log.LstdFlags|log.Lmicroseconds)
	}
	q := &Queue{
		state:   state,
		synth:   synth,
		builder: builder,
		logger:  logger,
		waiting: make(map[world.ChunkKey]int),
	}
	if maxInFlight > 0 {
		q.sem = semaphore.NewWeighted(int64(maxInFlight))
	}
	return q
}

// Enqueue returns a future for chunk (cx, cz) at lod. A cached key yields an
// already resolved future; otherwise the caller joins the in-flight call for
// the key or starts one. It never blocks on synthesis.
func (q *Queue) Enqueue(seed int64, cx, cz, lod int) *Future {
	key := world.ChunkKey{X: cx, Z: cz, LOD: lod}

	if chunk, ok := q.state.Chunk(key); ok {
		q.cacheHits.Add(1)
		return resolvedFuture(chunk)
	}

	q.mu.Lock()
	if q.waiting[key] > 0 {
		q.dedupHits.Add(1)
	}
	q.waiting[key]++
	results := q.group.DoChan(key.String(), func() (any, error) {
		return q.generate(seed, key)
	})
	q.mu.Unlock()

	fut := newFuture(key)
	go q.await(fut, results)
	return fut
}

// Request enqueues the key, waits for it and checks the result against the
// cache.
func (q *Queue) Request(ctx context.Context, seed int64, cx, cz, lod int) (*world.Chunk, error) {
	fut := q.Enqueue(seed, cx, cz, lod)
	chunk, err := fut.Wait(ctx)
	if err != nil {
		return nil, err
	}
	cached, ok := q.state.Chunk(fut.Key())
	if !ok || cached != chunk {
		return nil, fmt.Errorf("chunk %s: %w", fut.Key(), ErrLookupInconsistency)
	}
	return chunk, nil
}

// await settles fut with the result of the shared call it joined.
func (q *Queue) await(fut *Future, results <-chan singleflight.Result) {
	res := <-results
	key := fut.Key()

	q.mu.Lock()
	if q.waiting[key]--; q.waiting[key] <= 0 {
		delete(q.waiting, key)
	}
	q.mu.Unlock()

	if res.Err != nil {
		fut.resolve(nil, res.Err)
		return
	}
	fut.resolve(res.Val.(*world.Chunk), nil)
}

// generate runs synthesis for key, queues its colliders and inserts it into
// the cache. It executes once per singleflight call. Failures come back as
// *SynthesisError and leave the cache untouched.
func (q *Queue) generate(seed int64, key world.ChunkKey) (chunk *world.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunk = nil
			err = &SynthesisError{Key: key, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			q.failures.Add(1)
			q.logger.Printf("chunk %s generation failed: %v", key, err)
		}
	}()

	// A call started after a previous one finished for the same key finds the
	// chunk here.
	if existing, ok := q.state.Chunk(key); ok {
		return existing, nil
	}

	if q.sem != nil {
		// Acquire cannot fail with a background context.
		_ = q.sem.Acquire(context.Background(), 1)
		defer q.sem.Release(1)
	}

	q.runs.Add(1)
	res, err := q.synth.Synthesize(context.Background(), seed, key.X, key.Z, key.LOD)
	if err != nil {
		return nil, &SynthesisError{Key: key, Err: err}
	}
	chunk, err = world.NewChunk(key, res.Voxels, res.Heightmap, res.LastModified)
	if err != nil {
		return nil, &SynthesisError{Key: key, Err: err}
	}

	if q.builder != nil {
		q.builder.Enqueue(chunk)
	}
	stored, _ := q.state.Insert(chunk)
	return stored, nil
}

// InFlight returns the number of keys that still have unsettled futures.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) Stats() Stats {
	return Stats{
		Runs:      q.runs.Load(),
		Failures:  q.failures.Load(),
		DedupHits: q.dedupHits.Load(),
		CacheHits: q.cacheHits.Load(),
	}
}
