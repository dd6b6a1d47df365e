package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"voxelworld/internal/generation"
	"voxelworld/internal/physics"
	"voxelworld/internal/terrain"
	"voxelworld/internal/world"
)

type countingSynth struct {
	base      generation.Synthesizer
	runs      atomic.Int64
	totalTime atomic.Int64
}

func (s *countingSynth) Synthesize(ctx context.Context, seed int64, cx, cz, lod int) (terrain.Result, error) {
	start := time.Now()
	res, err := s.base.Synthesize(ctx, seed, cx, cz, lod)
	s.totalTime.Add(int64(time.Since(start)))
	if err == nil {
		s.runs.Add(1)
	}
	return res, err
}

type chunkJob struct {
	x, z, lod int
}

func main() {
	var (
		totalRequests = flag.Int("requests", 2000, "number of chunk requests to issue")
		concurrency   = flag.Int("concurrency", runtime.NumCPU(), "number of concurrent requesters")
		radius        = flag.Int("radius", 4, "request chunks within this radius of the origin")
		maxLOD        = flag.Int("maxLod", 2, "highest level of detail to request")
		maxInFlight   = flag.Int("maxInFlight", 4, "concurrent synthesis cap, 0 = unbounded")
		workers       = flag.Int("workers", 0, "synthesis workers per chunk, 0 = GOMAXPROCS")
		timeout       = flag.Duration("timeout", 5*time.Second, "per-request timeout")
		seed          = flag.Int64("seed", 1337, "world seed")
		jobSeed       = flag.Int64("jobSeed", 7, "random seed for request selection")
	)
	flag.Parse()

	if *totalRequests <= 0 {
		fmt.Fprintln(os.Stderr, "requests must be positive")
		os.Exit(1)
	}
	if *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency must be positive")
		os.Exit(1)
	}
	if *radius < 0 || *maxLOD < 0 {
		fmt.Fprintln(os.Stderr, "radius and maxLod cannot be negative")
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "genprofile ", log.LstdFlags|log.Lmicroseconds)
	state := world.NewState()
	space := physics.NewBoxSpace()
	pending := physics.NewPendingQueue()
	builder := physics.NewBuilder(space, pending, logger)
	stepper := physics.NewStepper(space, pending, state, 5*time.Millisecond, 0, logger)
	synth := &countingSynth{base: terrain.NewSynthesizer(*workers)}
	queue := generation.NewQueue(state, synth, builder, *maxInFlight, logger)

	ctx, cancel := context.WithCancel(context.Background())
	stepper.Start(ctx)

	jobs := make(chan chunkJob)
	go func() {
		defer close(jobs)
		rng := rand.New(rand.NewSource(*jobSeed))
		span := 2*(*radius) + 1
		for i := 0; i < *totalRequests; i++ {
			jobs <- chunkJob{
				x:   rng.Intn(span) - *radius,
				z:   rng.Intn(span) - *radius,
				lod: rng.Intn(*maxLOD + 1),
			}
		}
	}()

	var (
		wg           sync.WaitGroup
		successes    int64
		failures     int64
		timeouts     int64
		totalLatency int64
	)

	worker := func() {
		defer wg.Done()
		for job := range jobs {
			reqCtx, reqCancel := context.WithTimeout(ctx, *timeout)
			start := time.Now()
			_, err := queue.Request(reqCtx, *seed, job.x, job.z, job.lod)
			atomic.AddInt64(&totalLatency, int64(time.Since(start)))
			timedOut := reqCtx.Err() == context.DeadlineExceeded
			reqCancel()

			switch {
			case timedOut:
				atomic.AddInt64(&timeouts, 1)
			case err != nil:
				atomic.AddInt64(&failures, 1)
				logger.Printf("chunk %d,%d,L%d: %v", job.x, job.z, job.lod, err)
			default:
				atomic.AddInt64(&successes, 1)
			}
		}
	}

	wg.Add(*concurrency)
	for i := 0; i < *concurrency; i++ {
		go worker()
	}

	startWall := time.Now()
	wg.Wait()
	wallDuration := time.Since(startWall)

	for pending.Len() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	stepper.Wait()

	colliders, solidColumns, mismatched := 0, 0, 0
	state.ForEach(func(ch *world.Chunk) bool {
		runs := len(physics.ColumnRuns(ch))
		colliders += ch.ColliderCount()
		solidColumns += ch.SolidColumns()
		if ch.ColliderCount() != runs {
			mismatched++
		}
		return true
	})

	stats := queue.Stats()
	avgLatency := time.Duration(totalLatency / int64(*totalRequests))
	avgSynth := time.Duration(0)
	if runs := synth.runs.Load(); runs > 0 {
		avgSynth = time.Duration(synth.totalTime.Load() / runs)
	}

	fmt.Println("== Chunk Generation Profile ==")
	fmt.Printf("Requests: %d (radius %d, LOD 0-%d)\n", *totalRequests, *radius, *maxLOD)
	fmt.Printf("Concurrency: %d, synthesis cap: %d\n", *concurrency, *maxInFlight)
	fmt.Printf("Successes: %d, Failures: %d, Timeouts: %d\n", successes, failures, timeouts)
	fmt.Printf("Average request latency: %s\n", avgLatency)
	fmt.Printf("Average synthesis duration: %s\n", avgSynth)
	fmt.Printf("Wall clock duration: %s\n", wallDuration)
	fmt.Printf("Chunks generated: %d (cached %d)\n", synth.runs.Load(), state.Len())
	fmt.Printf("Dedup hits: %d, cache hits: %d\n", stats.DedupHits, stats.CacheHits)
	fmt.Printf("Colliders: %d over %d solid columns, chunks with mismatched counts: %d\n", colliders, solidColumns, mismatched)
	fmt.Printf("Physics steps: %d, deferred commands: %d\n", space.Steps(), stepper.Deferred())
}
