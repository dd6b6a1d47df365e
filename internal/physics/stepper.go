package physics

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"voxelworld/internal/world"
)

// ChunkLookup resolves the chunk a command belongs to.
type ChunkLookup interface {
	Chunk(key world.ChunkKey) (*world.Chunk, bool)
}

type tickerFactory func(time.Duration) (<-chan time.Time, func())

type timeSource func() time.Time

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

// Stepper is the single goroutine allowed to mutate the physics space. On
// every fixed step it applies a snapshot of the pending queue, then advances
// the space.
type Stepper struct {
	space   Space
	pending *PendingQueue
	chunks  ChunkLookup
	tick    time.Duration
	batch   int
	logger  *log.Logger

	wg        sync.WaitGroup
	newTicker tickerFactory
	now       timeSource

	applied  atomic.Uint64
	deferred atomic.Uint64
}

func NewStepper(space Space, pending *PendingQueue, chunks ChunkLookup, tick time.Duration, batch int, logger *log.Logger) *Stepper {
	if tick <= 0 {
		tick = 33 * time.Millisecond
	}
	if logger == nil {
		logger = log.New(log.Writer(), "physics ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Stepper{
		space:     space,
		pending:   pending,
		chunks:    chunks,
		tick:      tick,
		batch:     batch,
		logger:    logger,
		newTicker: defaultTickerFactory(),
		now:       time.Now,
	}
}

func (s *Stepper) Start(ctx context.Context) {
	if s == nil || s.space == nil {
		return
	}
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Stepper) run(ctx context.Context) {
	defer s.wg.Done()

	tickerC, stop := s.newTicker(s.tick)
	defer stop()

	last := s.now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tickerC:
			delta := now.Sub(last)
			if delta <= 0 || delta > 10*s.tick {
				delta = s.tick
			}
			last = now
			s.Step(delta)
		}
	}
}

func (s *Stepper) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

// Step applies pending commands and advances the space by dt. It returns the
// number of colliders created. Only the stepping goroutine may call it while
// the Stepper is running.
func (s *Stepper) Step(dt time.Duration) int {
	if s.space == nil || !s.space.Ready() {
		return 0
	}
	created := s.apply(s.pending.Drain(s.batch))
	s.space.Step(dt)
	return created
}

func (s *Stepper) apply(cmds []Command) int {
	if len(cmds) == 0 {
		return 0
	}
	created := 0
	var retry []Command
	for _, cmd := range cmds {
		switch cmd.Kind {
		case InsertCollider:
			chunk, ok := s.chunks.Chunk(cmd.ChunkKey)
			if !ok {
				// The generation queue inserts the chunk right after queueing
				// its colliders; try again next step.
				retry = append(retry, cmd)
				continue
			}
			chunk.AppendCollider(s.space.CreateCollider(cmd.Descriptor))
			created++
		default:
			s.logger.Printf("dropping physics command of unknown kind %d for chunk %s", cmd.Kind, cmd.ChunkKey)
		}
	}
	if len(retry) > 0 {
		s.pending.PushFront(retry...)
		s.deferred.Add(uint64(len(retry)))
	}
	s.applied.Add(uint64(created))
	return created
}

// Applied returns the total number of colliders created by this stepper.
func (s *Stepper) Applied() uint64 {
	return s.applied.Load()
}

// Deferred returns how many commands were pushed back waiting for their chunk.
func (s *Stepper) Deferred() uint64 {
	return s.deferred.Load()
}
