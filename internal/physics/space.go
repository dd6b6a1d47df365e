package physics

import (
	"sync/atomic"
	"time"

	"voxelworld/internal/world"
)

// Space is the physics backend. CreateCollider and Step mutate the space and
// must only be called from the goroutine running the Stepper. Ready may be
// called from anywhere.
type Space interface {
	Ready() bool
	CreateCollider(desc Descriptor) world.ColliderHandle
	Step(dt time.Duration)
}

// BoxSpace is an in-process static collision space made of axis-aligned
// boxes. Handles are assigned monotonically and never reused.
type BoxSpace struct {
	ready atomic.Bool
	count atomic.Int64
	steps atomic.Uint64

	next      world.ColliderHandle
	colliders map[world.ColliderHandle]Descriptor
	elapsed   time.Duration
}

func NewBoxSpace() *BoxSpace {
	s := &BoxSpace{
		colliders: make(map[world.ColliderHandle]Descriptor),
	}
	s.ready.Store(true)
	return s
}

func (s *BoxSpace) Ready() bool {
	return s != nil && s.ready.Load()
}

// SetReady toggles availability, e.g. while the space is being rebuilt.
func (s *BoxSpace) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *BoxSpace) CreateCollider(desc Descriptor) world.ColliderHandle {
	s.next++
	s.colliders[s.next] = desc
	s.count.Add(1)
	return s.next
}

func (s *BoxSpace) Step(dt time.Duration) {
	s.elapsed += dt
	s.steps.Add(1)
}

// Len returns the number of colliders; safe from any goroutine.
func (s *BoxSpace) Len() int {
	return int(s.count.Load())
}

// Steps returns how many times the space has been advanced.
func (s *BoxSpace) Steps() uint64 {
	return s.steps.Load()
}

// Collider returns the descriptor behind a handle. Stepper goroutine only.
func (s *BoxSpace) Collider(h world.ColliderHandle) (Descriptor, bool) {
	desc, ok := s.colliders[h]
	return desc, ok
}
