package physics

import (
	"sync"

	"voxelworld/internal/world"
)

// CommandKind tags a deferred physics operation.
type CommandKind uint8

const (
	InsertCollider CommandKind = iota + 1
)

func (k CommandKind) String() string {
	switch k {
	case InsertCollider:
		return "insertCollider"
	default:
		return "unknown"
	}
}

// Command is a physics mutation recorded off the stepping goroutine and
// applied later by the Stepper. It refers to its chunk by key only.
type Command struct {
	Kind       CommandKind
	ChunkKey   world.ChunkKey
	Descriptor Descriptor
}

// PendingQueue is the process-wide FIFO of deferred physics commands.
type PendingQueue struct {
	mu      sync.Mutex
	pending []Command
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

// Push appends commands in order.
func (q *PendingQueue) Push(cmds ...Command) {
	if len(cmds) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, cmds...)
}

// PushFront puts commands back at the head of the queue, keeping their order
// ahead of anything queued since they were drained.
func (q *PendingQueue) PushFront(cmds ...Command) {
	if len(cmds) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	merged := make([]Command, 0, len(cmds)+len(q.pending))
	merged = append(merged, cmds...)
	merged = append(merged, q.pending...)
	q.pending = merged
}

// Drain removes and returns up to max commands; max <= 0 drains everything.
// The returned slice is a snapshot owned by the caller.
func (q *PendingQueue) Drain(max int) []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	if max <= 0 || max >= len(q.pending) {
		batch := q.pending
		q.pending = nil
		return batch
	}
	batch := append([]Command(nil), q.pending[:max]...)
	q.pending = append([]Command(nil), q.pending[max:]...)
	return batch
}

func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
