package world

import (
	"sort"
	"sync"
)

// State keeps the authoritative chunk set for this server. Insert is the only
// write path for voxel data.
type State struct {
	mu     sync.RWMutex
	chunks map[ChunkKey]*Chunk
}

func NewState() *State {
	return &State{
		chunks: make(map[ChunkKey]*Chunk),
	}
}

// Chunk looks up a materialized chunk.
func (s *State) Chunk(key ChunkKey) (*Chunk, bool) {
	s.mu.RLock()
	ch, ok := s.chunks[key]
	s.mu.RUnlock()
	return ch, ok
}

// Insert stores ch unless a chunk with the same key already exists. It returns
// the stored chunk and whether ch was the one inserted.
func (s *State) Insert(ch *Chunk) (*Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.chunks[ch.Key]; ok {
		return existing, false
	}
	s.chunks[ch.Key] = ch
	return ch, true
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Keys returns all cached keys ordered by LOD, then X, then Z.
func (s *State) Keys() []ChunkKey {
	s.mu.RLock()
	keys := make([]ChunkKey, 0, len(s.chunks))
	for key := range s.chunks {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.LOD != b.LOD {
			return a.LOD < b.LOD
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return keys
}

// ForEach calls fn for every cached chunk until fn returns false. The lock is
// not held while fn runs.
func (s *State) ForEach(fn func(*Chunk) bool) {
	s.mu.RLock()
	chunks := make([]*Chunk, 0, len(s.chunks))
	for _, ch := range s.chunks {
		chunks = append(chunks, ch)
	}
	s.mu.RUnlock()

	for _, ch := range chunks {
		if !fn(ch) {
			return
		}
	}
}
