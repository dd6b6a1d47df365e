package world

import "testing"

func TestStateInsertFirstWriteWins(t *testing.T) {
	state := NewState()
	key := ChunkKey{X: 1, Z: 2, LOD: 0}

	first := newTestChunk(t, key)
	stored, inserted := state.Insert(first)
	if !inserted || stored != first {
		t.Fatalf("expected first insert to succeed")
	}

	second := newTestChunk(t, key)
	stored, inserted = state.Insert(second)
	if inserted {
		t.Fatalf("expected duplicate insert to be rejected")
	}
	if stored != first {
		t.Fatalf("expected duplicate insert to return the original chunk")
	}

	got, ok := state.Chunk(key)
	if !ok || got != first {
		t.Fatalf("expected lookup to return original chunk")
	}
	if state.Len() != 1 {
		t.Fatalf("expected 1 cached chunk, got %d", state.Len())
	}
}

func TestStateKeysSortedAndLODDistinct(t *testing.T) {
	state := NewState()
	keys := []ChunkKey{
		{X: 1, Z: 0, LOD: 1},
		{X: 0, Z: 5, LOD: 0},
		{X: 0, Z: 1, LOD: 0},
		{X: 0, Z: 1, LOD: 1},
	}
	for _, key := range keys {
		state.Insert(newTestChunk(t, key))
	}

	got := state.Keys()
	want := []ChunkKey{
		{X: 0, Z: 1, LOD: 0},
		{X: 0, Z: 5, LOD: 0},
		{X: 0, Z: 1, LOD: 1},
		{X: 1, Z: 0, LOD: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	visited := 0
	state.ForEach(func(*Chunk) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Fatalf("expected ForEach to stop after 2 chunks, visited %d", visited)
	}
}
