package players

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"voxelworld/internal/wire"
	"voxelworld/internal/world"
)

type ID string

// Player is a connected client replicated in state snapshots.
type Player struct {
	ID       ID
	Name     string
	Addr     string
	Position mgl64.Vec3
	JoinedAt time.Time
}

// Chunk returns the LOD 0 chunk containing the player.
func (p Player) Chunk() world.ChunkKey {
	return world.ChunkKey{
		X: int(math.Floor(p.Position.X() / world.SizeX)),
		Z: int(math.Floor(p.Position.Z() / world.SizeZ)),
	}
}

type Registry struct {
	mu      sync.RWMutex
	players map[ID]*Player
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[ID]*Player),
		now:     time.Now,
	}
}

// Join registers a new player with a fresh id.
func (r *Registry) Join(name, addr string, pos mgl64.Vec3) Player {
	p := &Player{
		ID:       ID(uuid.NewString()),
		Name:     name,
		Addr:     addr,
		Position: pos,
		JoinedAt: r.now(),
	}
	r.mu.Lock()
	r.players[p.ID] = p
	r.mu.Unlock()
	return *p
}

// Leave removes the player if addr is the address it joined from.
func (r *Registry) Leave(id ID, addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok || p.Addr != addr {
		return false
	}
	delete(r.players, id)
	return true
}

func (r *Registry) Player(id ID) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Players returns copies of every player ordered by id.
func (r *Registry) Players() []Player {
	r.mu.RLock()
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveChunks returns the distinct chunks currently occupied by players.
func (r *Registry) ActiveChunks() []world.ChunkKey {
	seen := make(map[world.ChunkKey]struct{})
	var keys []world.ChunkKey
	for _, p := range r.Players() {
		key := p.Chunk()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// Snapshot builds the replication view of every player at timestamp (unix ms).
func (r *Registry) Snapshot(timestamp int64) wire.Snapshot {
	players := r.Players()
	snap := wire.Snapshot{Timestamp: timestamp}
	if len(players) == 0 {
		return snap
	}
	snap.Players = make([]wire.Player, len(players))
	for i, p := range players {
		snap.Players[i] = wire.Player{
			ID: string(p.ID),
			X:  float32(p.Position.X()),
			Y:  float32(p.Position.Y()),
			Z:  float32(p.Position.Z()),
		}
	}
	return snap
}
