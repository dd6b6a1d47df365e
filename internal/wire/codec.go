package wire

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"voxelworld/internal/world"
)

// ErrMalformed is returned when a buffer cannot be read as the expected table.
var ErrMalformed = errors.New("malformed flatbuffer")

// minBufferSize covers the root offset plus an empty vtable reference.
const minBufferSize = 8

// vectorFits reports whether a vector of n elements of elemSize bytes can lie
// inside a buffer of bufLen bytes. Lengths come from the buffer itself, so
// they are checked before anything is allocated from them.
func vectorFits(n, elemSize, bufLen int) bool {
	return n >= 0 && n <= bufLen/elemSize
}

// Player is the decoded form of a PlayerState table.
type Player struct {
	ID      string
	X, Y, Z float32
}

// Snapshot is the decoded form of a StateSnapshot table.
type Snapshot struct {
	Timestamp int64
	Players   []Player
}

// ChunkData is the decoded form of a ChunkState table.
type ChunkData struct {
	Key          world.ChunkKey
	LastModified int64
	Heightmap    []int
	Voxels       []world.BlockID
	Colliders    int
	Digest       uint64
}

// EncodeSnapshot serializes s. builder may be nil; a non-nil builder is reset
// and reused, and the returned bytes alias its buffer.
func EncodeSnapshot(builder *flatbuffers.Builder, s Snapshot) []byte {
	if builder == nil {
		builder = flatbuffers.NewBuilder(64 + 48*len(s.Players))
	} else {
		builder.Reset()
	}

	offsets := make([]flatbuffers.UOffsetT, len(s.Players))
	for i, p := range s.Players {
		id := builder.CreateString(p.ID)
		PlayerStateStart(builder)
		PlayerStateAddId(builder, id)
		PlayerStateAddX(builder, p.X)
		PlayerStateAddY(builder, p.Y)
		PlayerStateAddZ(builder, p.Z)
		offsets[i] = PlayerStateEnd(builder)
	}

	StateSnapshotStartPlayersVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	players := builder.EndVector(len(offsets))

	StateSnapshotStart(builder)
	StateSnapshotAddTimestamp(builder, s.Timestamp)
	StateSnapshotAddPlayers(builder, players)
	builder.Finish(StateSnapshotEnd(builder))
	return builder.FinishedBytes()
}

// DecodeSnapshot copies a StateSnapshot buffer into a Snapshot.
func DecodeSnapshot(buf []byte) (snap Snapshot, err error) {
	if len(buf) < minBufferSize {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w: %d bytes", ErrMalformed, len(buf))
	}
	defer func() {
		if r := recover(); r != nil {
			snap = Snapshot{}
			err = fmt.Errorf("decode snapshot: %w: %v", ErrMalformed, r)
		}
	}()

	root := GetRootAsStateSnapshot(buf, 0)
	snap.Timestamp = root.Timestamp()
	n := root.PlayersLength()
	if !vectorFits(n, flatbuffers.SizeUOffsetT, len(buf)) {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w: %d players in %d bytes", ErrMalformed, n, len(buf))
	}
	if n > 0 {
		snap.Players = make([]Player, n)
	}
	var ps PlayerState
	for i := 0; i < n; i++ {
		if !root.Players(&ps, i) {
			return Snapshot{}, fmt.Errorf("decode snapshot: %w: player %d", ErrMalformed, i)
		}
		snap.Players[i] = Player{
			ID: string(ps.Id()),
			X:  ps.X(),
			Y:  ps.Y(),
			Z:  ps.Z(),
		}
	}
	return snap, nil
}

// EncodeChunk serializes a cached chunk for a client. builder follows the same
// rules as in EncodeSnapshot.
func EncodeChunk(builder *flatbuffers.Builder, chunk *world.Chunk) []byte {
	if builder == nil {
		builder = flatbuffers.NewBuilder(world.Volume + 4*world.Area + 128)
	} else {
		builder.Reset()
	}

	voxels := make([]byte, len(chunk.Voxels))
	for i, b := range chunk.Voxels {
		voxels[i] = byte(b)
	}
	voxelVec := builder.CreateByteVector(voxels)

	ChunkStateStartHeightmapVector(builder, len(chunk.Heightmap))
	for i := len(chunk.Heightmap) - 1; i >= 0; i-- {
		builder.PrependInt32(int32(chunk.Heightmap[i]))
	}
	heightVec := builder.EndVector(len(chunk.Heightmap))

	ChunkStateStart(builder)
	ChunkStateAddX(builder, int32(chunk.Key.X))
	ChunkStateAddZ(builder, int32(chunk.Key.Z))
	ChunkStateAddLod(builder, int32(chunk.Key.LOD))
	ChunkStateAddLastModified(builder, chunk.LastModified)
	ChunkStateAddHeightmap(builder, heightVec)
	ChunkStateAddVoxels(builder, voxelVec)
	ChunkStateAddColliders(builder, int32(chunk.ColliderCount()))
	ChunkStateAddDigest(builder, chunk.Digest())
	builder.Finish(ChunkStateEnd(builder))
	return builder.FinishedBytes()
}

// DecodeChunk copies a ChunkState buffer into a ChunkData.
func DecodeChunk(buf []byte) (data ChunkData, err error) {
	if len(buf) < minBufferSize {
		return ChunkData{}, fmt.Errorf("decode chunk: %w: %d bytes", ErrMalformed, len(buf))
	}
	defer func() {
		if r := recover(); r != nil {
			data = ChunkData{}
			err = fmt.Errorf("decode chunk: %w: %v", ErrMalformed, r)
		}
	}()

	root := GetRootAsChunkState(buf, 0)
	data.Key = world.ChunkKey{X: int(root.X()), Z: int(root.Z()), LOD: int(root.Lod())}
	data.LastModified = root.LastModified()
	data.Colliders = int(root.Colliders())
	data.Digest = root.Digest()

	heights := root.HeightmapLength()
	if !vectorFits(heights, flatbuffers.SizeInt32, len(buf)) {
		return ChunkData{}, fmt.Errorf("decode chunk: %w: %d heights in %d bytes", ErrMalformed, heights, len(buf))
	}
	if voxels := root.VoxelsLength(); !vectorFits(voxels, flatbuffers.SizeByte, len(buf)) {
		return ChunkData{}, fmt.Errorf("decode chunk: %w: %d voxels in %d bytes", ErrMalformed, voxels, len(buf))
	}

	data.Heightmap = make([]int, heights)
	for i := range data.Heightmap {
		data.Heightmap[i] = int(root.Heightmap(i))
	}
	raw := root.VoxelsBytes()
	data.Voxels = make([]world.BlockID, len(raw))
	for i, b := range raw {
		data.Voxels[i] = world.BlockID(b)
	}
	return data, nil
}
