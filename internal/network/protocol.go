package network

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageChunkRequest  MessageType = "chunkRequest"
	MessageChunkData     MessageType = "chunkData"
	MessageChunkError    MessageType = "chunkError"
	MessageJoin          MessageType = "join"
	MessageJoinAck       MessageType = "joinAck"
	MessageLeave         MessageType = "leave"
	MessageSubscribe     MessageType = "subscribe"
	MessageStateSnapshot MessageType = "stateSnapshot"
)

type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

// ChunkRequest asks for one chunk at a level of detail. RequestID is echoed
// back so clients can match replies arriving out of order.
type ChunkRequest struct {
	RequestID uint64 `json:"requestId"`
	ChunkX    int    `json:"chunkX"`
	ChunkZ    int    `json:"chunkZ"`
	LOD       int    `json:"lod"`
}

// ChunkData carries a ChunkState flatbuffer.
type ChunkData struct {
	RequestID uint64 `json:"requestId"`
	ChunkX    int    `json:"chunkX"`
	ChunkZ    int    `json:"chunkZ"`
	LOD       int    `json:"lod"`
	Data      []byte `json:"data"`
}

// ChunkErrorReason tells the client whether retrying can help.
type ChunkErrorReason string

const (
	ChunkErrorSynthesis     ChunkErrorReason = "synthesis"
	ChunkErrorInconsistency ChunkErrorReason = "inconsistency"
	ChunkErrorTimeout       ChunkErrorReason = "timeout"
	ChunkErrorInvalid       ChunkErrorReason = "invalid"
)

type ChunkError struct {
	RequestID uint64           `json:"requestId"`
	ChunkX    int              `json:"chunkX"`
	ChunkZ    int              `json:"chunkZ"`
	LOD       int              `json:"lod"`
	Reason    ChunkErrorReason `json:"reason"`
	Message   string           `json:"message"`
}

type Join struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

type JoinAck struct {
	PlayerID string `json:"playerId"`
	ServerID string `json:"serverId"`
	Seed     int64  `json:"seed"`
}

type Leave struct {
	PlayerID string `json:"playerId"`
}

// StateSnapshotMessage carries a StateSnapshot flatbuffer.
type StateSnapshotMessage struct {
	Data []byte `json:"data"`
}

func Encode(msg Envelope) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}
