package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"strings"
	"testing"
	"time"
)

func startTestServer(t *testing.T, maxSize int) (*Server, context.CancelFunc) {
	t.Helper()
	srv, err := Listen("127.0.0.1:0", log.New(&bytes.Buffer{}, "", 0), maxSize)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})
	return srv, cancel
}

func dialClient(t *testing.T, srv *Server) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, srv.LocalAddr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEnvelope(t *testing.T, conn *net.UDPConn, msgType MessageType, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := Encode(Envelope{Type: msgType, Timestamp: time.Now().UTC(), Payload: raw})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readEnvelope(t *testing.T, conn *net.UDPConn) Envelope {
	t.Helper()
	buf := make([]byte, 64*1024)
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestServerDispatchesAndReplies(t *testing.T) {
	srv, _ := startTestServer(t, 0)
	srv.Register(MessageChunkRequest, func(ctx context.Context, addr *net.UDPAddr, env Envelope) {
		var req ChunkRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return
		}
		srv.SendTo(addr, MessageChunkData, ChunkData{
			RequestID: req.RequestID,
			ChunkX:    req.ChunkX,
			ChunkZ:    req.ChunkZ,
			LOD:       req.LOD,
			Data:      []byte{1, 2, 3},
		})
	})

	client := dialClient(t, srv)
	sendEnvelope(t, client, MessageChunkRequest, ChunkRequest{RequestID: 7, ChunkX: 2, ChunkZ: -3, LOD: 1})

	env := readEnvelope(t, client)
	if env.Type != MessageChunkData {
		t.Fatalf("expected %s, got %s", MessageChunkData, env.Type)
	}
	var reply ChunkData
	if err := json.Unmarshal(env.Payload, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply.RequestID != 7 || reply.ChunkX != 2 || reply.ChunkZ != -3 || reply.LOD != 1 {
		t.Fatalf("unexpected reply header %+v", reply)
	}
	if !bytes.Equal(reply.Data, []byte{1, 2, 3}) {
		t.Fatalf("expected payload bytes to survive, got %v", reply.Data)
	}
	if env.Seq == 0 {
		t.Fatalf("expected non-zero sequence number")
	}
}

func TestServerBroadcastReachesSubscribers(t *testing.T) {
	srv, _ := startTestServer(t, 0)
	srv.Register(MessageSubscribe, func(ctx context.Context, addr *net.UDPAddr, env Envelope) {
		srv.Subscribe(addr)
	})

	client := dialClient(t, srv)
	sendEnvelope(t, client, MessageSubscribe, struct{}{})

	deadline := time.Now().Add(3 * time.Second)
	for srv.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sent, err := srv.Broadcast(MessageStateSnapshot, StateSnapshotMessage{Data: []byte("snap")})
	if err != nil || sent != 1 {
		t.Fatalf("expected 1 datagram sent, got %d (err=%v)", sent, err)
	}
	env := readEnvelope(t, client)
	if env.Type != MessageStateSnapshot {
		t.Fatalf("expected snapshot message, got %s", env.Type)
	}

	srv.Unsubscribe(client.LocalAddr().String())
	if srv.Subscribers() != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
}

func TestServerRejectsOversizedDatagram(t *testing.T) {
	srv, _ := startTestServer(t, 256)

	err := srv.Send("127.0.0.1:9", MessageChunkData, ChunkData{Data: []byte(strings.Repeat("x", 512))})
	if !errors.Is(err, ErrDatagramTooLarge) {
		t.Fatalf("expected ErrDatagramTooLarge, got %v", err)
	}
}
