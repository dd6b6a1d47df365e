package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	flatbuffers "github.com/google/flatbuffers/go"

	"voxelworld/internal/config"
	"voxelworld/internal/generation"
	"voxelworld/internal/network"
	"voxelworld/internal/physics"
	"voxelworld/internal/players"
	"voxelworld/internal/terrain"
	"voxelworld/internal/wire"
	"voxelworld/internal/world"
)

// Stats summarizes the live server for diagnostics and tests.
type Stats struct {
	Chunks      int
	InFlight    int
	Pending     int
	Colliders   int
	Players     int
	Subscribers int
	Generation  generation.Stats
}

type Server struct {
	cfg    *config.Config
	logger *log.Logger

	net     *network.Server
	hub     *network.Hub
	httpSrv *http.Server

	state   *world.State
	players *players.Registry
	queue   *generation.Queue

	space   *physics.BoxSpace
	pending *physics.PendingQueue
	stepper *physics.Stepper

	snapshotBuilder *flatbuffers.Builder
	previews        sync.Map // world.ChunkKey -> struct{}
}

func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger := log.New(log.Writer(), "world-server ", log.LstdFlags|log.Lmicroseconds)
	netSrv, err := network.Listen(cfg.Network.ListenUDP, logger, cfg.Network.MaxDatagramSizeBytes)
	if err != nil {
		return nil, err
	}

	state := world.NewState()
	srv := &Server{
		cfg:             cfg,
		logger:          logger,
		net:             netSrv,
		state:           state,
		players:         players.NewRegistry(),
		pending:         physics.NewPendingQueue(),
		snapshotBuilder: flatbuffers.NewBuilder(1024),
	}

	var builder *physics.Builder
	if cfg.Physics.Enabled {
		physicsLogger := log.New(log.Writer(), "physics ", log.LstdFlags|log.Lmicroseconds)
		srv.space = physics.NewBoxSpace()
		builder = physics.NewBuilder(srv.space, srv.pending, physicsLogger)
		srv.stepper = physics.NewStepper(srv.space, srv.pending, state, cfg.Server.TickRate.Duration(), cfg.Physics.DrainBatch, physicsLogger)
	}

	genLogger := log.New(log.Writer(), "generation ", log.LstdFlags|log.Lmicroseconds)
	srv.queue = generation.NewQueue(state, terrain.NewSynthesizer(cfg.Terrain.Workers), builder, cfg.Server.MaxConcurrentLoads, genLogger)

	if cfg.Network.ListenHTTP != "" {
		srv.hub = network.NewHub(logger)
		mux := http.NewServeMux()
		mux.Handle("/ws", srv.hub)
		srv.httpSrv = &http.Server{
			Addr:              cfg.Network.ListenHTTP,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	srv.registerHandlers()
	return srv, nil
}

func (s *Server) registerHandlers() {
	s.net.Register(network.MessageChunkRequest, s.onChunkRequest)
	s.net.Register(network.MessageJoin, s.onJoin)
	s.net.Register(network.MessageLeave, s.onLeave)
	s.net.Register(network.MessageSubscribe, s.onSubscribe)
}

// Addr returns the bound UDP address.
func (s *Server) Addr() *net.UDPAddr {
	return s.net.LocalAddr()
}

func (s *Server) Run(ctx context.Context) error {
	defer s.net.Close()

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		if err := s.net.Serve(ctx); err != nil && ctx.Err() == nil {
			s.logger.Printf("network server stopped: %v", err)
			cancel()
		}
	}()

	if s.httpSrv != nil {
		go func() {
			if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Printf("websocket listener stopped: %v", err)
				cancel()
			}
		}()
	}

	s.stepper.Start(ctx)
	defer func() {
		cancel()
		s.stepper.Wait()
		if s.httpSrv != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			s.httpSrv.Shutdown(shutdownCtx)
			done()
			s.hub.Close()
		}
	}()

	s.logger.Printf("server %s listening on %s (seed %d)", s.cfg.Server.ID, s.Addr(), s.cfg.Terrain.Seed)

	snapshotTicker := time.NewTicker(s.cfg.Server.SnapshotRate.Duration())
	defer snapshotTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-snapshotTicker.C:
			s.prefetchActive()
			s.broadcastSnapshot(now)
		}
	}
}

// broadcastSnapshot must only be called from the Run loop; it reuses a single
// flatbuffers builder.
func (s *Server) broadcastSnapshot(now time.Time) {
	udp := s.net.Subscribers() > 0
	ws := s.hub != nil && s.hub.Len() > 0
	if !udp && !ws {
		return
	}
	frame := wire.EncodeSnapshot(s.snapshotBuilder, s.players.Snapshot(now.UnixMilli()))
	if udp {
		if _, err := s.net.Broadcast(network.MessageStateSnapshot, network.StateSnapshotMessage{Data: frame}); err != nil {
			s.logger.Printf("broadcast snapshot: %v", err)
		}
	}
	if ws {
		s.hub.Broadcast(frame)
	}
}

func (s *Server) onChunkRequest(ctx context.Context, addr *net.UDPAddr, env network.Envelope) {
	var req network.ChunkRequest
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		s.logger.Printf("decode chunk request from %s: %v", addr, err)
		return
	}
	if req.LOD < 0 {
		s.replyChunkError(addr, req, network.ChunkErrorInvalid, fmt.Errorf("negative lod %d", req.LOD))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.RequestTimeout.Duration())
	defer cancel()
	chunk, err := s.queue.Request(reqCtx, s.cfg.Terrain.Seed, req.ChunkX, req.ChunkZ, req.LOD)
	if err != nil {
		s.replyChunkError(addr, req, chunkErrorReason(err), err)
		return
	}
	s.savePreview(chunk)

	reply := network.ChunkData{
		RequestID: req.RequestID,
		ChunkX:    req.ChunkX,
		ChunkZ:    req.ChunkZ,
		LOD:       req.LOD,
		Data:      wire.EncodeChunk(nil, chunk),
	}
	if err := s.net.SendTo(addr, network.MessageChunkData, reply); err != nil {
		s.logger.Printf("send chunk %s to %s: %v", chunk.Key, addr, err)
	}
}

func chunkErrorReason(err error) network.ChunkErrorReason {
	switch {
	case errors.Is(err, generation.ErrLookupInconsistency):
		return network.ChunkErrorInconsistency
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return network.ChunkErrorTimeout
	default:
		return network.ChunkErrorSynthesis
	}
}

func (s *Server) replyChunkError(addr *net.UDPAddr, req network.ChunkRequest, reason network.ChunkErrorReason, cause error) {
	s.logger.Printf("chunk %d,%d,L%d for %s failed: %v", req.ChunkX, req.ChunkZ, req.LOD, addr, cause)
	reply := network.ChunkError{
		RequestID: req.RequestID,
		ChunkX:    req.ChunkX,
		ChunkZ:    req.ChunkZ,
		LOD:       req.LOD,
		Reason:    reason,
		Message:   cause.Error(),
	}
	if err := s.net.SendTo(addr, network.MessageChunkError, reply); err != nil {
		s.logger.Printf("send chunk error to %s: %v", addr, err)
	}
}

func (s *Server) onJoin(ctx context.Context, addr *net.UDPAddr, env network.Envelope) {
	var join network.Join
	if err := json.Unmarshal(env.Payload, &join); err != nil {
		s.logger.Printf("decode join from %s: %v", addr, err)
		return
	}
	player := s.players.Join(join.Name, addr.String(), mgl64.Vec3{join.X, join.Y, join.Z})
	s.net.Subscribe(addr)
	s.logger.Printf("player %s (%s) joined from %s", player.ID, player.Name, addr)

	ack := network.JoinAck{
		PlayerID: string(player.ID),
		ServerID: s.cfg.Server.ID,
		Seed:     s.cfg.Terrain.Seed,
	}
	if err := s.net.SendTo(addr, network.MessageJoinAck, ack); err != nil {
		s.logger.Printf("send join ack to %s: %v", addr, err)
	}
	s.prefetch(player.Chunk())
}

// prefetch starts generation of the LOD 0 chunks within the configured radius
// of center without waiting for them.
func (s *Server) prefetch(center world.ChunkKey) {
	r := s.cfg.Terrain.PrefetchRadius
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			s.queue.Enqueue(s.cfg.Terrain.Seed, center.X+dx, center.Z+dz, 0)
		}
	}
}

// prefetchActive keeps the neighbourhood of every occupied chunk generated.
// Keys already cached resolve immediately; keys whose generation failed are
// retried.
func (s *Server) prefetchActive() {
	for _, key := range s.players.ActiveChunks() {
		s.prefetch(key)
	}
}

func (s *Server) onLeave(ctx context.Context, addr *net.UDPAddr, env network.Envelope) {
	var leave network.Leave
	if err := json.Unmarshal(env.Payload, &leave); err != nil {
		s.logger.Printf("decode leave from %s: %v", addr, err)
		return
	}
	if !s.players.Leave(players.ID(leave.PlayerID), addr.String()) {
		s.logger.Printf("ignoring leave for player %s from %s", leave.PlayerID, addr)
		return
	}
	s.logger.Printf("player %s left", leave.PlayerID)
	s.net.Unsubscribe(addr.String())
}

func (s *Server) onSubscribe(ctx context.Context, addr *net.UDPAddr, env network.Envelope) {
	s.net.Subscribe(addr)
}

func (s *Server) savePreview(chunk *world.Chunk) {
	dir := s.cfg.World.PreviewDir
	if dir == "" {
		return
	}
	if _, seen := s.previews.LoadOrStore(chunk.Key, struct{}{}); seen {
		return
	}
	if _, err := world.SaveHeightmapPreview(chunk, dir); err != nil {
		s.previews.Delete(chunk.Key)
		s.logger.Printf("chunk %s preview: %v", chunk.Key, err)
	}
}

func (s *Server) Stats() Stats {
	st := Stats{
		Chunks:      s.state.Len(),
		InFlight:    s.queue.InFlight(),
		Pending:     s.pending.Len(),
		Players:     s.players.Len(),
		Subscribers: s.net.Subscribers(),
		Generation:  s.queue.Stats(),
	}
	s.state.ForEach(func(ch *world.Chunk) bool {
		st.Colliders += ch.ColliderCount()
		return true
	})
	return st
}
