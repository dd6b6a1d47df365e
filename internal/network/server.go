package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrDatagramTooLarge is returned when an encoded envelope exceeds the
// configured datagram size.
var ErrDatagramTooLarge = errors.New("datagram too large")

type Handler func(ctx context.Context, addr *net.UDPAddr, env Envelope)

type Server struct {
	conn    *net.UDPConn
	logger  *log.Logger
	maxSize int
	seq     atomic.Uint64

	mu       sync.RWMutex
	handlers map[MessageType][]Handler

	subMu       sync.Mutex
	subscribers map[string]*net.UDPAddr
}

func Listen(listenAddr string, logger *log.Logger, maxSize int) (*Server, error) {
	if maxSize <= 0 {
		maxSize = 64 * 1024
	}
	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve udp addr: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	if logger == nil {
		logger = log.New(log.Writer(), "network ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Server{
		conn:        conn,
		logger:      logger,
		maxSize:     maxSize,
		handlers:    make(map[MessageType][]Handler),
		subscribers: make(map[string]*net.UDPAddr),
	}, nil
}

func (s *Server) Close() error {
	return s.conn.Close()
}

func (s *Server) LocalAddr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

func (s *Server) Register(msgType MessageType, handler Handler) {
	s.mu.Lock()
	s.handlers[msgType] = append(s.handlers[msgType], handler)
	s.mu.Unlock()
}

// Serve reads datagrams until ctx ends, dispatching each envelope to its
// handlers on separate goroutines.
func (s *Server) Serve(ctx context.Context) error {
	buffer := make([]byte, s.maxSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, addr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if nErr, ok := err.(net.Error); ok && nErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		env, err := Decode(buffer[:n])
		if err != nil {
			s.logger.Printf("decode message from %s: %v", addr, err)
			continue
		}

		handlers := s.handlersFor(env.Type)
		if len(handlers) == 0 {
			s.logger.Printf("no handler for %q from %s", env.Type, addr)
			continue
		}

		for _, handler := range handlers {
			go handler(ctx, addr, env)
		}
	}
}

func (s *Server) handlersFor(msgType MessageType) []Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Handler(nil), s.handlers[msgType]...)
}

// Subscribe adds addr to the snapshot broadcast list.
func (s *Server) Subscribe(addr *net.UDPAddr) {
	s.subMu.Lock()
	s.subscribers[addr.String()] = addr
	s.subMu.Unlock()
}

func (s *Server) Unsubscribe(addr string) {
	s.subMu.Lock()
	delete(s.subscribers, addr)
	s.subMu.Unlock()
}

func (s *Server) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers)
}

// Broadcast sends one envelope to every subscriber and returns how many
// datagrams were written.
func (s *Server) Broadcast(msg MessageType, payload any) (int, error) {
	data, err := s.prepare(msg, payload)
	if err != nil {
		return 0, err
	}
	s.subMu.Lock()
	targets := make([]*net.UDPAddr, 0, len(s.subscribers))
	for _, addr := range s.subscribers {
		targets = append(targets, addr)
	}
	s.subMu.Unlock()

	sent := 0
	for _, addr := range targets {
		if _, err := s.conn.WriteToUDP(data, addr); err != nil {
			s.logger.Printf("broadcast %s to %s: %v", msg, addr, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Server) Send(addr string, msg MessageType, payload any) error {
	target, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	return s.SendTo(target, msg, payload)
}

func (s *Server) SendTo(addr *net.UDPAddr, msg MessageType, payload any) error {
	data, err := s.prepare(msg, payload)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(data, addr)
	return err
}

func (s *Server) prepare(msgType MessageType, payload any) ([]byte, error) {
	raw, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	env := Envelope{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq.Add(1),
		Payload:   raw,
	}
	data, err := Encode(env)
	if err != nil {
		return nil, err
	}
	if len(data) > s.maxSize {
		return nil, fmt.Errorf("%s: %w: %d > %d bytes", msgType, ErrDatagramTooLarge, len(data), s.maxSize)
	}
	return data, nil
}

func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return []byte("null"), nil
	case json.RawMessage:
		return p, nil
	default:
		return json.Marshal(payload)
	}
}
