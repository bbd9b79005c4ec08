package gameserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/openrift/riftd/internal/config"
	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/crypto"
	"github.com/openrift/riftd/internal/gameserver/serverpackets"
	"github.com/openrift/riftd/internal/sim"
)

// Server accepts TCP game connections: length-framed packets under the
// rolling XOR cipher, keyed per connection through a Blowfish-wrapped Init.
type Server struct {
	cfg      config.GameServer
	handler  *Handler
	clients  *Clients
	blowfish *crypto.BlowfishCipher

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a game server. The transport key wraps each session's
// XOR key inside the Init packet.
func NewServer(cfg config.GameServer, handler *Handler, clients *Clients) (*Server, error) {
	bf, err := crypto.NewBlowfishCipher([]byte(cfg.TransportKey))
	if err != nil {
		return nil, fmt.Errorf("creating transport cipher: %w", err)
	}
	return &Server{
		cfg:      cfg,
		handler:  handler,
		clients:  clients,
		blowfish: bf,
	}, nil
}

// Addr returns the listen address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.BindAddress, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is done. Exposed for tests
// with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("game server started", "address", ln.Addr())

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("accept failed", "error", err)
			continue
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetKeepAlive(true)
			tcpConn.SetKeepAlivePeriod(30 * time.Second)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleTCPConn(ctx, conn)
		}()
	}

	wg.Wait()
	return nil
}

func (s *Server) handleTCPConn(ctx context.Context, conn net.Conn) {
	t := newTCPTransport(conn)

	gameKey, keyBlock, err := s.newSessionKey()
	if err != nil {
		slog.Error("generating session key", "error", err)
		conn.Close()
		return
	}
	t.crypt.SetKey(gameKey)

	client := NewClient(t, s.cfg.SendQueueSize, time.Duration(s.cfg.WriteTimeout))
	client.initPkt = serverpackets.Init{
		SessionID: client.SessionID(),
		KeyBlock:  keyBlock,
	}.Write()

	s.serveClient(ctx, client)
}

// newSessionKey returns a fresh XOR session key and the same key encrypted
// under the transport Blowfish cipher, ready for the Init packet.
func (s *Server) newSessionKey() (gameKey, keyBlock []byte, err error) {
	gameKey = make([]byte, constants.GameKeySize)
	if _, err := rand.Read(gameKey); err != nil {
		return nil, nil, fmt.Errorf("reading random key: %w", err)
	}

	keyBlock = make([]byte, constants.GameKeySize)
	copy(keyBlock, gameKey)
	if err := s.blowfish.EncryptBlock(keyBlock); err != nil {
		return nil, nil, fmt.Errorf("wrapping session key: %w", err)
	}
	return gameKey, keyBlock, nil
}

// serveClient runs one client's read loop until disconnect. Shared by the
// TCP server and the WebSocket gateway.
func (s *Server) serveClient(ctx context.Context, client *Client) {
	s.clients.Register(client)
	go client.writePump()

	defer func() {
		entityID := client.EntityID()
		s.clients.Unregister(client)
		client.Close()
		if entityID != 0 {
			s.handler.loop.Enqueue(sim.LeaveCommand{EntityID: entityID})
		}
	}()

	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	slog.Info("new game client connection", "remote", client.Addr())

	readTimeout := time.Duration(s.cfg.ReadTimeout)
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	for {
		payload, err := client.transport.ReadPacket(readTimeout)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				slog.Info("client disconnected", "client", client.Addr(), "account", client.Account())
			} else {
				slog.Warn("read failed", "client", client.Addr(), "error", err)
			}
			return
		}

		if err := s.handler.Handle(ctx, client, payload); err != nil {
			slog.Warn("packet rejected", "client", client.Addr(), "error", err)
			return
		}
	}
}
