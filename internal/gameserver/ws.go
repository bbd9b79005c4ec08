package gameserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openrift/riftd/internal/config"
	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/gameserver/serverpackets"
)

// WSGateway serves the same protocol over WebSocket for browser clients.
// Framing and crypt differ from TCP (the frame layer carries message
// boundaries, TLS carries privacy); everything from the opcode inward is
// identical, so both transports share the Server's session loop.
type WSGateway struct {
	cfg    config.WSGateway
	server *Server

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewWSGateway creates a WebSocket gateway in front of the given server.
func NewWSGateway(cfg config.WSGateway, server *Server) *WSGateway {
	return &WSGateway{
		cfg:    cfg,
		server: server,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  constants.MaxPacketSize,
			WriteBufferSize: constants.MaxPacketSize,
			// The binary protocol carries no cookies and no ambient
			// authority, so cross-origin upgrades are allowed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run serves WebSocket upgrades on the configured address until ctx is done.
func (g *WSGateway) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(g.cfg.Path, func(w http.ResponseWriter, r *http.Request) {
		g.handleUpgrade(ctx, w, r)
	})

	g.httpSrv = &http.Server{
		Addr:        g.cfg.BindAddress,
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		g.httpSrv.Shutdown(shutCtx)
	}()

	slog.Info("websocket gateway started", "address", g.cfg.BindAddress, "path", g.cfg.Path)

	err := g.httpSrv.ListenAndServe()
	wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *WSGateway) handleUpgrade(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(newWSTransport(conn), g.server.cfg.SendQueueSize, time.Duration(g.server.cfg.WriteTimeout))
	// No key exchange on WebSocket; the Init key block is all zeros and the
	// client ignores it.
	client.initPkt = serverpackets.Init{
		SessionID: client.SessionID(),
		KeyBlock:  make([]byte, constants.GameKeySize),
	}.Write()

	g.server.serveClient(ctx, client)
}
