package gameserver

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	defaultReadTimeout   = 120 * time.Second
)

// ClientState tracks the connection's protocol phase.
type ClientState int32

const (
	// StateConnected: socket open, nothing exchanged yet.
	StateConnected ClientState = iota
	// StateKeyed: handshake done, Init sent, crypt armed.
	StateKeyed
	// StateInWorld: entity spawned into the simulation.
	StateInWorld
	// StateDisconnected: closing or closed.
	StateDisconnected
)

// Client is one connected game client, regardless of transport. Outbound
// packets go through a per-client queue drained by writePump, so the
// simulation loop never blocks on a slow socket.
type Client struct {
	transport transport
	sessionID int32

	// initPkt is the prebuilt Init packet for this connection, sent in
	// answer to the client's handshake.
	initPkt []byte

	state atomic.Int32

	mu       sync.Mutex
	account  string
	entityID uint32

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
}

// NewClient wraps a transport in client state. The caller starts writePump
// once the plaintext handshake is done.
func NewClient(t transport, sendQueueSize int, writeTimeout time.Duration) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Client{
		transport:    t,
		sessionID:    rand.Int32(),
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

// SessionID returns the random id assigned at connect.
func (c *Client) SessionID() int32 {
	return c.sessionID
}

// Addr returns the client's remote address.
func (c *Client) Addr() string {
	return c.transport.RemoteAddr()
}

// State returns the current protocol phase.
func (c *Client) State() ClientState {
	return ClientState(c.state.Load())
}

// SetState sets the protocol phase.
func (c *Client) SetState(s ClientState) {
	c.state.Store(int32(s))
}

// Account returns the account bound at EnterWorld, or "".
func (c *Client) Account() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// EntityID returns the simulation entity this client owns, or 0.
func (c *Client) EntityID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entityID
}

// Bind associates the client with its account and world entity.
func (c *Client) Bind(account string, entityID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account = account
	c.entityID = entityID
}

// Send queues a packet for async delivery. Non-blocking: a full queue means
// the client cannot keep up with the broadcast rate, so it is disconnected.
func (c *Client) Send(pkt []byte) error {
	select {
	case c.sendCh <- pkt:
		return nil
	case <-c.closeCh:
		return fmt.Errorf("client closed")
	default:
		slog.Warn("send queue full, disconnecting slow client", "client", c.Addr())
		c.CloseAsync()
		return fmt.Errorf("send queue full")
	}
}

// writePump drains the send queue onto the transport. One goroutine per
// client; transport writes (and the crypt state behind them) happen only
// here, in order.
func (c *Client) writePump() {
	for {
		select {
		case <-c.closeCh:
			return
		case pkt := <-c.sendCh:
			if err := c.transport.WritePacket(pkt, c.writeTimeout); err != nil {
				slog.Warn("write failed", "client", c.Addr(), "error", err)
				c.CloseAsync()
				return
			}
		}
	}
}

// CloseAsync signals writePump to stop without closing the socket. Safe to
// call multiple times.
func (c *Client) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateDisconnected))
		close(c.closeCh)
	})
}

// Close stops writePump and closes the underlying connection.
func (c *Client) Close() error {
	c.CloseAsync()
	return c.transport.Close()
}
