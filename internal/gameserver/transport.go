package gameserver

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/crypto"
)

// transport abstracts how packets travel: raw TCP with length framing and
// the rolling XOR cipher, or WebSocket with one binary frame per packet.
// ReadPacket is driven from the connection's read goroutine, WritePacket
// from its writePump; neither is safe for concurrent use with itself.
type transport interface {
	ReadPacket(timeout time.Duration) ([]byte, error)
	WritePacket(payload []byte, timeout time.Duration) error
	RemoteAddr() string
	Close() error
}

// tcpTransport frames packets with a 2-byte little-endian length prefix
// covering the payload, and runs the payload through GameCrypt.
type tcpTransport struct {
	conn     net.Conn
	crypt    *crypto.GameCrypt
	head     [2]byte
	readBuf  []byte
	writeBuf []byte
}

func newTCPTransport(conn net.Conn) *tcpTransport {
	return &tcpTransport{
		conn:     conn,
		crypt:    crypto.NewGameCrypt(),
		readBuf:  make([]byte, constants.MaxPacketSize),
		writeBuf: make([]byte, constants.MaxPacketSize),
	}
}

func (t *tcpTransport) ReadPacket(timeout time.Duration) ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}

	if _, err := io.ReadFull(t.conn, t.head[:]); err != nil {
		return nil, err
	}
	size := int(binary.LittleEndian.Uint16(t.head[:]))
	if size == 0 || size > constants.MaxPacketSize {
		return nil, fmt.Errorf("bad packet size %d", size)
	}

	payload := t.readBuf[:size]
	if _, err := io.ReadFull(t.conn, payload); err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	t.crypt.Decrypt(payload)
	return payload, nil
}

func (t *tcpTransport) WritePacket(payload []byte, timeout time.Duration) error {
	if len(payload) > constants.MaxPacketSize {
		return fmt.Errorf("packet too large: %d bytes", len(payload))
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}

	// Broadcast packets are shared across clients; encrypt a private copy.
	body := t.writeBuf[:len(payload)]
	copy(body, payload)
	t.crypt.Encrypt(body)

	var head [2]byte
	binary.LittleEndian.PutUint16(head[:], uint16(len(payload)))
	bufs := net.Buffers{head[:], body}
	if _, err := bufs.WriteTo(t.conn); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

func (t *tcpTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

// wsTransport carries each packet as one binary WebSocket frame. The frame
// layer already provides message boundaries and TLS covers transport
// privacy, so there is no length prefix and no GameCrypt.
type wsTransport struct {
	conn *websocket.Conn
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	conn.SetReadLimit(constants.MaxPacketSize)
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadPacket(timeout time.Duration) ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}
	for {
		mt, payload, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		if len(payload) == 0 {
			return nil, fmt.Errorf("empty packet")
		}
		return payload, nil
	}
}

func (t *wsTransport) WritePacket(payload []byte, timeout time.Duration) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	return t.conn.WriteMessage(websocket.BinaryMessage, payload)
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
