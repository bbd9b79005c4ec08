package clientpackets

import (
	"fmt"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// Handshake is the first packet on a connection. The server answers with
// Init and refuses clients speaking a different protocol revision.
type Handshake struct {
	ProtocolVersion int32
}

func ParseHandshake(r *packet.Reader) (Handshake, error) {
	var p Handshake
	var err error

	p.ProtocolVersion, err = r.ReadInt()
	if err != nil {
		return p, fmt.Errorf("read protocol version: %w", err)
	}
	if p.ProtocolVersion != constants.ProtocolVersion {
		return p, fmt.Errorf("unsupported protocol version %d", p.ProtocolVersion)
	}

	return p, nil
}
