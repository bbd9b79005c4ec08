package clientpackets

import (
	"fmt"

	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/model"
)

// MoveIntent asks the server to walk the client's entity toward a point.
// The destination is validated inside the simulation, not here; the parser
// only rejects packets that are not well-formed.
type MoveIntent struct {
	Target   model.Vec3
	ClientTs int64
}

func ParseMoveIntent(r *packet.Reader) (MoveIntent, error) {
	var p MoveIntent
	var err error

	if p.Target.X, err = r.ReadDouble(); err != nil {
		return p, fmt.Errorf("read target x: %w", err)
	}
	if p.Target.Y, err = r.ReadDouble(); err != nil {
		return p, fmt.Errorf("read target y: %w", err)
	}
	if p.Target.Z, err = r.ReadDouble(); err != nil {
		return p, fmt.Errorf("read target z: %w", err)
	}
	if p.ClientTs, err = r.ReadLong(); err != nil {
		return p, fmt.Errorf("read client ts: %w", err)
	}

	return p, nil
}
