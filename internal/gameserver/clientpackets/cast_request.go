package clientpackets

import (
	"fmt"

	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/model"
)

const maxSkillIDLen = 64

// CastRequest asks the server to start a skill cast. Seq is a client-chosen
// correlation id echoed back on rejection.
type CastRequest struct {
	Seq       uint32
	SkillID   string
	TargetID  uint32
	TargetPos model.Vec3
	ClientTs  int64
}

func ParseCastRequest(r *packet.Reader) (CastRequest, error) {
	var p CastRequest
	var err error

	if p.Seq, err = r.ReadUint32(); err != nil {
		return p, fmt.Errorf("read seq: %w", err)
	}
	if p.SkillID, err = r.ReadString(maxSkillIDLen); err != nil {
		return p, fmt.Errorf("read skill id: %w", err)
	}
	if p.SkillID == "" {
		return p, fmt.Errorf("empty skill id")
	}
	if p.TargetID, err = r.ReadUint32(); err != nil {
		return p, fmt.Errorf("read target id: %w", err)
	}
	if p.TargetPos.X, err = r.ReadDouble(); err != nil {
		return p, fmt.Errorf("read target x: %w", err)
	}
	if p.TargetPos.Y, err = r.ReadDouble(); err != nil {
		return p, fmt.Errorf("read target y: %w", err)
	}
	if p.TargetPos.Z, err = r.ReadDouble(); err != nil {
		return p, fmt.Errorf("read target z: %w", err)
	}
	if p.ClientTs, err = r.ReadLong(); err != nil {
		return p, fmt.Errorf("read client ts: %w", err)
	}

	return p, nil
}
