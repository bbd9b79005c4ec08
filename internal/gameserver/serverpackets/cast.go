package serverpackets

import (
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// CastStart announces a cast entering its windup phase.
type CastStart struct {
	EntityID   uint32
	SkillID    string
	DurationMs int32
}

func (p CastStart) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeCastStart)
	w.WriteUint32(p.EntityID)
	w.WriteString(p.SkillID)
	w.WriteInt(p.DurationMs)

	return w.Copy()
}

// CastEnd announces a cast finishing, either by resolving or by being
// interrupted.
type CastEnd struct {
	EntityID uint32
	SkillID  string
	Success  bool
}

func (p CastEnd) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeCastEnd)
	w.WriteUint32(p.EntityID)
	w.WriteString(p.SkillID)
	w.WriteBool(p.Success)

	return w.Copy()
}

// Wire codes for cast rejection reasons.
const (
	CastFailCooldown = 0x01
	CastFailNoMana   = 0x02
	CastFailInvalid  = 0x03
)

// CastFail tells the requesting client why its cast was rejected. Seq echoes
// the client's request so it can reconcile its prediction.
type CastFail struct {
	Seq    uint32
	Reason byte
}

// ReasonCode maps an internal rejection reason to its wire code.
func ReasonCode(r event.FailReason) byte {
	switch r {
	case event.FailCooldown:
		return CastFailCooldown
	case event.FailNoMana:
		return CastFailNoMana
	default:
		return CastFailInvalid
	}
}

func (p CastFail) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeCastFail)
	w.WriteUint32(p.Seq)
	w.WriteByte(p.Reason)

	return w.Copy()
}
