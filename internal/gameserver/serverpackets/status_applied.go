package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/model"
)

// StatusApplied announces a status effect landing on an entity.
type StatusApplied struct {
	TargetID   uint32
	Type       model.StatusType
	Magnitude  float64
	DurationMs int32
}

func (p StatusApplied) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeStatusApplied)
	w.WriteUint32(p.TargetID)
	w.WriteByte(byte(p.Type))
	w.WriteDouble(p.Magnitude)
	w.WriteInt(p.DurationMs)

	return w.Copy()
}
