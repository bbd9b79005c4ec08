package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// EntityUpdated carries changed vitals for one entity. Fields is a bitmask
// telling the client which of the values are meaningful.
type EntityUpdated struct {
	ID     uint32
	Fields byte
	HP     int32
	MP     int32
	Level  int32
	XP     int64
}

func (p EntityUpdated) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeEntityUpdated)
	w.WriteUint32(p.ID)
	w.WriteByte(p.Fields)
	w.WriteInt(p.HP)
	w.WriteInt(p.MP)
	w.WriteInt(p.Level)
	w.WriteLong(p.XP)

	return w.Copy()
}
