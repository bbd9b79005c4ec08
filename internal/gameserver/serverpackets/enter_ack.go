package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// EnterAck confirms world entry and tells the client which entity it owns.
type EnterAck struct {
	EntityID uint32
	ServerTs int64
}

func (p EnterAck) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeEnterAck)
	w.WriteUint32(p.EntityID)
	w.WriteLong(p.ServerTs)

	return w.Copy()
}
