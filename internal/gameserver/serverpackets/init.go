package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// Init is the first packet on a TCP connection. It is sent in the clear
// and carries the session id plus the Blowfish-wrapped XOR key block the
// client needs to decrypt everything that follows.
type Init struct {
	SessionID int32
	KeyBlock  []byte
}

func (p Init) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeInit)
	w.WriteInt(p.SessionID)
	w.WriteBytes(p.KeyBlock)

	return w.Copy()
}
