package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// DespawnEntity removes an entity from the client's view.
type DespawnEntity struct {
	ID uint32
}

func (p DespawnEntity) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeDespawnEntity)
	w.WriteUint32(p.ID)

	return w.Copy()
}
