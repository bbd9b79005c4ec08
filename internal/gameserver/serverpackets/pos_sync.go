package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/model"
)

// PosSnapshot carries an absolute position and velocity. It re-baselines the
// client's delta decoder for the entity.
type PosSnapshot struct {
	ID       uint32
	Pos      model.Vec3
	Vel      model.Vec3
	ServerTs int64
}

func (p PosSnapshot) Write() []byte {
	w := packet.Get()
	defer w.Put()

	p.WriteTo(w)

	return w.Copy()
}

// WriteTo appends the packet body to w, for embedding in a SyncBatch.
func (p PosSnapshot) WriteTo(w *packet.Writer) {
	w.WriteByte(OpcodePosSnapshot)
	w.WriteUint32(p.ID)
	w.WriteDouble(p.Pos.X)
	w.WriteDouble(p.Pos.Y)
	w.WriteDouble(p.Pos.Z)
	w.WriteDouble(p.Vel.X)
	w.WriteDouble(p.Vel.Y)
	w.WriteDouble(p.Vel.Z)
	w.WriteLong(p.ServerTs)
}

// PosDelta carries a position change as centimeter offsets against the last
// baseline the server broadcast for the entity. Offsets that do not fit in
// int16 centimeters must be sent as a PosSnapshot instead.
type PosDelta struct {
	ID   uint32
	DxCm int16
	DyCm int16
	DzCm int16
}

func (p PosDelta) Write() []byte {
	w := packet.Get()
	defer w.Put()

	p.WriteTo(w)

	return w.Copy()
}

// WriteTo appends the packet body to w, for embedding in a SyncBatch.
func (p PosDelta) WriteTo(w *packet.Writer) {
	w.WriteByte(OpcodePosDelta)
	w.WriteUint32(p.ID)
	w.WriteShort(p.DxCm)
	w.WriteShort(p.DyCm)
	w.WriteShort(p.DzCm)
}
