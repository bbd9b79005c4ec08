package serverpackets

import (
	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/model"
)

// SpawnEntity announces an entity entering the interest set.
type SpawnEntity struct {
	ID     uint32
	Kind   model.EntityKind
	Name   string
	Pos    model.Vec3
	HP     int32
	MaxHP  int32
	Level  int32
	Speed  float64
}

// FromEntity fills a SpawnEntity from live world state.
func FromEntity(e *model.Entity) SpawnEntity {
	return SpawnEntity{
		ID:    e.ID,
		Kind:  e.Kind,
		Name:  e.Name,
		Pos:   e.Pos,
		HP:    e.HP,
		MaxHP: e.MaxHP,
		Level: e.Level,
		Speed: e.Speed,
	}
}

func (p SpawnEntity) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeSpawnEntity)
	w.WriteUint32(p.ID)
	w.WriteByte(byte(p.Kind))
	w.WriteString(p.Name)
	w.WriteDouble(p.Pos.X)
	w.WriteDouble(p.Pos.Y)
	w.WriteDouble(p.Pos.Z)
	w.WriteInt(p.HP)
	w.WriteInt(p.MaxHP)
	w.WriteInt(p.Level)
	w.WriteDouble(p.Speed)

	return w.Copy()
}
