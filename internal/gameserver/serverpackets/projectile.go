package serverpackets

import (
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/model"
)

// ProjectileSpawn gives clients everything needed to animate a projectile
// locally: origin, direction, speed and launch time.
type ProjectileSpawn struct {
	CastID    uint64
	CasterID  uint32
	SkillID   string
	Origin    model.Vec3
	Dir       model.Vec3
	Speed     float64
	HitRadius float64
	LaunchTs  int64
}

func (p ProjectileSpawn) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeProjectileSpawn)
	w.WriteUint64(p.CastID)
	w.WriteUint32(p.CasterID)
	w.WriteString(p.SkillID)
	w.WriteDouble(p.Origin.X)
	w.WriteDouble(p.Origin.Y)
	w.WriteDouble(p.Origin.Z)
	w.WriteDouble(p.Dir.X)
	w.WriteDouble(p.Dir.Y)
	w.WriteDouble(p.Dir.Z)
	w.WriteDouble(p.Speed)
	w.WriteDouble(p.HitRadius)
	w.WriteLong(p.LaunchTs)

	return w.Copy()
}

// ProjectileHit reports an effect resolution: every target struck this
// impact plus the impact point. An empty hit list means the projectile
// expired without touching anyone.
type ProjectileHit struct {
	CastID uint64
	Hits   []event.Hit
	Impact model.Vec3
}

func (p ProjectileHit) Write() []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteByte(OpcodeProjectileHit)
	w.WriteUint64(p.CastID)
	w.WriteUint16(uint16(len(p.Hits)))
	for _, h := range p.Hits {
		w.WriteUint32(h.TargetID)
		w.WriteInt(h.Damage)
		w.WriteBool(h.Crit)
	}
	w.WriteDouble(p.Impact.X)
	w.WriteDouble(p.Impact.Y)
	w.WriteDouble(p.Impact.Z)

	return w.Copy()
}
