package effect

import (
	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/model"
)

// Projectile is one in-flight travel effect. It holds entity ids, never
// entity pointers: the caster or a hit target may die or despawn while the
// projectile lives, and id lookups fail safe.
type Projectile struct {
	ID       uint64
	SkillID  string
	CasterID uint32

	Origin  model.Vec3
	Pos     model.Vec3
	PrevPos model.Vec3
	Dir     model.Vec3

	LaunchTs int64
	Spec     data.ProjectileSpec
	Done     bool

	tmpl *data.SkillTemplate
	// hitIDs dedups targets across primary and splash hits; it only grows.
	hitIDs map[uint32]struct{}
	// pierceHits counts primary impacts only, capped by Spec.MaxPierce.
	pierceHits int
	lastImpact model.Vec3
}

func (p *Projectile) alreadyHit(id uint32) bool {
	_, ok := p.hitIDs[id]
	return ok
}

func (p *Projectile) markHit(id uint32) {
	p.hitIDs[id] = struct{}{}
}

// HitCount returns how many primary (non-splash) targets were struck.
func (p *Projectile) HitCount() int {
	return p.pierceHits
}
