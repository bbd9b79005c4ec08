// Package effect advances projectiles, resolves instant and aura skills, and
// ticks status effects. It is the only place damage is applied: the cast
// engine hands off here, and everything funnels through the deterministic
// damage roll keyed by "castID:targetID".
package effect

import (
	"fmt"
	"log/slog"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/game/combat"
	"github.com/openrift/riftd/internal/game/geo"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// LagCompMs is how far back in an entity's position history projectile hit
// tests look, in addition to the authoritative position. It covers the
// render-behind window of a typical client without letting stale positions
// dominate.
const LagCompMs = 100

// statusTickMs is the periodic application cadence for burn/regen effects.
const statusTickMs = 1000

// Runner owns all live effects.
type Runner struct {
	tables      *data.Tables
	projectiles []*Projectile
}

// NewRunner creates an effect runner backed by the given tables.
func NewRunner(tables *data.Tables) *Runner {
	return &Runner{tables: tables}
}

// LiveProjectiles returns the number of in-flight projectiles.
func (r *Runner) LiveProjectiles() int {
	return len(r.projectiles)
}

// SpawnProjectile launches a projectile toward aim and announces it.
func (r *Runner) SpawnProjectile(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64, aim model.Vec3) {
	dir := aim.Sub(caster.Pos).Normalized()
	if dir == (model.Vec3{}) {
		// Aiming at one's own feet: push it forward along +X rather than
		// spawning a stationary projectile that never terminates by distance.
		dir = model.Vec3{X: 1}
	}
	p := &Projectile{
		ID:       castID,
		SkillID:  tmpl.ID,
		CasterID: caster.ID,
		Origin:   caster.Pos,
		Pos:      caster.Pos,
		PrevPos:  caster.Pos,
		Dir:      dir,
		LaunchTs: w.Now,
		Spec:     *tmpl.Projectile,
		tmpl:     tmpl,
		hitIDs:   make(map[uint32]struct{}),
	}
	r.projectiles = append(r.projectiles, p)

	w.PushEvent(event.Broadcast(event.ProjectileSpawned{
		CastID:    castID,
		CasterID:  caster.ID,
		SkillID:   tmpl.ID,
		Origin:    p.Origin,
		Dir:       dir,
		Speed:     p.Spec.Speed,
		LaunchTs:  p.LaunchTs,
		HitRadius: p.Spec.HitRadius,
	}))
}

// SpawnInstant resolves a no-travel skill synchronously against the supplied
// target list.
func (r *Runner) SpawnInstant(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64, targets []uint32) {
	var hits []event.Hit
	var impact model.Vec3
	for _, id := range targets {
		target := w.Entity(id)
		if target == nil || target.IsDead() {
			// Dangling target id: drop the reference, never fault the tick.
			continue
		}
		hits = append(hits, r.strike(w, caster, tmpl, castID, target))
		impact = target.Pos
	}
	w.PushEvent(event.Broadcast(event.ProjectileImpact{
		CastID:  castID,
		SkillID: tmpl.ID,
		Hits:    hits,
		Impact:  impact,
	}))
}

// SpawnAura resolves a caster-centered area skill against everything within
// the aura radius except the caster.
func (r *Runner) SpawnAura(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64) {
	var hits []event.Hit
	for _, id := range w.Index.QueryCircle(caster.Pos, tmpl.AuraRadius) {
		if id == caster.ID {
			continue
		}
		target := w.Entity(id)
		if target == nil || target.IsDead() {
			continue
		}
		hits = append(hits, r.strike(w, caster, tmpl, castID, target))
	}
	w.PushEvent(event.Broadcast(event.ProjectileImpact{
		CastID:  castID,
		SkillID: tmpl.ID,
		Hits:    hits,
		Impact:  caster.Pos,
	}))
}

// Tick advances all projectiles and status effects. Faults in one effect are
// isolated so the remainder of the tick always completes.
func (r *Runner) Tick(w *world.World, dtMs int64) {
	kept := r.projectiles[:0]
	for _, p := range r.projectiles {
		r.guardedAdvance(w, p, dtMs)
		if !p.Done {
			kept = append(kept, p)
		}
	}
	// Zero the tail so finished projectiles are collectable.
	for i := len(kept); i < len(r.projectiles); i++ {
		r.projectiles[i] = nil
	}
	r.projectiles = kept

	r.tickStatuses(w)
}

func (r *Runner) guardedAdvance(w *world.World, p *Projectile, dtMs int64) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("projectile advance fault, terminating effect",
				"cast_id", p.ID, "skill", p.SkillID, "panic", rec)
			p.Done = true
		}
	}()
	r.advanceProjectile(w, p, dtMs)
}

func (r *Runner) advanceProjectile(w *world.World, p *Projectile, dtMs int64) {
	dt := float64(dtMs) / 1000
	p.PrevPos = p.Pos
	p.Pos = p.Pos.Add(p.Dir.Scale(p.Spec.Speed * dt))

	expired := w.Now-p.LaunchTs >= constants.ProjectileTTLMs ||
		p.Origin.DistanceTo(p.Pos) >= p.Spec.MaxDistance

	hits := r.collide(w, p)

	if len(hits) > 0 || (expired && !p.Done) {
		if expired {
			// Force-terminated: a zero-target hit event lets receivers
			// despawn the visual.
			p.Done = true
		}
		impact := p.Pos
		if len(hits) > 0 {
			impact = p.lastImpact
		}
		w.PushEvent(event.Broadcast(event.ProjectileImpact{
			CastID:  p.ID,
			SkillID: p.SkillID,
			Hits:    hits,
			Impact:  impact,
		}))
	}
}

// collide tests the segment traveled this tick against nearby entities.
// Combines a direct endpoint distance test with a swept segment test so fast
// movers cannot tunnel through a target between two ticks.
func (r *Runner) collide(w *world.World, p *Projectile) []event.Hit {
	radius := p.Spec.HitRadius * constants.HitGenerosity
	segLen := p.PrevPos.DistanceTo(p.Pos)
	mid := p.PrevPos.Lerp(p.Pos, 0.5)
	candidates := w.Index.QueryCircle(mid, segLen/2+radius+constants.SpatialCellSize)

	var hits []event.Hit
	for _, id := range candidates {
		if p.Done {
			break
		}
		if id == p.CasterID || p.alreadyHit(id) {
			continue
		}
		target := w.Entity(id)
		if target == nil {
			// Index points at a deleted entity: drop the dangling reference.
			if pos, ok := w.Index.Position(id); ok {
				w.Index.Remove(id, pos)
			}
			continue
		}
		if target.IsDead() {
			continue
		}
		if !r.intersects(w, p, target, radius) {
			continue
		}

		caster := w.Entity(p.CasterID)
		if caster == nil {
			// Caster left mid-flight; the projectile dies without damage.
			p.Done = true
			break
		}

		hits = append(hits, r.strike(w, caster, p.tmpl, p.ID, target))
		p.markHit(target.ID)
		p.pierceHits++
		p.lastImpact = target.Pos

		if p.Spec.SplashRadius > 0 {
			hits = append(hits, r.splash(w, caster, p, target.Pos)...)
		}

		if p.HitCount() >= p.Spec.MaxPierce {
			p.Done = true
		}
	}
	return hits
}

// intersects runs the direct and swept tests against the target's current
// position and, for lag compensation, its interpolated historical position.
func (r *Runner) intersects(w *world.World, p *Projectile, target *model.Entity, radius float64) bool {
	if hitTest(p, target.Pos, radius) {
		return true
	}
	if target.History != nil {
		if past, ok := target.History.At(w.Now - LagCompMs); ok && hitTest(p, past, radius) {
			return true
		}
	}
	return false
}

func hitTest(p *Projectile, pos model.Vec3, radius float64) bool {
	if pos.DistanceTo(p.Pos) <= radius {
		return true
	}
	return geo.DistToSegment(pos, p.PrevPos, p.Pos) <= radius
}

// splash applies falling-off damage around the primary impact, excluding
// anything the projectile already hit.
func (r *Runner) splash(w *world.World, caster *model.Entity, p *Projectile, center model.Vec3) []event.Hit {
	var hits []event.Hit
	for _, id := range w.Index.QueryCircle(center, p.Spec.SplashRadius) {
		if id == p.CasterID || p.alreadyHit(id) {
			continue
		}
		target := w.Entity(id)
		if target == nil || target.IsDead() {
			continue
		}
		dist := center.DistanceTo(target.Pos)
		// Linear falloff from 100% at the center to the floor at the edge.
		frac := 1 - (1-p.Spec.SplashFloor)*(dist/p.Spec.SplashRadius)
		hits = append(hits, r.strikeScaled(w, caster, p.tmpl, p.ID, target, frac))
		p.markHit(id)
	}
	return hits
}

func (r *Runner) strike(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64, target *model.Entity) event.Hit {
	return r.strikeScaled(w, caster, tmpl, castID, target, 1)
}

// strikeScaled rolls and applies one hit. The deterministic seed pins the
// roll to the (cast, target) pair regardless of which check path found it.
func (r *Runner) strikeScaled(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64, target *model.Entity, scale float64) event.Hit {
	seed := fmt.Sprintf("%d:%d", castID, target.ID)
	dmg, crit := combat.GetDamage(caster.Stats, tmpl.BaseDamage*scale, tmpl.Variance, seed)

	r.applyDamage(w, caster.ID, target, dmg)

	if tmpl.Status != nil && !target.IsDead() {
		r.applyStatus(w, caster.ID, target, tmpl.Status)
	}

	return event.Hit{TargetID: target.ID, Damage: dmg, Crit: crit}
}

func (r *Runner) applyStatus(w *world.World, casterID uint32, target *model.Entity, spec *data.StatusSpec) {
	target.ApplyStatus(model.StatusEffect{
		ID:         w.NextSeq(),
		Type:       spec.Type,
		Magnitude:  spec.Magnitude,
		StartTs:    w.Now,
		DurationMs: spec.DurationMs,
		CasterID:   casterID,
		Stackable:  spec.Stackable,
		LastTick:   w.Now,
	})
	w.PushEvent(event.Broadcast(event.StatusApplied{
		TargetID:   target.ID,
		Type:       spec.Type,
		Magnitude:  spec.Magnitude,
		DurationMs: spec.DurationMs,
	}))
}

// applyDamage mutates health, announces the change, and handles death:
// the dead entity leaves the spatial index, its movement stops, and a player
// killer is rewarded.
func (r *Runner) applyDamage(w *world.World, casterID uint32, target *model.Entity, dmg int32) {
	if dmg <= 0 {
		return
	}
	killed := target.ReduceHP(dmg)

	w.PushEvent(event.Broadcast(event.EntityUpdated{
		ID:     target.ID,
		Fields: event.FieldHP,
		HP:     target.HP,
		MP:     target.MP,
		Level:  target.Level,
		XP:     target.XP,
	}))

	if !killed {
		return
	}

	target.DiedAt = w.Now
	target.Vel = model.Vec3{}
	target.Move.Moving = false
	w.Index.Remove(target.ID, target.Pos)

	slog.Info("entity killed", "victim", target.ID, "killer", casterID)

	if killer := w.Player(casterID); killer != nil {
		if victim := w.Mob(target.ID); victim != nil {
			combat.RewardKill(w, killer, victim)
		}
	}
}

// tickStatuses prunes expired effects and applies periodic burn/regen ticks.
func (r *Runner) tickStatuses(w *world.World) {
	w.ForEachEntity(func(e *model.Entity) {
		if e.IsDead() {
			e.Statuses = e.Statuses[:0]
			return
		}
		e.PruneStatuses(w.Now)
		for i := range e.Statuses {
			s := &e.Statuses[i]
			if w.Now-s.LastTick < statusTickMs {
				continue
			}
			s.LastTick = w.Now
			switch s.Type {
			case model.StatusBurn:
				r.applyDamage(w, s.CasterID, e, int32(s.Magnitude))
			case model.StatusRegen:
				e.Heal(int32(s.Magnitude))
				w.PushEvent(event.Broadcast(event.EntityUpdated{
					ID:     e.ID,
					Fields: event.FieldHP,
					HP:     e.HP,
					MP:     e.MP,
					Level:  e.Level,
					XP:     e.XP,
				}))
			}
		}
	})
}
