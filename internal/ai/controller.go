// Package ai drives server-controlled mobs: aggro scan, chase, attack,
// leash. It runs inside the simulation tick after player systems, using the
// same movement and cast paths players use, so mobs obey the same rules.
package ai

import (
	"log/slog"

	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/game/movement"
	"github.com/openrift/riftd/internal/game/skill"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// scanEveryTicks throttles the aggro scan; chasing and attacking run every
// tick once a target is held.
const scanEveryTicks = 10

// Controller owns mob decision making.
type Controller struct {
	tables *data.Tables
	caster *skill.Engine
}

// NewController creates an AI controller casting through the given engine.
func NewController(tables *data.Tables, caster *skill.Engine) *Controller {
	return &Controller{tables: tables, caster: caster}
}

// Tick advances every live mob one decision step.
func (c *Controller) Tick(w *world.World) {
	w.ForEachMob(func(m *model.Mob) {
		if m.IsDead() {
			return
		}
		c.tickMob(w, m)
	})
}

func (c *Controller) tickMob(w *world.World, m *model.Mob) {
	target := c.currentTarget(w, m)

	if target == nil {
		if w.Tick%scanEveryTicks == uint64(m.ID%scanEveryTicks) {
			target = c.scan(w, m)
		}
		if target == nil {
			c.returnHome(w, m)
			return
		}
	}

	// Leash: too far from spawn means drop aggro and walk home untouchable.
	if m.Pos.DistanceTo(m.SpawnPos) > m.LeashRadius {
		m.ResetAggro()
		c.returnHome(w, m)
		return
	}

	tmpl := c.tables.Skill(m.AttackSkillID)
	if tmpl == nil {
		slog.Warn("mob has no usable attack skill", "mob", m.TemplateID, "skill", m.AttackSkillID)
		m.ResetAggro()
		return
	}

	dist := m.Pos.DistanceTo(target.Pos)
	if dist <= tmpl.Range {
		c.attack(w, m, tmpl, target)
		return
	}

	// Out of range: chase. Movement validation applies to mobs too, so a
	// blocked path simply stalls the mob until the target moves.
	if err := movement.OnMoveIntent(w, m.Entity, target.Pos, w.Now); err != nil {
		if err != movement.ErrIntentLock {
			slog.Debug("mob chase rejected", "mob", m.ID, "err", err)
		}
	}
}

// currentTarget resolves the held aggro target, dropping it when it died,
// despawned or escaped.
func (c *Controller) currentTarget(w *world.World, m *model.Mob) *model.Entity {
	if m.AggroTarget == 0 {
		return nil
	}
	t := w.Entity(m.AggroTarget)
	if t == nil || t.IsDead() {
		m.ResetAggro()
		return nil
	}
	return t
}

// scan looks for the nearest live player inside the aggro radius.
func (c *Controller) scan(w *world.World, m *model.Mob) *model.Entity {
	var best *model.Entity
	bestDist := m.AggroRadius + 1
	for _, id := range w.Index.QueryCircle(m.Pos, m.AggroRadius) {
		p := w.Player(id)
		if p == nil || p.IsDead() {
			continue
		}
		if d := m.Pos.DistanceTo(p.Pos); d < bestDist {
			best = p.Entity
			bestDist = d
		}
	}
	if best != nil {
		m.AggroTarget = best.ID
		slog.Debug("mob aggro", "mob", m.ID, "target", best.ID)
	}
	return best
}

func (c *Controller) attack(w *world.World, m *model.Mob, tmpl *data.SkillTemplate, target *model.Entity) {
	// Stop at striking distance instead of climbing into the target.
	if m.Move.Moving {
		movement.OnMoveIntent(w, m.Entity, m.Pos, w.Now)
	}
	if w.Now < m.NextAttackTs {
		return
	}
	if c.caster.StartCast(w, m.Entity, tmpl, target.ID, target.Pos) {
		m.NextAttackTs = w.Now + tmpl.CooldownMs
	}
}

// returnHome walks an idle mob back to its spawn point.
func (c *Controller) returnHome(w *world.World, m *model.Mob) {
	if m.Move.Moving {
		return
	}
	if m.Pos.DistanceTo(m.SpawnPos) < 1 {
		return
	}
	movement.OnMoveIntent(w, m.Entity, m.SpawnPos, w.Now)
}
