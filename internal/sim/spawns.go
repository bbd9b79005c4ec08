package sim

import (
	"log/slog"
	"math"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/model"
)

// SeedSpawns populates the world with the configured mob spawns. Called once
// before Run; mobs killed later come back through the respawn phase.
func (l *Loop) SeedSpawns() {
	w := l.World
	seeded := 0

	for _, sp := range l.Tables.Spawns {
		tmpl, ok := l.Tables.Mobs[sp.Template]
		if !ok {
			slog.Warn("spawn references unknown mob template", "template", sp.Template)
			continue
		}
		center := model.Vec3{X: sp.X, Y: sp.Y, Z: sp.Z}

		for i := 0; i < sp.Count; i++ {
			pos := center
			if sp.Count > 1 {
				// Ring the pack around the spawn point.
				angle := 2 * math.Pi * float64(i) / float64(sp.Count)
				pos.X += 2 * math.Cos(angle)
				pos.Z += 2 * math.Sin(angle)
			}
			if !w.InBounds(pos) {
				slog.Warn("spawn point out of bounds", "template", sp.Template, "pos", pos)
				continue
			}

			m := model.NewMob(w.NextMobID(), tmpl.ID, tmpl.Name, pos, constants.PositionHistoryWindowMs)
			m.Level = tmpl.Level
			m.MaxHP = tmpl.MaxHP
			m.HP = tmpl.MaxHP
			m.Speed = tmpl.Speed
			m.XPReward = tmpl.XPReward
			m.AggroRadius = tmpl.AggroRadius
			m.LeashRadius = tmpl.LeashRadius
			m.AttackSkillID = tmpl.AttackSkill
			w.AddMob(m)
			seeded++
		}
	}

	slog.Info("world seeded", "mobs", seeded, "spawns", len(l.Tables.Spawns))
}
