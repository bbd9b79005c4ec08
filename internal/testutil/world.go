// Package testutil provides shared fixtures for simulation tests.
package testutil

import (
	"testing"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// NewWorld creates an empty world with Now set so history timestamps are
// nonzero.
func NewWorld(t testing.TB) *world.World {
	t.Helper()
	w := world.New()
	w.Now = 1_000_000
	return w
}

// Tables loads the embedded default gameplay tables.
func Tables(t testing.TB) *data.Tables {
	t.Helper()
	tables, err := data.LoadDefaults()
	if err != nil {
		t.Fatalf("loading default tables: %v", err)
	}
	return tables
}

// AddPlayer registers a player at pos with full vitals and every default
// skill unlocked.
func AddPlayer(t testing.TB, w *world.World, pos model.Vec3) *model.Player {
	t.Helper()
	p := model.NewPlayer(w.NextPlayerID(), "test", "Tester", pos, constants.PositionHistoryWindowMs)
	for _, id := range []string{"firebolt", "piercing_lance", "fireball", "smite", "frost_nova"} {
		p.UnlockSkill(id)
	}
	w.AddPlayer(p)
	return p
}

// AddMob registers a mob at pos with default stats.
func AddMob(t testing.TB, w *world.World, pos model.Vec3) *model.Mob {
	t.Helper()
	m := model.NewMob(w.NextMobID(), "gloom_rat", "Gloom Rat", pos, constants.PositionHistoryWindowMs)
	m.AttackSkillID = "mob_strike"
	w.AddMob(m)
	return m
}
