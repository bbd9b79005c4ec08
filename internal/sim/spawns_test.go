package sim

import (
	"testing"

	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/testutil"
)

func TestSeedSpawnsPlacesConfiguredPacks(t *testing.T) {
	w := testutil.NewWorld(t)
	tables := testutil.Tables(t)
	l := New(w, tables, nil, nil)

	l.SeedSpawns()

	want := 0
	for _, sp := range tables.Spawns {
		want += sp.Count
	}
	if w.EntityCount() != want {
		t.Fatalf("seeded %d entities, want %d", w.EntityCount(), want)
	}

	byTemplate := make(map[string]int)
	w.ForEachMob(func(m *model.Mob) {
		byTemplate[m.TemplateID]++

		tmpl := tables.MobTemplate(m.TemplateID)
		if tmpl == nil {
			t.Fatalf("mob carries unknown template %q", m.TemplateID)
		}
		if m.MaxHP != tmpl.MaxHP || m.HP != m.MaxHP {
			t.Errorf("mob %d hp = %d/%d, want full %d", m.ID, m.HP, m.MaxHP, tmpl.MaxHP)
		}
		if m.AttackSkillID != tmpl.AttackSkill {
			t.Errorf("mob %d attack = %q, want %q", m.ID, m.AttackSkillID, tmpl.AttackSkill)
		}
		if !w.Index.Contains(m.ID, m.Pos) {
			t.Errorf("mob %d missing from spatial index", m.ID)
		}
		if !m.Alive {
			t.Errorf("mob %d seeded dead", m.ID)
		}
	})

	for _, sp := range tables.Spawns {
		// Pack members ring the configured center within a couple units.
		center := model.Vec3{X: sp.X, Y: sp.Y, Z: sp.Z}
		inRing := 0
		w.ForEachMob(func(m *model.Mob) {
			if m.TemplateID == sp.Template && m.SpawnPos.DistanceTo(center) <= 2.01 {
				inRing++
			}
		})
		if inRing < sp.Count {
			t.Errorf("spawn at %+v has %d of %d mobs nearby", center, inRing, sp.Count)
		}
	}
}

func TestSeedSpawnsPackMembersDoNotStack(t *testing.T) {
	w := testutil.NewWorld(t)
	l := New(w, testutil.Tables(t), nil, nil)

	l.SeedSpawns()

	seen := make(map[model.Vec3]uint32)
	w.ForEachMob(func(m *model.Mob) {
		if prev, dup := seen[m.Pos]; dup {
			t.Errorf("mobs %d and %d share position %+v", prev, m.ID, m.Pos)
		}
		seen[m.Pos] = m.ID
	})
}
