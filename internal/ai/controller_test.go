package ai

import (
	"testing"

	"github.com/openrift/riftd/internal/game/effect"
	"github.com/openrift/riftd/internal/game/skill"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/testutil"
	"github.com/openrift/riftd/internal/world"
)

type aiFixture struct {
	w     *world.World
	ctrl  *Controller
	casts *skill.Engine
	mob   *model.Mob
}

func newAIFixture(t *testing.T) *aiFixture {
	t.Helper()
	w := testutil.NewWorld(t)
	tables := testutil.Tables(t)
	casts := skill.NewEngine(tables, effect.NewRunner(tables))
	mob := testutil.AddMob(t, w, model.Vec3{})
	return &aiFixture{
		w:     w,
		ctrl:  NewController(tables, casts),
		casts: casts,
		mob:   mob,
	}
}

// tickWithScan runs one AI tick on the mob's scan phase.
func (f *aiFixture) tickWithScan() {
	f.w.Tick = uint64(f.mob.ID % scanEveryTicks)
	f.ctrl.Tick(f.w)
}

// tickOffScan runs one AI tick outside the mob's scan phase.
func (f *aiFixture) tickOffScan() {
	f.w.Tick = uint64(f.mob.ID%scanEveryTicks) + 1
	f.ctrl.Tick(f.w)
}

func TestScanAggrosNearestPlayer(t *testing.T) {
	f := newAIFixture(t)
	far := testutil.AddPlayer(t, f.w, model.Vec3{X: 7})
	near := testutil.AddPlayer(t, f.w, model.Vec3{X: 4})

	f.tickWithScan()

	if f.mob.AggroTarget != near.ID {
		t.Errorf("aggro = %d, want nearest player %d (not %d)", f.mob.AggroTarget, near.ID, far.ID)
	}
}

func TestScanRunsOnlyOnOwnPhase(t *testing.T) {
	f := newAIFixture(t)
	testutil.AddPlayer(t, f.w, model.Vec3{X: 4})

	f.tickOffScan()

	if f.mob.AggroTarget != 0 {
		t.Error("mob aggroed outside its scan phase")
	}
}

func TestScanIgnoresOutOfRadiusAndDead(t *testing.T) {
	f := newAIFixture(t)
	testutil.AddPlayer(t, f.w, model.Vec3{X: f.mob.AggroRadius + 5})
	dead := testutil.AddPlayer(t, f.w, model.Vec3{X: 3})
	dead.HP = 0
	dead.Alive = false

	f.tickWithScan()

	if f.mob.AggroTarget != 0 {
		t.Errorf("aggro = %d, want none", f.mob.AggroTarget)
	}
}

func TestChaseMovesTowardTarget(t *testing.T) {
	f := newAIFixture(t)
	p := testutil.AddPlayer(t, f.w, model.Vec3{X: 8})

	f.tickWithScan()

	if f.mob.AggroTarget != p.ID {
		t.Fatalf("aggro = %d, want %d", f.mob.AggroTarget, p.ID)
	}
	if !f.mob.Move.Moving || f.mob.Move.Target != p.Pos {
		t.Errorf("move state = %+v, want chasing toward %+v", f.mob.Move, p.Pos)
	}
}

func TestAttackInRangeStartsCast(t *testing.T) {
	f := newAIFixture(t)
	testutil.AddPlayer(t, f.w, model.Vec3{X: 2})

	f.tickWithScan()

	if f.casts.ActiveCast(f.mob.ID) == nil {
		t.Fatal("mob in range did not start its attack cast")
	}
	if f.mob.NextAttackTs <= f.w.Now {
		t.Error("attack gate not armed after cast")
	}
}

func TestAttackGateBlocksRepeat(t *testing.T) {
	f := newAIFixture(t)
	testutil.AddPlayer(t, f.w, model.Vec3{X: 2})

	f.tickWithScan()
	gate := f.mob.NextAttackTs

	// Let the first cast resolve, then tick again inside the gate window.
	f.casts.Cancel(f.mob.ID)
	f.w.Now++
	f.tickOffScan()

	if f.casts.ActiveCast(f.mob.ID) != nil {
		t.Error("mob attacked again before its cooldown gate")
	}
	if f.mob.NextAttackTs != gate {
		t.Errorf("gate moved from %d to %d without an attack", gate, f.mob.NextAttackTs)
	}
}

func TestLeashDropsAggroAndWalksHome(t *testing.T) {
	f := newAIFixture(t)
	p := testutil.AddPlayer(t, f.w, model.Vec3{X: 4})

	f.tickWithScan()
	if f.mob.AggroTarget != p.ID {
		t.Fatal("mob never aggroed")
	}

	f.w.MovePosition(f.mob.Entity, model.Vec3{X: f.mob.LeashRadius + 5})
	f.w.Now++
	f.tickOffScan()

	if f.mob.AggroTarget != 0 {
		t.Error("aggro survived the leash")
	}

	// Once the current step finishes, the next tick walks it home.
	f.mob.Move = model.MoveState{}
	f.w.Now++
	f.tickOffScan()
	if !f.mob.Move.Moving || f.mob.Move.Target != f.mob.SpawnPos {
		t.Errorf("move state = %+v, want returning to %+v", f.mob.Move, f.mob.SpawnPos)
	}
}

func TestDeadTargetDropsAggro(t *testing.T) {
	f := newAIFixture(t)
	p := testutil.AddPlayer(t, f.w, model.Vec3{X: 4})

	f.tickWithScan()
	p.HP = 0
	p.Alive = false
	f.w.Now++
	f.tickOffScan()

	if f.mob.AggroTarget != 0 {
		t.Error("aggro held on a dead target")
	}
}

func TestIdleMobReturnsToSpawn(t *testing.T) {
	f := newAIFixture(t)
	f.w.MovePosition(f.mob.Entity, model.Vec3{X: 6})

	f.tickOffScan()

	if !f.mob.Move.Moving || f.mob.Move.Target != f.mob.SpawnPos {
		t.Errorf("move state = %+v, want walking home to %+v", f.mob.Move, f.mob.SpawnPos)
	}
}
