package effect

import (
	"testing"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/testutil"
	"github.com/openrift/riftd/internal/world"
)

const tickMs = constants.TickIntervalMs

type runnerFixture struct {
	w      *world.World
	r      *Runner
	caster *model.Player
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	w := testutil.NewWorld(t)
	return &runnerFixture{
		w:      w,
		r:      NewRunner(testutil.Tables(t)),
		caster: testutil.AddPlayer(t, w, model.Vec3{}),
	}
}

// run advances the runner until no projectiles remain or maxTicks pass.
func (f *runnerFixture) run(maxTicks int) {
	for i := 0; i < maxTicks && f.r.LiveProjectiles() > 0; i++ {
		f.w.Now += tickMs
		f.r.Tick(f.w, tickMs)
	}
}

// impacts filters drained events down to the projectile hit reports.
func impacts(events []event.Envelope) []event.ProjectileImpact {
	var out []event.ProjectileImpact
	for _, env := range events {
		if imp, ok := env.Msg.(event.ProjectileImpact); ok {
			out = append(out, imp)
		}
	}
	return out
}

func TestProjectileHitsSingleTarget(t *testing.T) {
	f := newRunnerFixture(t)
	target := testutil.AddMob(t, f.w, model.Vec3{X: 10})
	tmpl := f.r.tables.Skill("firebolt")

	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, target.Pos)
	f.run(100)

	if f.r.LiveProjectiles() != 0 {
		t.Fatal("projectile still alive after hitting its only target")
	}

	imps := impacts(f.w.DrainEvents())
	if len(imps) != 1 {
		t.Fatalf("got %d impact events, want 1", len(imps))
	}
	if len(imps[0].Hits) != 1 || imps[0].Hits[0].TargetID != target.ID {
		t.Errorf("Hits = %+v, want single hit on %d", imps[0].Hits, target.ID)
	}
	if target.HP >= target.MaxHP {
		t.Error("target took no damage")
	}
}

func TestProjectileNeverHitsCaster(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("firebolt")

	// Fire straight through the caster's own cell.
	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, model.Vec3{X: 1})
	f.run(100)

	if f.caster.HP != f.caster.MaxHP {
		t.Errorf("caster HP = %d, want untouched %d", f.caster.HP, f.caster.MaxHP)
	}
}

func TestProjectilePierceCap(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("piercing_lance")

	// A line of mobs longer than MaxPierce.
	var mobs []*model.Mob
	for i := 0; i < tmpl.Projectile.MaxPierce+3; i++ {
		mobs = append(mobs, testutil.AddMob(t, f.w, model.Vec3{X: float64(4 + i*2)}))
	}

	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, model.Vec3{X: 100})
	f.run(100)

	hit := 0
	for _, m := range mobs {
		if m.HP < m.MaxHP {
			hit++
		}
	}
	if hit != tmpl.Projectile.MaxPierce {
		t.Errorf("%d mobs damaged, want exactly MaxPierce (%d)", hit, tmpl.Projectile.MaxPierce)
	}
	if f.r.LiveProjectiles() != 0 {
		t.Error("projectile kept flying after reaching its pierce cap")
	}
}

func TestProjectileDedupAcrossTicks(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("piercing_lance")
	target := testutil.AddMob(t, f.w, model.Vec3{X: 8})
	target.MaxHP = 100_000
	target.HP = 100_000

	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, model.Vec3{X: 100})
	f.run(100)

	hitsOnTarget := 0
	for _, imp := range impacts(f.w.DrainEvents()) {
		for _, h := range imp.Hits {
			if h.TargetID == target.ID {
				hitsOnTarget++
			}
		}
	}
	if hitsOnTarget != 1 {
		t.Errorf("target reported hit %d times, want 1", hitsOnTarget)
	}
}

func TestProjectileExpiresByDistanceWithEmptyImpact(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("firebolt")

	// Nothing to hit anywhere.
	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, model.Vec3{X: 100})
	f.run(200)

	if f.r.LiveProjectiles() != 0 {
		t.Fatal("projectile immortal without targets")
	}
	imps := impacts(f.w.DrainEvents())
	if len(imps) != 1 {
		t.Fatalf("got %d impact events, want 1 terminal event", len(imps))
	}
	if len(imps[0].Hits) != 0 {
		t.Errorf("terminal impact carries %d hits, want 0", len(imps[0].Hits))
	}
}

func TestProjectileExpiresByTTL(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := *f.r.tables.Skill("firebolt")
	spec := *tmpl.Projectile
	spec.Speed = 0.1 // too slow to ever reach MaxDistance
	tmpl.Projectile = &spec

	f.r.SpawnProjectile(f.w, f.caster.Entity, &tmpl, 1, model.Vec3{X: 100})

	ticks := 0
	for f.r.LiveProjectiles() > 0 && ticks < 1000 {
		f.w.Now += tickMs
		f.r.Tick(f.w, tickMs)
		ticks++
	}

	if f.r.LiveProjectiles() != 0 {
		t.Fatal("projectile outlived its TTL")
	}
	elapsed := int64(ticks) * tickMs
	if elapsed < constants.ProjectileTTLMs || elapsed > constants.ProjectileTTLMs+2*tickMs {
		t.Errorf("expired after %dms, want about %dms", elapsed, constants.ProjectileTTLMs)
	}
}

// A fast projectile whose per-tick travel exceeds the target's diameter must
// still hit: the swept segment test catches what the endpoint test misses.
func TestSweptTestPreventsTunneling(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := *f.r.tables.Skill("firebolt")
	spec := *tmpl.Projectile
	spec.Speed = 300 // ~10 units per tick against a sub-unit hit radius
	spec.MaxDistance = 80
	tmpl.Projectile = &spec

	target := testutil.AddMob(t, f.w, model.Vec3{X: 40})

	f.r.SpawnProjectile(f.w, f.caster.Entity, &tmpl, 1, model.Vec3{X: 80})
	f.run(100)

	if target.HP >= target.MaxHP {
		t.Error("fast projectile tunneled through the target")
	}
}

func TestSplashFalloffExcludesPrimary(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("fireball")
	spec := tmpl.Projectile

	primary := testutil.AddMob(t, f.w, model.Vec3{X: 20})
	near := testutil.AddMob(t, f.w, model.Vec3{X: 21})
	far := testutil.AddMob(t, f.w, model.Vec3{X: 20 + spec.SplashRadius*0.9})
	outside := testutil.AddMob(t, f.w, model.Vec3{X: 20 + spec.SplashRadius + 5})
	for _, m := range []*model.Mob{primary, near, far, outside} {
		m.MaxHP = 100_000
		m.HP = 100_000
	}
	// Pin crits off so the damage ordering assertion holds for any seed.
	f.caster.Stats.CritChance = 0

	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, primary.Pos)
	f.run(100)

	var primaryHit, nearHit, farHit event.Hit
	count := map[uint32]int{}
	for _, imp := range impacts(f.w.DrainEvents()) {
		for _, h := range imp.Hits {
			count[h.TargetID]++
			switch h.TargetID {
			case primary.ID:
				primaryHit = h
			case near.ID:
				nearHit = h
			case far.ID:
				farHit = h
			}
		}
	}

	if count[primary.ID] != 1 {
		t.Fatalf("primary hit %d times, want 1 (no double dip from splash)", count[primary.ID])
	}
	if count[near.ID] != 1 || count[far.ID] != 1 {
		t.Fatalf("splash hits near=%d far=%d, want 1 each", count[near.ID], count[far.ID])
	}
	if count[outside.ID] != 0 {
		t.Errorf("mob outside splash radius was hit")
	}
	if nearHit.Damage <= farHit.Damage {
		t.Errorf("splash falloff inverted: near %d <= far %d", nearHit.Damage, farHit.Damage)
	}
	if primaryHit.Damage < nearHit.Damage {
		t.Errorf("primary damage %d below splash damage %d", primaryHit.Damage, nearHit.Damage)
	}
}

// A target that sidestepped this instant is still hit through its recorded
// history: the shooter aimed at what it saw LagCompMs ago.
func TestLagCompensatedHit(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("firebolt")

	// The target stood at X=10 for a while, then sidestepped off the flight
	// line, clear of the hit radius, without new history recorded yet.
	target := testutil.AddMob(t, f.w, model.Vec3{X: 10})
	target.History.Push(f.w.Now-400, model.Vec3{X: 10})
	target.History.Push(f.w.Now, model.Vec3{X: 10})
	f.w.MovePosition(target.Entity, model.Vec3{X: 10, Z: 3})

	f.r.SpawnProjectile(f.w, f.caster.Entity, tmpl, 1, model.Vec3{X: 20})
	for i := 0; i < 30 && f.r.LiveProjectiles() > 0 && target.HP == target.MaxHP; i++ {
		f.w.Now += tickMs
		f.r.Tick(f.w, tickMs)
	}

	if target.HP >= target.MaxHP {
		t.Error("historical position inside the lag window did not register")
	}
}

func TestInstantResolvesImmediately(t *testing.T) {
	f := newRunnerFixture(t)
	target := testutil.AddMob(t, f.w, model.Vec3{X: 5})
	tmpl := f.r.tables.Skill("smite")

	f.r.SpawnInstant(f.w, f.caster.Entity, tmpl, 1, []uint32{target.ID})

	if target.HP >= target.MaxHP {
		t.Error("instant dealt no damage")
	}
	imps := impacts(f.w.DrainEvents())
	if len(imps) != 1 || len(imps[0].Hits) != 1 {
		t.Fatalf("impacts = %+v, want one event with one hit", imps)
	}
}

func TestAuraHitsEverythingInRadiusExceptCaster(t *testing.T) {
	f := newRunnerFixture(t)
	tmpl := f.r.tables.Skill("frost_nova")

	in1 := testutil.AddMob(t, f.w, model.Vec3{X: 2})
	in2 := testutil.AddMob(t, f.w, model.Vec3{Z: -3})
	out := testutil.AddMob(t, f.w, model.Vec3{X: tmpl.AuraRadius + 5})

	f.r.SpawnAura(f.w, f.caster.Entity, tmpl, 1)

	if in1.HP >= in1.MaxHP || in2.HP >= in2.MaxHP {
		t.Error("mob inside aura radius not hit")
	}
	if out.HP < out.MaxHP {
		t.Error("mob outside aura radius was hit")
	}
	if f.caster.HP != f.caster.MaxHP {
		t.Error("aura damaged its own caster")
	}
	if !in1.HasStatus(model.StatusSlow, f.w.Now) {
		t.Error("aura did not apply its slow")
	}
}

func TestStatusReplaceVersusStack(t *testing.T) {
	f := newRunnerFixture(t)
	target := testutil.AddMob(t, f.w, model.Vec3{X: 2})

	slow := f.r.tables.Skill("frost_nova").Status

	f.r.applyStatus(f.w, f.caster.ID, target.Entity, slow)
	f.r.applyStatus(f.w, f.caster.ID, target.Entity, slow)

	n := 0
	for _, s := range target.Statuses {
		if s.Type == model.StatusSlow {
			n++
		}
	}
	if n != 1 {
		t.Errorf("%d slow instances after reapply, want 1 (non-stackable replaces)", n)
	}
}

func TestBurnTicksAtOneHertz(t *testing.T) {
	f := newRunnerFixture(t)
	target := testutil.AddMob(t, f.w, model.Vec3{X: 2})
	target.MaxHP = 100_000
	target.HP = 100_000

	burn := f.r.tables.Skill("fireball").Status
	f.r.applyStatus(f.w, f.caster.ID, target.Entity, burn)
	start := target.HP

	// Just under one second: no tick yet.
	for elapsed := int64(0); elapsed < 990; elapsed += tickMs {
		f.w.Now += tickMs
		f.r.Tick(f.w, tickMs)
	}
	if target.HP != start {
		t.Fatalf("burn ticked before 1s: HP %d -> %d", start, target.HP)
	}

	// Cross the second.
	f.w.Now += tickMs
	f.r.Tick(f.w, tickMs)
	if target.HP != start-int32(burn.Magnitude) {
		t.Errorf("HP = %d after first burn tick, want %d", target.HP, start-int32(burn.Magnitude))
	}
}

func TestStatusExpires(t *testing.T) {
	f := newRunnerFixture(t)
	target := testutil.AddMob(t, f.w, model.Vec3{X: 2})

	slow := f.r.tables.Skill("frost_nova").Status
	f.r.applyStatus(f.w, f.caster.ID, target.Entity, slow)

	f.w.Now += slow.DurationMs + 1
	f.r.Tick(f.w, tickMs)

	if target.HasStatus(model.StatusSlow, f.w.Now) {
		t.Error("slow still active past its duration")
	}
	if len(target.Statuses) != 0 {
		t.Errorf("%d statuses still attached after expiry", len(target.Statuses))
	}
}

func TestKillRemovesFromIndexAndRewards(t *testing.T) {
	f := newRunnerFixture(t)
	target := testutil.AddMob(t, f.w, model.Vec3{X: 5})
	target.HP = 1
	target.XPReward = 40
	tmpl := f.r.tables.Skill("smite")

	f.r.SpawnInstant(f.w, f.caster.Entity, tmpl, 1, []uint32{target.ID})

	if !target.IsDead() {
		t.Fatal("1 HP target survived a smite")
	}
	if ids := f.w.Index.QueryCircle(target.Pos, 1); len(ids) != 0 {
		t.Errorf("dead mob still in spatial index: %v", ids)
	}
	if f.caster.XP != 40 {
		t.Errorf("killer XP = %d, want 40", f.caster.XP)
	}
	if target.DiedAt != f.w.Now {
		t.Errorf("DiedAt = %d, want %d", target.DiedAt, f.w.Now)
	}
}
