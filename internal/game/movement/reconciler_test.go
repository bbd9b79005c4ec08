package movement

import (
	"errors"
	"math"
	"testing"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/game/geo"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/testutil"
	"github.com/openrift/riftd/internal/world"
)

func TestOnMoveIntentValidation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(w *worldFixture)
		target  model.Vec3
		wantErr error
	}{
		{
			name:    "accepted",
			target:  model.Vec3{X: 10},
			wantErr: nil,
		},
		{
			name:    "out of bounds",
			target:  model.Vec3{X: constants.WorldBound + 1},
			wantErr: ErrMalformed,
		},
		{
			name:    "non-finite target",
			target:  model.Vec3{X: math.NaN()},
			wantErr: ErrMalformed,
		},
		{
			name: "dead entity",
			setup: func(f *worldFixture) {
				f.p.Alive = false
			},
			target:  model.Vec3{X: 10},
			wantErr: ErrDead,
		},
		{
			name: "speed above hard cap",
			setup: func(f *worldFixture) {
				f.p.Speed = constants.MaxMoveSpeed + 1
			},
			target:  model.Vec3{X: 10},
			wantErr: ErrTooFast,
		},
		{
			name: "path through obstacle",
			setup: func(f *worldFixture) {
				f.w.Obstacles = []geo.Rect{{MinX: 4, MinZ: -2, MaxX: 6, MaxZ: 2}}
			},
			target:  model.Vec3{X: 10},
			wantErr: ErrBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorldFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			err := OnMoveIntent(f.w, f.p.Entity, tt.target, f.w.Now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("OnMoveIntent() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIntentLockWindow(t *testing.T) {
	f := newWorldFixture(t)

	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 10}, f.w.Now); err != nil {
		t.Fatalf("first intent rejected: %v", err)
	}
	// Same tick: locked.
	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 20}, f.w.Now); !errors.Is(err, ErrIntentLock) {
		t.Errorf("second intent same tick = %v, want ErrIntentLock", err)
	}
	// Next tick: accepted again.
	f.w.Now += constants.TickIntervalMs
	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 20}, f.w.Now); err != nil {
		t.Errorf("intent after lock window = %v, want nil", err)
	}
}

func TestStopCommand(t *testing.T) {
	f := newWorldFixture(t)

	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 10}, f.w.Now); err != nil {
		t.Fatalf("move intent rejected: %v", err)
	}
	Advance(f.w, constants.TickIntervalMs)
	if !f.p.Move.Moving {
		t.Fatal("entity not moving after accepted intent")
	}

	f.w.Now += constants.TickIntervalMs
	// Target within StopEpsilon of current position is a stop command.
	if err := OnMoveIntent(f.w, f.p.Entity, f.p.Pos, f.w.Now); err != nil {
		t.Fatalf("stop command rejected: %v", err)
	}
	if f.p.Move.Moving {
		t.Error("entity still moving after stop command")
	}
	if f.p.Vel != (model.Vec3{}) {
		t.Errorf("Vel = %v after stop, want zero", f.p.Vel)
	}
	if !f.p.Move.DirtyPos {
		t.Error("stop did not mark position dirty for the sync layer")
	}
	// The final position must go out this tick, not on the next cadence tick.
	if !hasForcedSnapshot(f.w.DrainEvents(), f.p.ID) {
		t.Error("stop queued no forced broadcast snapshot")
	}
}

func hasForcedSnapshot(evs []event.Envelope, id uint32) bool {
	for _, env := range evs {
		if snap, ok := env.Msg.(event.ForceSnapshot); ok && snap.ID == id && env.To == 0 {
			return true
		}
	}
	return false
}

func TestAdvanceReachesTargetAndSnaps(t *testing.T) {
	f := newWorldFixture(t)
	target := model.Vec3{X: 3}

	if err := OnMoveIntent(f.w, f.p.Entity, target, f.w.Now); err != nil {
		t.Fatalf("move intent rejected: %v", err)
	}

	// Speed 7 covers 3 units in under half a second; walk plenty of ticks.
	for i := 0; i < 30 && f.p.Move.Moving; i++ {
		f.w.Now += constants.TickIntervalMs
		Advance(f.w, constants.TickIntervalMs)
	}

	if f.p.Move.Moving {
		t.Fatal("entity never arrived")
	}
	if f.p.Pos != target {
		t.Errorf("Pos = %v, want exact snap to %v", f.p.Pos, target)
	}
	if !f.w.Index.Contains(f.p.ID, f.p.Pos) {
		t.Error("spatial index lost the entity during movement")
	}
	if !hasForcedSnapshot(f.w.DrainEvents(), f.p.ID) {
		t.Error("arrival queued no forced broadcast snapshot")
	}
}

func TestAdvanceOvershootSnaps(t *testing.T) {
	f := newWorldFixture(t)
	// A target closer than one tick's travel: the first step overshoots.
	target := model.Vec3{X: 0.1}

	if err := OnMoveIntent(f.w, f.p.Entity, target, f.w.Now); err != nil {
		t.Fatalf("move intent rejected: %v", err)
	}
	f.w.Now += constants.TickIntervalMs
	Advance(f.w, constants.TickIntervalMs)

	if f.p.Move.Moving {
		t.Error("still moving after overshoot tick")
	}
	if f.p.Pos != target {
		t.Errorf("Pos = %v, want %v (snap, not oscillation)", f.p.Pos, target)
	}
}

func TestAdvanceRecordsHistory(t *testing.T) {
	f := newWorldFixture(t)

	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 50}, f.w.Now); err != nil {
		t.Fatalf("move intent rejected: %v", err)
	}

	start := f.w.Now
	for i := 0; i < 10; i++ {
		f.w.Now += constants.TickIntervalMs
		Advance(f.w, constants.TickIntervalMs)
	}

	// Interpolating halfway between two recorded ticks lands between the
	// recorded positions.
	midTs := start + constants.TickIntervalMs*5 + constants.TickIntervalMs/2
	pos, ok := f.p.History.At(midTs)
	if !ok {
		t.Fatal("history empty after 10 ticks of movement")
	}
	if pos.X <= 0 || pos.X >= f.p.Pos.X {
		t.Errorf("interpolated X = %v, want between 0 and %v", pos.X, f.p.Pos.X)
	}
}

func TestStunnedEntityHoldsPosition(t *testing.T) {
	f := newWorldFixture(t)

	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 10}, f.w.Now); err != nil {
		t.Fatalf("move intent rejected: %v", err)
	}
	f.p.ApplyStatus(model.StatusEffect{
		ID: 1, Type: model.StatusStun, StartTs: f.w.Now, DurationMs: 10_000,
	})

	before := f.p.Pos
	f.w.Now += constants.TickIntervalMs
	Advance(f.w, constants.TickIntervalMs)

	if f.p.Pos != before {
		t.Errorf("stunned entity moved from %v to %v", before, f.p.Pos)
	}
	if !f.p.Move.Moving {
		t.Error("stun dropped the move target; it should resume after the stun")
	}
}

func TestPredictedPos(t *testing.T) {
	f := newWorldFixture(t)

	if got := PredictedPos(f.p.Entity, 100); got != f.p.Pos {
		t.Errorf("PredictedPos while idle = %v, want current pos", got)
	}

	if err := OnMoveIntent(f.w, f.p.Entity, model.Vec3{X: 100}, f.w.Now); err != nil {
		t.Fatalf("move intent rejected: %v", err)
	}
	f.w.Now += constants.TickIntervalMs
	Advance(f.w, constants.TickIntervalMs)

	ahead := PredictedPos(f.p.Entity, 100)
	if ahead.X <= f.p.Pos.X {
		t.Errorf("PredictedPos.X = %v, want ahead of %v", ahead.X, f.p.Pos.X)
	}

	// Prediction clamps at the destination.
	far := PredictedPos(f.p.Entity, 1_000_000)
	if far != f.p.Move.Target {
		t.Errorf("PredictedPos far ahead = %v, want clamp to target %v", far, f.p.Move.Target)
	}
}

type worldFixture struct {
	w *world.World
	p *model.Player
}

func newWorldFixture(t *testing.T) *worldFixture {
	w := testutil.NewWorld(t)
	p := testutil.AddPlayer(t, w, model.Vec3{})
	return &worldFixture{w: w, p: p}
}
