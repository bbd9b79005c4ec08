// Package movement validates client move intents and advances entity
// positions each tick. The server never trusts a client position: intents
// carry only a destination, and the server integrates toward it at the
// entity's own speed.
package movement

import (
	"errors"
	"log/slog"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// Rejection reasons. ErrMalformed marks suspicious input that is silently
// dropped; the others are honest rejections answered with an authoritative
// snapshot so the client comes back in line.
var (
	ErrMalformed  = errors.New("malformed move intent")
	ErrDead       = errors.New("entity is dead")
	ErrTooFast    = errors.New("speed exceeds hard cap")
	ErrBlocked    = errors.New("path blocked by obstacle")
	ErrIntentLock = errors.New("intent inside lock window")
)

// OnMoveIntent validates a move request and, when accepted, points the entity
// at the target. A near-zero target distance is an explicit stop command.
func OnMoveIntent(w *world.World, e *model.Entity, target model.Vec3, clientTs int64) error {
	if !w.InBounds(target) {
		return ErrMalformed
	}
	if e.IsDead() {
		return ErrDead
	}
	if e.EffectiveSpeed(w.Now) > constants.MaxMoveSpeed {
		return ErrTooFast
	}
	// One accepted intent per tick per entity blocks micro-teleport spam.
	if e.Move.LastIntentTs != 0 && w.Now-e.Move.LastIntentTs < constants.IntentLockWindowMs {
		return ErrIntentLock
	}

	dist := e.Pos.DistanceTo(target)
	if dist < constants.StopEpsilon {
		// Explicit stop: zero velocity and force the transition onto the wire
		// this tick instead of waiting for the periodic cadence.
		e.Move.LastIntentTs = w.Now
		stop(w, e)
		return nil
	}

	if w.Blocked(e.Pos, target) {
		return ErrBlocked
	}

	e.Move.LastIntentTs = w.Now
	e.Move.Target = target
	e.Move.Moving = true
	e.Move.PrevDist = dist
	return nil
}

// Advance integrates every live entity by velocity*dt, handles arrival and
// overshoot snapping, and records the per-entity position history used for
// lag-compensated hit tests. Must run exactly once per tick.
func Advance(w *world.World, dtMs int64) {
	dt := float64(dtMs) / 1000
	w.ForEachEntity(func(e *model.Entity) {
		if e.IsDead() {
			return
		}
		if e.Move.Moving {
			step(w, e, dt)
		}
		if e.History != nil {
			e.History.Push(w.Now, e.Pos)
		}
	})
}

func step(w *world.World, e *model.Entity, dt float64) {
	speed := e.EffectiveSpeed(w.Now)
	if speed <= 0 {
		// Rooted or stunned: hold position but keep the target.
		e.Vel = model.Vec3{}
		return
	}

	dir := e.Move.Target.Sub(e.Pos).Normalized()
	e.Vel = dir.Scale(speed)
	newPos := e.Pos.Add(e.Vel.Scale(dt))

	remaining := newPos.DistanceTo(e.Move.Target)
	if remaining < constants.SnapEpsilon || remaining > e.Move.PrevDist {
		// Arrived, or the distance grew past last tick's value: we overshot
		// between ticks. Snap exactly onto the target.
		w.MovePosition(e, e.Move.Target)
		stop(w, e)
		return
	}

	e.Move.PrevDist = remaining
	w.MovePosition(e, newPos)
}

// stop zeroes motion and pushes a forced snapshot so the exact final position
// goes out on this tick's flush, not the next cadence tick.
func stop(w *world.World, e *model.Entity) {
	e.Vel = model.Vec3{}
	e.Move.Moving = false
	e.Move.DirtyPos = true
	w.PushEvent(event.Broadcast(event.ForceSnapshot{ID: e.ID}))
}

// HaltAndLog force-stops an entity after an internal inconsistency, repairing
// index membership from the authoritative position.
func HaltAndLog(w *world.World, e *model.Entity, reason string) {
	slog.Warn("movement halted", "entity", e.ID, "reason", reason)
	w.Index.Repair(e.ID, e.Pos)
	stop(w, e)
}

// PredictedPos returns the position an entity is expected to occupy aheadMs
// in the future, assuming it keeps its current velocity until arrival. Range
// checks use this rather than the last-acked position so high-latency casters
// are not punished.
func PredictedPos(e *model.Entity, aheadMs int64) model.Vec3 {
	if !e.Move.Moving || aheadMs <= 0 {
		return e.Pos
	}
	step := e.Vel.Scale(float64(aheadMs) / 1000)
	predicted := e.Pos.Add(step)
	// Never predict past the destination.
	if e.Pos.DistanceTo(predicted) > e.Pos.DistanceTo(e.Move.Target) {
		return e.Move.Target
	}
	return predicted
}
