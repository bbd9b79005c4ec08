// Package skill validates cast requests and tracks in-flight casts through
// the Casting -> {Resolved, Failed} state machine. Completed casts hand off
// to the effect runner through the Spawner interface; the engine itself never
// touches hit detection.
package skill

import (
	"errors"
	"log/slog"

	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/game/movement"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// Cast rejection reasons, mapped onto wire codes by the gameserver.
var (
	ErrNotOwned       = errors.New("skill not unlocked")
	ErrOnCooldown     = errors.New("skill on cooldown")
	ErrNoMana         = errors.New("insufficient mana")
	ErrOutOfRange     = errors.New("target out of range")
	ErrDeadCaster     = errors.New("caster is dead")
	ErrAlreadyCasting = errors.New("cast already in flight")
	ErrUnknownSkill   = errors.New("unknown skill id")
	ErrBadTarget      = errors.New("missing or invalid target")
)

// Phase is the cast state machine position.
type Phase uint8

const (
	PhaseCasting Phase = iota
	PhaseResolved
	PhaseFailed
)

// CastState is one in-flight cast. At most one exists per entity.
type CastState struct {
	CastID     uint64
	CasterID   uint32
	SkillID    string
	StartTs    int64
	DurationMs int64
	TargetID   uint32
	TargetPos  model.Vec3
	Phase      Phase
}

// Spawner is the effect-runner handoff taken at cast completion.
type Spawner interface {
	SpawnProjectile(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64, aim model.Vec3)
	SpawnInstant(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64, targets []uint32)
	SpawnAura(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, castID uint64)
}

// Engine owns all in-flight casts.
type Engine struct {
	tables  *data.Tables
	spawner Spawner
	casts   map[uint32]*CastState

	// maxPredictAheadMs caps how much client latency the range check will
	// compensate for.
	maxPredictAheadMs int64
}

// NewEngine creates a cast engine backed by the given tables and spawner.
func NewEngine(tables *data.Tables, spawner Spawner) *Engine {
	return &Engine{
		tables:            tables,
		spawner:           spawner,
		casts:             make(map[uint32]*CastState),
		maxPredictAheadMs: 300,
	}
}

// ActiveCast returns the in-flight cast for an entity, nil when idle.
func (e *Engine) ActiveCast(entityID uint32) *CastState {
	return e.casts[entityID]
}

// RequestCast validates a player's cast request. On success mana is deducted,
// the cooldown stamp is set, a CastState is created and a cast-start event is
// queued. The returned error is one of the package sentinels.
func (e *Engine) RequestCast(w *world.World, caster *model.Player, skillID string, targetID uint32, targetPos model.Vec3, clientTs int64) error {
	if caster.IsDead() {
		return ErrDeadCaster
	}
	if e.casts[caster.ID] != nil {
		return ErrAlreadyCasting
	}

	tmpl := e.tables.Skill(skillID)
	if tmpl == nil {
		return ErrUnknownSkill
	}
	if !caster.HasSkill(skillID) {
		return ErrNotOwned
	}
	if caster.OnCooldown(skillID, w.Now) {
		return ErrOnCooldown
	}
	if tmpl.ManaCost > 0 && caster.MP < tmpl.ManaCost {
		return ErrNoMana
	}

	target := w.Entity(targetID)
	if tmpl.NeedsTargetEntity() && (target == nil || target.IsDead()) {
		return ErrBadTarget
	}
	if target != nil {
		targetPos = target.Pos
	} else if !w.InBounds(targetPos) {
		return ErrBadTarget
	}

	if tmpl.Range > 0 {
		// Range is checked against the predicted positions of both parties,
		// not the last-acked ones, so casting on the move under latency works.
		ahead := w.Now - clientTs
		if ahead < 0 {
			ahead = 0
		} else if ahead > e.maxPredictAheadMs {
			ahead = e.maxPredictAheadMs
		}
		from := movement.PredictedPos(caster.Entity, ahead)
		to := targetPos
		if target != nil {
			to = movement.PredictedPos(target, ahead)
		}
		if from.DistanceTo(to) > tmpl.Range {
			return ErrOutOfRange
		}
	}

	if tmpl.ManaCost > 0 {
		caster.MP -= tmpl.ManaCost
		w.PushEvent(event.Broadcast(event.EntityUpdated{
			ID:     caster.ID,
			Fields: event.FieldMP,
			HP:     caster.HP,
			MP:     caster.MP,
			Level:  caster.Level,
			XP:     caster.XP,
		}))
	}
	caster.StartCooldown(skillID, w.Now, tmpl.CooldownMs)

	e.begin(w, caster.Entity, tmpl, targetID, targetPos)
	return nil
}

// StartCast begins a cast without ownership/mana/cooldown validation. The AI
// controller uses it for mob skills, which have no skill book or mana pool.
func (e *Engine) StartCast(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, targetID uint32, targetPos model.Vec3) bool {
	if caster.IsDead() || e.casts[caster.ID] != nil {
		return false
	}
	e.begin(w, caster, tmpl, targetID, targetPos)
	return true
}

func (e *Engine) begin(w *world.World, caster *model.Entity, tmpl *data.SkillTemplate, targetID uint32, targetPos model.Vec3) {
	cast := &CastState{
		CastID:     w.NextSeq(),
		CasterID:   caster.ID,
		SkillID:    tmpl.ID,
		StartTs:    w.Now,
		DurationMs: tmpl.CastTimeMs,
		TargetID:   targetID,
		TargetPos:  targetPos,
		Phase:      PhaseCasting,
	}
	e.casts[caster.ID] = cast

	w.PushEvent(event.Broadcast(event.CastStarted{
		CasterID:       caster.ID,
		SkillID:        tmpl.ID,
		CastDurationMs: tmpl.CastTimeMs,
	}))

	slog.Debug("cast started",
		"caster", caster.ID,
		"skill", tmpl.ID,
		"cast_id", cast.CastID,
		"duration_ms", tmpl.CastTimeMs)
}

// Cancel drops an entity's in-flight cast without resolution, used on
// disconnect. Death during the cast is handled by Tick instead so the
// failure event goes out.
func (e *Engine) Cancel(entityID uint32) {
	delete(e.casts, entityID)
}

// Tick advances every in-flight cast against the world clock. Completed
// casts resolve through the spawner; casts whose caster died resolve as
// Failed with no effect spawned.
func (e *Engine) Tick(w *world.World) {
	for id, cast := range e.casts {
		caster := w.Entity(cast.CasterID)
		if caster == nil || caster.IsDead() {
			cast.Phase = PhaseFailed
			delete(e.casts, id)
			w.PushEvent(event.Broadcast(event.CastEnded{
				CasterID: cast.CasterID,
				SkillID:  cast.SkillID,
				Success:  false,
			}))
			continue
		}

		if w.Now-cast.StartTs < cast.DurationMs {
			continue
		}

		cast.Phase = PhaseResolved
		delete(e.casts, id)
		e.resolve(w, caster, cast)
		w.PushEvent(event.Broadcast(event.CastEnded{
			CasterID: cast.CasterID,
			SkillID:  cast.SkillID,
			Success:  true,
		}))
	}
}

func (e *Engine) resolve(w *world.World, caster *model.Entity, cast *CastState) {
	tmpl := e.tables.Skill(cast.SkillID)
	if tmpl == nil {
		// Tables are immutable after load, so this is an internal fault.
		slog.Error("resolving cast with unknown skill", "skill", cast.SkillID, "cast_id", cast.CastID)
		return
	}

	switch tmpl.Category {
	case data.CategoryProjectile:
		aim := cast.TargetPos
		if t := w.Entity(cast.TargetID); t != nil && !t.IsDead() {
			aim = t.Pos
		}
		e.spawner.SpawnProjectile(w, caster, tmpl, cast.CastID, aim)
	case data.CategoryInstant:
		target := w.Entity(cast.TargetID)
		if target == nil || target.IsDead() {
			// Target vanished during the wind-up; the cast still resolved.
			return
		}
		e.spawner.SpawnInstant(w, caster, tmpl, cast.CastID, []uint32{cast.TargetID})
	case data.CategoryAura:
		e.spawner.SpawnAura(w, caster, tmpl, cast.CastID)
	}
}
