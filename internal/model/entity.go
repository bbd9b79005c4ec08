package model

// EntityKind discriminates player-controlled from server-controlled entities.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota
	KindMob
)

// String returns the kind name for logs.
func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMob:
		return "mob"
	default:
		return "unknown"
	}
}

// CombatStats are the attacker-side inputs to the damage formula.
type CombatStats struct {
	DmgMult    float64 // outgoing damage multiplier, 1.0 = neutral
	CritChance float64 // [0, 1]
	CritMult   float64 // damage multiplier on crit
}

// MoveState is the reconciler-owned movement bookkeeping for one entity.
type MoveState struct {
	Target       Vec3    // destination of the accepted intent
	Moving       bool    // velocity is non-zero and chasing Target
	PrevDist     float64 // distance to Target at the previous tick, overshoot guard
	LastIntentTs int64   // last accepted intent, enforces the intent-lock window
	DirtyPos     bool    // position changed out of band, force next broadcast
}

// Entity is one live simulation object. The simulation goroutine is the sole
// owner of all fields; nothing here is safe for concurrent mutation and
// nothing needs to be, per the single-threaded tick model.
type Entity struct {
	ID    uint32
	Kind  EntityKind
	Name  string
	Level int32

	Pos Vec3
	Vel Vec3
	// Speed is the movement rate in world units per second.
	Speed float64

	HP    int32
	MaxHP int32
	MP    int32
	MaxMP int32
	XP    int64

	Alive    bool
	DiedAt   int64 // respawn timer base, valid while !Alive
	SpawnPos Vec3

	Stats    CombatStats
	Statuses []StatusEffect
	History  *PositionHistory

	Move MoveState
}

// IsDead reports whether the entity is out of the fight.
func (e *Entity) IsDead() bool {
	return !e.Alive
}

// ReduceHP applies damage, clamping at zero. Returns true when this call
// killed the entity. Death bookkeeping (DiedAt, index removal) stays with the
// caller, which knows the simulation clock.
func (e *Entity) ReduceHP(damage int32) bool {
	if !e.Alive {
		return false
	}
	e.HP -= damage
	if e.HP <= 0 {
		e.HP = 0
		e.Alive = false
		return true
	}
	return false
}

// Heal restores health, clamping at MaxHP.
func (e *Entity) Heal(amount int32) {
	if !e.Alive {
		return
	}
	e.HP += amount
	if e.HP > e.MaxHP {
		e.HP = e.MaxHP
	}
}

// EffectiveSpeed returns movement speed after status modifiers.
// Slow magnitude is a fraction removed (0.3 = 30% slower); stun halts.
func (e *Entity) EffectiveSpeed(now int64) float64 {
	speed := e.Speed
	for _, s := range e.Statuses {
		if s.Expired(now) {
			continue
		}
		switch s.Type {
		case StatusSlow:
			speed *= 1 - s.Magnitude
		case StatusStun:
			return 0
		}
	}
	if speed < 0 {
		speed = 0
	}
	return speed
}

// HasStatus reports whether a non-expired status of the given type is active.
func (e *Entity) HasStatus(t StatusType, now int64) bool {
	for _, s := range e.Statuses {
		if s.Type == t && !s.Expired(now) {
			return true
		}
	}
	return false
}

// ApplyStatus appends or replaces a status effect. Re-application of the same
// type replaces the existing instance unless the skill data marks it
// stackable.
func (e *Entity) ApplyStatus(s StatusEffect) {
	if !s.Stackable {
		for i := range e.Statuses {
			if e.Statuses[i].Type == s.Type {
				e.Statuses[i] = s
				return
			}
		}
	}
	e.Statuses = append(e.Statuses, s)
}

// PruneStatuses drops expired effects in place. Called lazily once per tick.
func (e *Entity) PruneStatuses(now int64) {
	kept := e.Statuses[:0]
	for _, s := range e.Statuses {
		if !s.Expired(now) {
			kept = append(kept, s)
		}
	}
	e.Statuses = kept
}
