// Package event defines the typed outbound events game systems emit during a
// tick. Systems append envelopes to the world's queue; the gameserver drains
// the queue at the tick boundary and fans packets out. This replaces
// callback-style network hooks: ordering is the order of emission, and tests
// can assert on drained events without any network in the picture.
package event

import "github.com/openrift/riftd/internal/model"

// Envelope pairs an event with its routing. To is the recipient entity id;
// zero broadcasts to every connected client.
type Envelope struct {
	To  uint32
	Msg any
}

// Broadcast wraps an event for delivery to everyone.
func Broadcast(msg any) Envelope {
	return Envelope{Msg: msg}
}

// ToEntity wraps an event for delivery to one entity's connection only.
func ToEntity(id uint32, msg any) Envelope {
	return Envelope{To: id, Msg: msg}
}

// EntitySpawned announces a new or respawned entity.
type EntitySpawned struct {
	ID    uint32
	Kind  model.EntityKind
	Name  string
	Pos   model.Vec3
	HP    int32
	MaxHP int32
	Level int32
	Speed float64
}

// EntityDespawned announces removal (disconnect or death cleanup).
type EntityDespawned struct {
	ID uint32
}

// CastStarted announces a validated cast beginning its wind-up.
type CastStarted struct {
	CasterID       uint32
	SkillID        string
	CastDurationMs int64
}

// CastEnded announces cast completion or mid-flight failure.
type CastEnded struct {
	CasterID uint32
	SkillID  string
	Success  bool
}

// FailReason is the wire-visible cast rejection code.
type FailReason uint8

const (
	FailCooldown FailReason = iota
	FailNoMana
	FailInvalid
)

// String returns the reason name used in logs.
func (r FailReason) String() string {
	switch r {
	case FailCooldown:
		return "cooldown"
	case FailNoMana:
		return "nomana"
	default:
		return "invalid"
	}
}

// CastFailed answers a rejected cast request, to the requester only.
type CastFailed struct {
	Seq    uint32
	Reason FailReason
}

// ProjectileSpawned announces a projectile launch for client-side playback.
type ProjectileSpawned struct {
	CastID    uint64
	CasterID  uint32
	SkillID   string
	Origin    model.Vec3
	Dir       model.Vec3
	Speed     float64
	LaunchTs  int64
	HitRadius float64
}

// Hit is one target struck by a projectile or instant.
type Hit struct {
	TargetID uint32
	Damage   int32
	Crit     bool
}

// ProjectileImpact reports the targets struck this resolution. A terminated
// projectile that hit nothing reports an empty Hits slice so receivers can
// despawn the visual.
type ProjectileImpact struct {
	CastID  uint64
	SkillID string
	Hits    []Hit
	Impact  model.Vec3
}

// Field bits for EntityUpdated.
const (
	FieldHP uint8 = 1 << iota
	FieldMP
	FieldLevel
	FieldXP
)

// EntityUpdated broadcasts vitals/progression changes.
type EntityUpdated struct {
	ID     uint32
	Fields uint8
	HP     int32
	MP     int32
	Level  int32
	XP     int64
}

// StatusApplied announces a status effect landing on a target.
type StatusApplied struct {
	TargetID   uint32
	Type       model.StatusType
	Magnitude  float64
	DurationMs int64
}

// ForceSnapshot asks the sync layer to send an authoritative position
// snapshot. With To set it answers a rejected move intent; broadcast it
// covers transitions the periodic cadence would skip.
type ForceSnapshot struct {
	ID uint32
}
