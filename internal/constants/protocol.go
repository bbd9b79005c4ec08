package constants

// Protocol-level constants shared by both sides of the wire.

const (
	// ProtocolVersion is bumped on any incompatible packet change.
	ProtocolVersion = 3

	// MaxPacketSize bounds one framed packet, length prefix excluded.
	// Oversized frames are a protocol violation and drop the connection.
	MaxPacketSize = 16 * 1024

	// LengthPrefixSize is the TCP frame header size in bytes (uint16 LE).
	LengthPrefixSize = 2

	// GameKeySize is the rolling XOR cipher key size in bytes.
	GameKeySize = 16

	// MaxAccountLen bounds the account name in EnterWorld.
	MaxAccountLen = 24
)

// Simulation timing. All durations are wall-clock milliseconds; timers compare
// timestamps rather than counting ticks so they survive tick-rate jitter.
const (
	// TickIntervalMs is the fixed simulation step (30 Hz).
	TickIntervalMs = 33

	// BroadcastEveryTicks decouples the 10 Hz sync cadence from the 30 Hz tick.
	BroadcastEveryTicks = 3

	// PositionHistoryWindowMs is the lag-compensation history retention.
	PositionHistoryWindowMs = 500

	// IntentLockWindowMs is the minimum spacing between accepted move intents
	// from one entity, one tick worth, blocking micro-teleport spam.
	IntentLockWindowMs = 33

	// RespawnDelayMs is the death-to-respawn interval.
	RespawnDelayMs = 30_000

	// RegenIntervalMs is the hp/mp regeneration cadence.
	RegenIntervalMs = 1_000

	// AutosaveIntervalMs is the periodic character persistence cadence.
	AutosaveIntervalMs = 60_000
)

// World tuning.
const (
	// SpatialCellSize is the uniform grid cell edge in world units.
	SpatialCellSize = 6.0

	// MaxMoveSpeed is the hard server-side speed cap in units per second.
	// Intents requesting more are rejected regardless of entity stats.
	MaxMoveSpeed = 12.0

	// SnapEpsilon is the remaining distance below which an entity snaps onto
	// its move target.
	SnapEpsilon = 0.05

	// StopEpsilon is the intent distance below which a move is an explicit stop.
	StopEpsilon = 0.01

	// WorldBound is the absolute coordinate limit; anything beyond is
	// malformed input.
	WorldBound = 100_000.0
)

// Combat tuning.
const (
	// ProjectileTTLMs force-terminates any projectile regardless of distance.
	ProjectileTTLMs = 2_000

	// HitGenerosity widens projectile hit radii to absorb latency error.
	HitGenerosity = 1.25
)

// Object id ranges. Players and mobs draw from disjoint ranges so logs and
// wire traces identify the kind at a glance.
const (
	ObjectIDPlayerStart uint32 = 0x1000_0000
	ObjectIDPlayerEnd   uint32 = 0x1FFF_FFFF
	ObjectIDMobStart    uint32 = 0x2000_0000
)

// IsPlayerObjectID reports whether id is in the player range.
func IsPlayerObjectID(id uint32) bool {
	return id >= ObjectIDPlayerStart && id <= ObjectIDPlayerEnd
}

// IsMobObjectID reports whether id is in the mob range.
func IsMobObjectID(id uint32) bool {
	return id >= ObjectIDMobStart
}
