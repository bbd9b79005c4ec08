package model

// StatusType identifies a status effect family.
type StatusType uint8

const (
	StatusSlow StatusType = iota
	StatusBurn
	StatusRegen
	StatusStun
)

// String returns the status name used in logs and wire debugging.
func (t StatusType) String() string {
	switch t {
	case StatusSlow:
		return "slow"
	case StatusBurn:
		return "burn"
	case StatusRegen:
		return "regen"
	case StatusStun:
		return "stun"
	default:
		return "unknown"
	}
}

// StatusEffect is a timed modifier applied to an entity.
// Expiry is wall-clock based: the effect is gone once StartTs+DurationMs <= now.
type StatusEffect struct {
	ID         uint64
	Type       StatusType
	Magnitude  float64
	StartTs    int64
	DurationMs int64
	CasterID   uint32
	Stackable  bool

	// LastTick is the last periodic application (burn damage, regen heal).
	LastTick int64
}

// ExpiresAt returns the timestamp at which the effect lapses.
func (s StatusEffect) ExpiresAt() int64 {
	return s.StartTs + s.DurationMs
}

// Expired reports whether the effect has lapsed at the given time.
func (s StatusEffect) Expired(now int64) bool {
	return s.ExpiresAt() <= now
}
