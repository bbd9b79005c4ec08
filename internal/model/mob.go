package model

// Mob is a server-controlled entity driven by the AI controller.
type Mob struct {
	*Entity

	// TemplateID keys into the static mob table.
	TemplateID string
	// XPReward is granted to the killer.
	XPReward int64

	// AggroTarget is the chased entity id, zero when idle.
	AggroTarget uint32
	// NextAttackTs gates the mob's skill use.
	NextAttackTs int64
	// AggroRadius is how far the mob scans for players.
	AggroRadius float64
	// LeashRadius bounds the chase distance from spawn before the mob resets.
	LeashRadius float64
	// AttackSkillID is the skill cast when in range.
	AttackSkillID string
}

// NewMob creates a mob entity at its spawn point.
func NewMob(id uint32, templateID, name string, spawn Vec3, historyWindowMs int64) *Mob {
	return &Mob{
		Entity: &Entity{
			ID:       id,
			Kind:     KindMob,
			Name:     name,
			Level:    1,
			Pos:      spawn,
			SpawnPos: spawn,
			Speed:    5.0,
			HP:       60,
			MaxHP:    60,
			Alive:    true,
			Stats:    CombatStats{DmgMult: 1.0, CritChance: 0.02, CritMult: 1.5},
			History:  NewPositionHistory(historyWindowMs),
		},
		TemplateID:  templateID,
		XPReward:    25,
		AggroRadius: 12,
		LeashRadius: 40,
	}
}

// ResetAggro drops the current target so the AI returns to its spawn.
func (m *Mob) ResetAggro() {
	m.AggroTarget = 0
}
