package model

// Player is a client-controlled entity plus the account-scoped state the
// simulation needs: unlocked skills and per-skill cooldowns. Connection
// bookkeeping lives in the gameserver package, keyed by entity id.
type Player struct {
	*Entity

	Account string
	// CharacterID is the persistent row id; zero until first save.
	CharacterID int64

	// Skills holds the unlocked skill ids.
	Skills map[string]struct{}
	// CooldownEnd maps skill id to the timestamp at which it may be cast again.
	CooldownEnd map[string]int64
}

// NewPlayer creates a player entity at the given spawn point.
func NewPlayer(id uint32, account, name string, spawn Vec3, historyWindowMs int64) *Player {
	return &Player{
		Entity: &Entity{
			ID:       id,
			Kind:     KindPlayer,
			Name:     name,
			Level:    1,
			Pos:      spawn,
			SpawnPos: spawn,
			Speed:    7.0,
			HP:       100,
			MaxHP:    100,
			MP:       50,
			MaxMP:    50,
			Alive:    true,
			Stats:    CombatStats{DmgMult: 1.0, CritChance: 0.05, CritMult: 2.0},
			History:  NewPositionHistory(historyWindowMs),
		},
		Account:     account,
		Skills:      make(map[string]struct{}),
		CooldownEnd: make(map[string]int64),
	}
}

// HasSkill reports whether the skill is unlocked.
func (p *Player) HasSkill(skillID string) bool {
	_, ok := p.Skills[skillID]
	return ok
}

// UnlockSkill grants a skill.
func (p *Player) UnlockSkill(skillID string) {
	p.Skills[skillID] = struct{}{}
}

// OnCooldown reports whether the skill is still cooling down at now.
func (p *Player) OnCooldown(skillID string, now int64) bool {
	end, ok := p.CooldownEnd[skillID]
	return ok && now < end
}

// StartCooldown stamps the cooldown end for a skill.
func (p *Player) StartCooldown(skillID string, now, cooldownMs int64) {
	if cooldownMs <= 0 {
		return
	}
	p.CooldownEnd[skillID] = now + cooldownMs
}
