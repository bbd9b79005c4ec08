// Package data holds the static content tables: skills, mob templates, spawn
// points and obstacles. Tables are loaded once at startup, validated against
// embedded JSON schemas, and consumed read-only by the simulation.
package data

import (
	"encoding/json"
	"fmt"

	"github.com/openrift/riftd/internal/model"
)

// SkillCategory selects the resolution path in the effect runner.
type SkillCategory uint8

const (
	CategoryProjectile SkillCategory = iota
	CategoryInstant
	CategoryAura
)

// String returns the category name used in tables and logs.
func (c SkillCategory) String() string {
	switch c {
	case CategoryProjectile:
		return "projectile"
	case CategoryInstant:
		return "instant"
	case CategoryAura:
		return "aura"
	default:
		return "unknown"
	}
}

// UnmarshalJSON decodes the category from its table spelling.
func (c *SkillCategory) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "projectile":
		*c = CategoryProjectile
	case "instant":
		*c = CategoryInstant
	case "aura":
		*c = CategoryAura
	default:
		return fmt.Errorf("unknown skill category %q", s)
	}
	return nil
}

// ProjectileSpec is the travel/collision data of projectile skills.
type ProjectileSpec struct {
	Speed        float64 `json:"speed"`         // units per second
	HitRadius    float64 `json:"hit_radius"`    // collision radius before generosity
	MaxPierce    int     `json:"max_pierce"`    // max targets hit; 1 = no pierce
	SplashRadius float64 `json:"splash_radius"` // 0 = no splash
	SplashFloor  float64 `json:"splash_floor"`  // damage fraction at splash edge
	MaxDistance  float64 `json:"max_distance"`  // travel cap in units
}

// StatusSpec is the status effect a skill applies on hit.
type StatusSpec struct {
	Type       model.StatusType `json:"-"`
	TypeName   string           `json:"type"`
	Magnitude  float64          `json:"magnitude"`
	DurationMs int64            `json:"duration_ms"`
	Stackable  bool             `json:"stackable"`
}

// SkillTemplate is one immutable skill definition, keyed by string id.
type SkillTemplate struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Category   SkillCategory `json:"category"`
	CastTimeMs int64         `json:"cast_time_ms"`
	CooldownMs int64         `json:"cooldown_ms"`
	ManaCost   int32         `json:"mana_cost"`
	Range      float64       `json:"range"`
	BaseDamage float64       `json:"base_damage"`
	Variance   float64       `json:"variance"`
	AuraRadius float64       `json:"aura_radius"`

	Projectile *ProjectileSpec `json:"projectile,omitempty"`
	Status     *StatusSpec     `json:"status,omitempty"`
}

// NeedsTargetEntity reports whether the skill requires an entity target
// rather than a ground position.
func (t *SkillTemplate) NeedsTargetEntity() bool {
	return t.Category == CategoryInstant
}

// MobTemplate is one immutable mob definition.
type MobTemplate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Level       int32   `json:"level"`
	MaxHP       int32   `json:"max_hp"`
	Speed       float64 `json:"speed"`
	XPReward    int64   `json:"xp_reward"`
	AggroRadius float64 `json:"aggro_radius"`
	LeashRadius float64 `json:"leash_radius"`
	AttackSkill string  `json:"attack_skill"`
}

// SpawnEntry places Count mobs of a template around a point.
type SpawnEntry struct {
	Template string  `json:"template"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Count    int     `json:"count"`
}

func parseStatusType(name string) (model.StatusType, error) {
	switch name {
	case "slow":
		return model.StatusSlow, nil
	case "burn":
		return model.StatusBurn, nil
	case "regen":
		return model.StatusRegen, nil
	case "stun":
		return model.StatusStun, nil
	default:
		return 0, fmt.Errorf("unknown status type %q", name)
	}
}
