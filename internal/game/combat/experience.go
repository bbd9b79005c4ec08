package combat

import (
	"log/slog"

	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// Level thresholds follow a simple quadratic curve: the XP needed to finish
// level L is levelStep * L * L.
const levelStep = 100

// ExpForLevel returns the cumulative XP at which the given level is reached.
func ExpForLevel(level int32) int64 {
	if level <= 1 {
		return 0
	}
	l := int64(level - 1)
	return levelStep * l * l
}

// LevelForExp returns the level a character with exp has earned, starting the
// scan from its current level.
func LevelForExp(exp int64, startLevel int32) int32 {
	level := startLevel
	for ExpForLevel(level+1) <= exp {
		level++
	}
	return level
}

// RewardKill grants the mob's XP to the killer and applies any level-ups.
// Level-up restores vitals and scales max health/mana; the progression change
// is broadcast as an EntityUpdated event.
func RewardKill(w *world.World, killer *model.Player, victim *model.Mob) {
	if victim.XPReward <= 0 {
		return
	}

	killer.XP += victim.XPReward
	fields := event.FieldXP

	oldLevel := killer.Level
	newLevel := LevelForExp(killer.XP, oldLevel)
	if newLevel > oldLevel {
		for l := oldLevel; l < newLevel; l++ {
			killer.MaxHP += 12
			killer.MaxMP += 6
		}
		killer.Level = newLevel
		killer.HP = killer.MaxHP
		killer.MP = killer.MaxMP
		fields |= event.FieldLevel | event.FieldHP | event.FieldMP

		slog.Info("level up",
			"player", killer.Name,
			"level", newLevel,
			"xp", killer.XP)
	}

	w.PushEvent(event.Broadcast(event.EntityUpdated{
		ID:     killer.ID,
		Fields: fields,
		HP:     killer.HP,
		MP:     killer.MP,
		Level:  killer.Level,
		XP:     killer.XP,
	}))
}
