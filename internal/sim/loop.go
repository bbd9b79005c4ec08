// Package sim is the fixed-tick orchestrator. Each tick it drains the
// inbound command queue, advances movement, casts, effects and AI in a fixed
// order, handles respawns and regeneration, and hands the queued outbound
// events to the sync layer. Everything runs on one goroutine; handlers and
// systems never see concurrent state.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openrift/riftd/internal/ai"
	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/data"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/game/effect"
	"github.com/openrift/riftd/internal/game/movement"
	"github.com/openrift/riftd/internal/game/skill"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// FlushFunc receives the tick's outbound events. broadcastDue is true on the
// 10 Hz cadence ticks, asking the sync layer to also emit position updates.
type FlushFunc func(w *world.World, events []event.Envelope, broadcastDue bool)

// SaveFunc persists one player's state. Called on the loop goroutine when a
// player leaves and on the periodic autosave cadence; implementations must
// copy what they need and return fast.
type SaveFunc func(p *model.Player)

// Loop is the simulation driver.
type Loop struct {
	World   *world.World
	Tables  *data.Tables
	Casts   *skill.Engine
	Effects *effect.Runner
	AI      *ai.Controller

	inbox chan any

	flush  FlushFunc
	onSave SaveFunc

	lastTickTs int64
	lastRegen  int64
	lastSave   int64
}

// New wires a loop from its systems. flush and onSave may be nil in tests.
func New(w *world.World, tables *data.Tables, flush FlushFunc, onSave SaveFunc) *Loop {
	effects := effect.NewRunner(tables)
	casts := skill.NewEngine(tables, effects)
	return &Loop{
		World:   w,
		Tables:  tables,
		Casts:   casts,
		Effects: effects,
		AI:      ai.NewController(tables, casts),
		inbox:   make(chan any, 1024),
		flush:   flush,
		onSave:  onSave,
	}
}

// Enqueue adds an inbound command. Safe for any goroutine. A full queue
// drops the command: a client flooding faster than the simulation drains is
// not allowed to stall the tick.
func (l *Loop) Enqueue(cmd any) {
	select {
	case l.inbox <- cmd:
	default:
		slog.Warn("inbound queue full, dropping command")
	}
}

// Run drives Step at the fixed tick rate until the context ends.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(constants.TickIntervalMs * time.Millisecond)
	defer ticker.Stop()

	slog.Info("simulation loop started",
		"tick_ms", constants.TickIntervalMs,
		"broadcast_every", constants.BroadcastEveryTicks)

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped", "ticks", l.World.Tick)
			return ctx.Err()
		case <-ticker.C:
			l.Step(time.Now().UnixMilli())
		}
	}
}

// Step runs exactly one tick at the given wall-clock time. Exposed so tests
// drive simulated time directly. The loop always completes: each phase is
// fault-isolated and no error crosses the tick boundary.
func (l *Loop) Step(nowMs int64) {
	w := l.World
	dtMs := int64(constants.TickIntervalMs)
	if l.lastTickTs != 0 && nowMs > l.lastTickTs {
		dtMs = nowMs - l.lastTickTs
	}
	l.lastTickTs = nowMs

	w.Now = nowMs
	w.Tick++

	l.guard("inbox", func() { l.drainInbox() })
	l.guard("movement", func() { movement.Advance(w, dtMs) })
	l.guard("casts", func() { l.Casts.Tick(w) })
	l.guard("effects", func() { l.Effects.Tick(w, dtMs) })
	l.guard("ai", func() { l.AI.Tick(w) })
	l.guard("respawn", func() { l.tickRespawns() })
	l.guard("regen", func() { l.tickRegen() })
	l.guard("autosave", func() { l.tickAutosave() })

	broadcastDue := w.Tick%constants.BroadcastEveryTicks == 0
	events := w.DrainEvents()
	if l.flush != nil {
		l.guard("flush", func() { l.flush(w, events, broadcastDue) })
	}
}

// guard isolates one tick phase so a fault in it cannot abort the tick.
func (l *Loop) guard(phase string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("tick phase fault", "phase", phase, "tick", l.World.Tick, "panic", rec)
		}
	}()
	fn()
}

func (l *Loop) drainInbox() {
	for {
		select {
		case cmd := <-l.inbox:
			l.guard("command", func() { l.dispatch(cmd) })
		default:
			return
		}
	}
}

func (l *Loop) dispatch(cmd any) {
	w := l.World
	switch c := cmd.(type) {
	case MoveCommand:
		l.handleMove(c)
	case CastCommand:
		l.handleCast(c)
	case JoinCommand:
		l.handleJoin(c)
	case LeaveCommand:
		l.handleLeave(c)
	default:
		slog.Warn("unknown inbound command", "type", fmt.Sprintf("%T", cmd), "tick", w.Tick)
	}
}

func (l *Loop) handleMove(c MoveCommand) {
	w := l.World
	e := w.Entity(c.EntityID)
	if e == nil {
		return
	}
	err := movement.OnMoveIntent(w, e, c.Target, c.ClientTs)
	switch err {
	case nil:
	case movement.ErrMalformed:
		// Suspicious input: silently dropped, logged, never answered.
		slog.Warn("malformed move intent dropped", "entity", c.EntityID, "target", c.Target)
	default:
		// Honest rejection: answer with the authoritative position so the
		// client snaps back, sender only.
		slog.Debug("move intent rejected", "entity", c.EntityID, "err", err)
		w.PushEvent(event.ToEntity(c.EntityID, event.ForceSnapshot{ID: c.EntityID}))
	}
}

func (l *Loop) handleCast(c CastCommand) {
	w := l.World
	caster := w.Player(c.EntityID)
	if caster == nil {
		return
	}
	err := l.Casts.RequestCast(w, caster, c.SkillID, c.TargetID, c.TargetPos, c.ClientTs)
	if err == nil {
		return
	}

	var reason event.FailReason
	switch err {
	case skill.ErrOnCooldown:
		reason = event.FailCooldown
	case skill.ErrNoMana:
		reason = event.FailNoMana
	default:
		reason = event.FailInvalid
	}
	slog.Debug("cast rejected",
		"entity", c.EntityID,
		"skill", c.SkillID,
		"reason", reason.String(),
		"err", err)
	w.PushEvent(event.ToEntity(c.EntityID, event.CastFailed{Seq: c.Seq, Reason: reason}))
}

func (l *Loop) handleJoin(c JoinCommand) {
	w := l.World

	p := model.NewPlayer(w.NextPlayerID(), c.Account, c.Name, c.Pos, constants.PositionHistoryWindowMs)
	p.CharacterID = c.CharacterID
	if c.Level > 0 {
		p.Level = c.Level
		p.XP = c.XP
		for lvl := int32(1); lvl < c.Level; lvl++ {
			p.MaxHP += 12
			p.MaxMP += 6
		}
		p.HP = min(c.HP, p.MaxHP)
		p.MP = min(c.MP, p.MaxMP)
		if p.HP <= 0 {
			p.HP = p.MaxHP
		}
	}
	for _, id := range l.Tables.StarterSkills {
		p.UnlockSkill(id)
	}
	if !w.InBounds(p.Pos) {
		p.Pos = model.Vec3{}
		p.SpawnPos = model.Vec3{}
	}
	w.AddPlayer(p)

	snapshots := make([]EntitySnapshot, 0, w.EntityCount())
	w.ForEachEntity(func(e *model.Entity) {
		if e.IsDead() {
			return
		}
		snapshots = append(snapshots, EntitySnapshot{
			ID:    e.ID,
			Kind:  e.Kind,
			Name:  e.Name,
			Pos:   e.Pos,
			Vel:   e.Vel,
			HP:    e.HP,
			MaxHP: e.MaxHP,
			Level: e.Level,
			Speed: e.Speed,
		})
	})

	w.PushEvent(event.Broadcast(event.EntitySpawned{
		ID:    p.ID,
		Kind:  p.Kind,
		Name:  p.Name,
		Pos:   p.Pos,
		HP:    p.HP,
		MaxHP: p.MaxHP,
		Level: p.Level,
		Speed: p.Speed,
	}))

	slog.Info("player joined", "entity", p.ID, "name", p.Name, "account", c.Account)

	c.Reply <- JoinResult{EntityID: p.ID, Entities: snapshots}
}

func (l *Loop) handleLeave(c LeaveCommand) {
	w := l.World
	p := w.Player(c.EntityID)
	if p == nil {
		return
	}
	l.Casts.Cancel(c.EntityID)
	if l.onSave != nil {
		l.onSave(p)
	}
	w.RemoveEntity(c.EntityID)
	w.PushEvent(event.Broadcast(event.EntityDespawned{ID: c.EntityID}))
	slog.Info("player left", "entity", c.EntityID, "name", p.Name)
}

// tickRespawns resurrects entities whose respawn delay elapsed: health and
// position reset, history cleared, spatial index re-entry, spawn broadcast.
func (l *Loop) tickRespawns() {
	w := l.World
	w.ForEachEntity(func(e *model.Entity) {
		if e.Alive || w.Now-e.DiedAt < constants.RespawnDelayMs {
			return
		}
		e.Alive = true
		e.HP = e.MaxHP
		e.MP = e.MaxMP
		e.Pos = e.SpawnPos
		e.Vel = model.Vec3{}
		e.Move = model.MoveState{}
		e.Statuses = e.Statuses[:0]
		if e.History != nil {
			e.History.Clear()
		}
		w.Index.Insert(e.ID, e.Pos)

		w.PushEvent(event.Broadcast(event.EntitySpawned{
			ID:    e.ID,
			Kind:  e.Kind,
			Name:  e.Name,
			Pos:   e.Pos,
			HP:    e.HP,
			MaxHP: e.MaxHP,
			Level: e.Level,
			Speed: e.Speed,
		}))
		w.PushEvent(event.Broadcast(event.ForceSnapshot{ID: e.ID}))

		slog.Info("entity respawned", "entity", e.ID, "kind", e.Kind.String())
	})
}

// tickRegen applies passive hp/mp recovery on its own 1 Hz cadence. The
// first tick only arms the clock, so freshly restored hp/mp survive at
// least one full interval untouched.
func (l *Loop) tickRegen() {
	w := l.World
	if l.lastRegen == 0 {
		l.lastRegen = w.Now
		return
	}
	if w.Now-l.lastRegen < constants.RegenIntervalMs {
		return
	}
	l.lastRegen = w.Now

	w.ForEachEntity(func(e *model.Entity) {
		if e.IsDead() {
			return
		}
		changed := false
		if e.HP < e.MaxHP {
			e.Heal(1)
			changed = true
		}
		if e.Kind == model.KindPlayer && e.MP < e.MaxMP {
			e.MP += 2
			if e.MP > e.MaxMP {
				e.MP = e.MaxMP
			}
			changed = true
		}
		if changed {
			w.PushEvent(event.Broadcast(event.EntityUpdated{
				ID:     e.ID,
				Fields: event.FieldHP | event.FieldMP,
				HP:     e.HP,
				MP:     e.MP,
				Level:  e.Level,
				XP:     e.XP,
			}))
		}
	})
}

// tickAutosave hands every player to the save hook on the autosave cadence,
// so a crash loses at most one interval of progress.
func (l *Loop) tickAutosave() {
	if l.onSave == nil {
		return
	}
	w := l.World
	if l.lastSave == 0 {
		l.lastSave = w.Now
		return
	}
	if w.Now-l.lastSave < constants.AutosaveIntervalMs {
		return
	}
	l.lastSave = w.Now

	saved := 0
	w.ForEachPlayer(func(p *model.Player) {
		l.onSave(p)
		saved++
	})
	if saved > 0 {
		slog.Debug("autosave", "players", saved, "tick", w.Tick)
	}
}
