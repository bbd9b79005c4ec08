// Package world owns the authoritative simulation state: the entity store,
// the spatial index, the world clock and the outbound event queue. One World
// is created on server start and passed explicitly into every tick and
// handler call; there are no package-level singletons, so tests build as many
// independent worlds as they like.
package world

import (
	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/game/geo"
	"github.com/openrift/riftd/internal/model"
)

// World is the single authoritative state container. All access happens on
// the simulation goroutine; no field is safe for concurrent use.
type World struct {
	// Now is the wall-clock tick timestamp in ms, updated once per tick so
	// every system within a tick sees the same instant.
	Now int64
	// Tick counts completed simulation steps.
	Tick uint64

	Index     *SpatialIndex
	Obstacles []geo.Rect

	players  map[uint32]*model.Player
	mobs     map[uint32]*model.Mob
	entities map[uint32]*model.Entity

	events []event.Envelope

	nextPlayerID uint32
	nextMobID    uint32
	nextSeq      uint64
}

// New creates an empty world.
func New() *World {
	return &World{
		Index:        NewSpatialIndex(constants.SpatialCellSize),
		players:      make(map[uint32]*model.Player),
		mobs:         make(map[uint32]*model.Mob),
		entities:     make(map[uint32]*model.Entity),
		nextPlayerID: constants.ObjectIDPlayerStart,
		nextMobID:    constants.ObjectIDMobStart,
	}
}

// NextPlayerID allocates an object id from the player range.
func (w *World) NextPlayerID() uint32 {
	id := w.nextPlayerID
	w.nextPlayerID++
	return id
}

// NextMobID allocates an object id from the mob range.
func (w *World) NextMobID() uint32 {
	id := w.nextMobID
	w.nextMobID++
	return id
}

// NextSeq allocates a monotonically increasing sequence number, used for
// cast, projectile and status-effect ids.
func (w *World) NextSeq() uint64 {
	w.nextSeq++
	return w.nextSeq
}

// AddPlayer registers a player and inserts it into the spatial index.
func (w *World) AddPlayer(p *model.Player) {
	w.players[p.ID] = p
	w.entities[p.ID] = p.Entity
	w.Index.Insert(p.ID, p.Pos)
}

// AddMob registers a mob and inserts it into the spatial index.
func (w *World) AddMob(m *model.Mob) {
	w.mobs[m.ID] = m
	w.entities[m.ID] = m.Entity
	w.Index.Insert(m.ID, m.Pos)
}

// RemoveEntity unregisters an entity and clears its index membership.
func (w *World) RemoveEntity(id uint32) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	w.Index.Remove(id, e.Pos)
	delete(w.entities, id)
	delete(w.players, id)
	delete(w.mobs, id)
}

// Entity returns the entity record for an id, nil when unknown.
func (w *World) Entity(id uint32) *model.Entity {
	return w.entities[id]
}

// Player returns the player record for an id, nil for mobs and unknowns.
func (w *World) Player(id uint32) *model.Player {
	return w.players[id]
}

// Mob returns the mob record for an id, nil for players and unknowns.
func (w *World) Mob(id uint32) *model.Mob {
	return w.mobs[id]
}

// EntityCount returns the number of registered entities.
func (w *World) EntityCount() int {
	return len(w.entities)
}

// ForEachEntity visits every entity. Mutating the set during iteration is the
// caller's responsibility to avoid.
func (w *World) ForEachEntity(fn func(*model.Entity)) {
	for _, e := range w.entities {
		fn(e)
	}
}

// ForEachPlayer visits every player.
func (w *World) ForEachPlayer(fn func(*model.Player)) {
	for _, p := range w.players {
		fn(p)
	}
}

// ForEachMob visits every mob.
func (w *World) ForEachMob(fn func(*model.Mob)) {
	for _, m := range w.mobs {
		fn(m)
	}
}

// MovePosition updates an entity's position, keeping the spatial index in
// step. This is the only sanctioned way to change Pos after registration.
func (w *World) MovePosition(e *model.Entity, newPos model.Vec3) {
	w.Index.Move(e.ID, e.Pos, newPos)
	e.Pos = newPos
}

// Blocked reports whether the segment [from, to] crosses a static obstacle.
func (w *World) Blocked(from, to model.Vec3) bool {
	for _, r := range w.Obstacles {
		if r.IntersectsSegment(from, to) {
			return true
		}
	}
	return false
}

// InBounds reports whether a position is inside the playable coordinate box
// and finite. Out-of-bounds input is treated as malformed, not rejected-with-
// reason.
func (w *World) InBounds(pos model.Vec3) bool {
	if !pos.IsFinite() {
		return false
	}
	b := constants.WorldBound
	return pos.X >= -b && pos.X <= b && pos.Z >= -b && pos.Z <= b
}

// PushEvent queues an outbound event for delivery after this tick.
func (w *World) PushEvent(env event.Envelope) {
	w.events = append(w.events, env)
}

// DrainEvents returns the queued events and resets the queue. Called once per
// tick by the sync layer; order of emission is preserved.
func (w *World) DrainEvents() []event.Envelope {
	evs := w.events
	w.events = nil
	return evs
}
