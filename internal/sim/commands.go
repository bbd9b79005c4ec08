package sim

import "github.com/openrift/riftd/internal/model"

// Commands are the inbound message queue entries. Connection goroutines
// enqueue them as packets arrive; the loop drains the queue once per tick
// boundary, giving deterministic ordering. Ownership is validated by the
// gameserver before enqueueing: EntityID is always the entity bound to the
// originating connection, never a client-supplied id.

// MoveCommand is a destination-based move intent.
type MoveCommand struct {
	EntityID uint32
	Target   model.Vec3
	ClientTs int64
}

// CastCommand is a skill cast request. Seq echoes back in CastFail so the
// client can correlate rejections.
type CastCommand struct {
	EntityID  uint32
	Seq       uint32
	SkillID   string
	TargetID  uint32
	TargetPos model.Vec3
	ClientTs  int64
}

// JoinCommand asks the loop to create and register a player. The loop sends
// the result on Reply exactly once; the requesting connection goroutine
// blocks on it.
type JoinCommand struct {
	Account string
	Name    string
	// Persisted state; zero-valued for a fresh character.
	CharacterID int64
	Pos         model.Vec3
	HP          int32
	MP          int32
	Level       int32
	XP          int64

	Reply chan JoinResult
}

// JoinResult carries the new entity id and the initial world view the client
// needs before the event stream takes over.
type JoinResult struct {
	EntityID uint32
	// Entities is a snapshot of everything currently alive, joiner included.
	Entities []EntitySnapshot
}

// EntitySnapshot is the initial-sync view of one entity.
type EntitySnapshot struct {
	ID    uint32
	Kind  model.EntityKind
	Name  string
	Pos   model.Vec3
	Vel   model.Vec3
	HP    int32
	MaxHP int32
	Level int32
	Speed float64
}

// LeaveCommand unregisters a player on disconnect.
type LeaveCommand struct {
	EntityID uint32
}
