package gameserver

import (
	"log/slog"
	"math"

	"github.com/openrift/riftd/internal/event"
	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/gameserver/serverpackets"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/world"
)

// NetSync fans simulation events out to clients and broadcasts position
// state on the sync cadence. Positions go as centimeter deltas against the
// last value broadcast for the entity; anything that moved too far for an
// int16 delta, or that clients have no baseline for, goes as a full
// snapshot that re-baselines the decoder.
//
// Flush is the simulation loop's flush callback and runs on the loop
// goroutine; NetSync needs no locking of its own.
type NetSync struct {
	clients   *Clients
	baselines map[uint32]model.Vec3
	forced    map[uint32]struct{}

	// scratch, reused across flushes
	msgs []interface{ WriteTo(*packet.Writer) }
}

// NewNetSync creates the sync layer over the given client registry.
func NewNetSync(clients *Clients) *NetSync {
	return &NetSync{
		clients:   clients,
		baselines: make(map[uint32]model.Vec3, 256),
		forced:    make(map[uint32]struct{}, 16),
	}
}

// Flush delivers one tick's events and, on broadcast ticks, the position
// batch.
func (ns *NetSync) Flush(w *world.World, events []event.Envelope, broadcastDue bool) {
	for _, env := range events {
		ns.dispatch(w, env)
	}

	if broadcastDue || len(ns.forced) > 0 {
		ns.broadcastPositions(w)
	}
}

func (ns *NetSync) dispatch(w *world.World, env event.Envelope) {
	var pkt []byte

	switch ev := env.Msg.(type) {
	case event.EntitySpawned:
		pkt = serverpackets.SpawnEntity{
			ID:    ev.ID,
			Kind:  ev.Kind,
			Name:  ev.Name,
			Pos:   ev.Pos,
			HP:    ev.HP,
			MaxHP: ev.MaxHP,
			Level: ev.Level,
			Speed: ev.Speed,
		}.Write()

	case event.EntityDespawned:
		delete(ns.baselines, ev.ID)
		delete(ns.forced, ev.ID)
		pkt = serverpackets.DespawnEntity{ID: ev.ID}.Write()

	case event.CastStarted:
		pkt = serverpackets.CastStart{
			EntityID:   ev.CasterID,
			SkillID:    ev.SkillID,
			DurationMs: int32(ev.CastDurationMs),
		}.Write()

	case event.CastEnded:
		pkt = serverpackets.CastEnd{
			EntityID: ev.CasterID,
			SkillID:  ev.SkillID,
			Success:  ev.Success,
		}.Write()

	case event.CastFailed:
		pkt = serverpackets.CastFail{
			Seq:    ev.Seq,
			Reason: serverpackets.ReasonCode(ev.Reason),
		}.Write()

	case event.ProjectileSpawned:
		pkt = serverpackets.ProjectileSpawn{
			CastID:    ev.CastID,
			CasterID:  ev.CasterID,
			SkillID:   ev.SkillID,
			Origin:    ev.Origin,
			Dir:       ev.Dir,
			Speed:     ev.Speed,
			HitRadius: ev.HitRadius,
			LaunchTs:  ev.LaunchTs,
		}.Write()

	case event.ProjectileImpact:
		pkt = serverpackets.ProjectileHit{
			CastID: ev.CastID,
			Hits:   ev.Hits,
			Impact: ev.Impact,
		}.Write()

	case event.EntityUpdated:
		pkt = serverpackets.EntityUpdated{
			ID:     ev.ID,
			Fields: ev.Fields,
			HP:     ev.HP,
			MP:     ev.MP,
			Level:  ev.Level,
			XP:     ev.XP,
		}.Write()

	case event.StatusApplied:
		pkt = serverpackets.StatusApplied{
			TargetID:   ev.TargetID,
			Type:       ev.Type,
			Magnitude:  ev.Magnitude,
			DurationMs: int32(ev.DurationMs),
		}.Write()

	case event.ForceSnapshot:
		if env.To != 0 {
			// Authoritative correction for one client; bypasses the batch.
			if e := w.Entity(ev.ID); e != nil {
				ns.clients.SendTo(env.To, snapshotOf(e, w.Now).Write())
			}
			return
		}
		ns.forced[ev.ID] = struct{}{}
		return

	default:
		slog.Warn("unhandled event type", "type", env.Msg)
		return
	}

	if env.To == 0 {
		ns.clients.Broadcast(pkt)
	} else {
		ns.clients.SendTo(env.To, pkt)
	}
}

// broadcastPositions emits one SyncBatch with a delta or snapshot for every
// entity whose broadcast position is stale.
func (ns *NetSync) broadcastPositions(w *world.World) {
	ns.msgs = ns.msgs[:0]

	w.ForEachEntity(func(e *model.Entity) {
		if !e.Alive {
			return
		}

		base, haveBase := ns.baselines[e.ID]
		_, force := ns.forced[e.ID]

		if !haveBase || force {
			ns.msgs = append(ns.msgs, snapshotOf(e, w.Now))
			ns.baselines[e.ID] = e.Pos
			e.Move.DirtyPos = false
			return
		}

		dx := math.Round((e.Pos.X - base.X) * 100)
		dy := math.Round((e.Pos.Y - base.Y) * 100)
		dz := math.Round((e.Pos.Z - base.Z) * 100)

		if dx == 0 && dy == 0 && dz == 0 {
			if e.Move.DirtyPos {
				// Sub-centimeter drift on a stop still needs the exact
				// final position out.
				ns.msgs = append(ns.msgs, snapshotOf(e, w.Now))
				ns.baselines[e.ID] = e.Pos
				e.Move.DirtyPos = false
			}
			return
		}

		if dx < math.MinInt16 || dx > math.MaxInt16 ||
			dy < math.MinInt16 || dy > math.MaxInt16 ||
			dz < math.MinInt16 || dz > math.MaxInt16 {
			ns.msgs = append(ns.msgs, snapshotOf(e, w.Now))
			ns.baselines[e.ID] = e.Pos
			e.Move.DirtyPos = false
			return
		}

		ns.msgs = append(ns.msgs, serverpackets.PosDelta{
			ID:   e.ID,
			DxCm: int16(dx),
			DyCm: int16(dy),
			DzCm: int16(dz),
		})
		// Advance the baseline by the quantized delta, exactly as the
		// client will, so rounding error never accumulates.
		ns.baselines[e.ID] = model.Vec3{
			X: base.X + dx/100,
			Y: base.Y + dy/100,
			Z: base.Z + dz/100,
		}
		e.Move.DirtyPos = false
	})

	clear(ns.forced)

	if len(ns.msgs) == 0 {
		return
	}
	ns.clients.Broadcast(serverpackets.NewSyncBatch(ns.msgs, w.Now).Write())
}

func snapshotOf(e *model.Entity, now int64) serverpackets.PosSnapshot {
	return serverpackets.PosSnapshot{
		ID:       e.ID,
		Pos:      e.Pos,
		Vel:      e.Vel,
		ServerTs: now,
	}
}
