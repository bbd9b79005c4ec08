package gameserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openrift/riftd/internal/db"
	"github.com/openrift/riftd/internal/gameserver/clientpackets"
	"github.com/openrift/riftd/internal/gameserver/packet"
	"github.com/openrift/riftd/internal/gameserver/serverpackets"
	"github.com/openrift/riftd/internal/model"
	"github.com/openrift/riftd/internal/sim"
)

const joinTimeout = 5 * time.Second

// CharacterStore loads persisted characters. Implemented by db.CharacterRepository;
// nil means every join starts a fresh character.
type CharacterStore interface {
	LoadOrCreate(ctx context.Context, account, name string) (db.Character, error)
}

// Handler decodes inbound packets and turns them into simulation commands.
// Ownership is enforced here: move and cast commands always carry the
// entity id bound to the connection, never an id from the packet.
type Handler struct {
	loop    *sim.Loop
	clients *Clients
	chars   CharacterStore
}

// NewHandler creates a packet handler.
func NewHandler(loop *sim.Loop, clients *Clients, chars CharacterStore) *Handler {
	return &Handler{loop: loop, clients: clients, chars: chars}
}

// Handle processes one decrypted packet. A returned error closes the
// connection.
func (h *Handler) Handle(ctx context.Context, c *Client, payload []byte) error {
	r := packet.NewReader(payload)
	opcode, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("reading opcode: %w", err)
	}

	switch c.State() {
	case StateConnected:
		if opcode != clientpackets.OpcodeHandshake {
			return fmt.Errorf("expected handshake, got opcode 0x%02X", opcode)
		}
		return h.onHandshake(c, r)

	case StateKeyed:
		if opcode != clientpackets.OpcodeEnterWorld {
			return fmt.Errorf("expected enter world, got opcode 0x%02X", opcode)
		}
		return h.onEnterWorld(ctx, c, r)

	case StateInWorld:
		switch opcode {
		case clientpackets.OpcodeMoveIntent:
			return h.onMoveIntent(c, r)
		case clientpackets.OpcodeCastRequest:
			return h.onCastRequest(c, r)
		default:
			return fmt.Errorf("unknown opcode 0x%02X", opcode)
		}

	default:
		return fmt.Errorf("packet in state %d", c.State())
	}
}

func (h *Handler) onHandshake(c *Client, r *packet.Reader) error {
	if _, err := clientpackets.ParseHandshake(r); err != nil {
		return fmt.Errorf("parsing handshake: %w", err)
	}

	if err := c.Send(c.initPkt); err != nil {
		return fmt.Errorf("sending init: %w", err)
	}
	c.SetState(StateKeyed)
	slog.Debug("handshake complete", "client", c.Addr(), "session", c.SessionID())
	return nil
}

func (h *Handler) onEnterWorld(ctx context.Context, c *Client, r *packet.Reader) error {
	p, err := clientpackets.ParseEnterWorld(r)
	if err != nil {
		return fmt.Errorf("parsing enter world: %w", err)
	}

	join := sim.JoinCommand{
		Account: p.Account,
		Name:    p.Name,
		Reply:   make(chan sim.JoinResult, 1),
	}

	if h.chars != nil {
		loadCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		ch, err := h.chars.LoadOrCreate(loadCtx, p.Account, p.Name)
		cancel()
		if err != nil {
			return fmt.Errorf("loading character %q: %w", p.Account, err)
		}
		join.Name = ch.Name
		join.CharacterID = ch.ID
		join.Pos = model.Vec3{X: ch.X, Y: ch.Y, Z: ch.Z}
		join.HP = ch.HP
		join.MP = ch.MP
		join.Level = ch.Level
		join.XP = ch.XP
	}

	h.loop.Enqueue(join)

	var res sim.JoinResult
	select {
	case res = <-join.Reply:
	case <-time.After(joinTimeout):
		return fmt.Errorf("join timed out for %q", p.Account)
	case <-ctx.Done():
		return ctx.Err()
	}

	c.Bind(p.Account, res.EntityID)
	h.clients.BindEntity(res.EntityID, c)
	c.SetState(StateInWorld)

	c.Send(serverpackets.EnterAck{
		EntityID: res.EntityID,
		ServerTs: time.Now().UnixMilli(),
	}.Write())
	for _, e := range res.Entities {
		c.Send(serverpackets.SpawnEntity{
			ID:    e.ID,
			Kind:  e.Kind,
			Name:  e.Name,
			Pos:   e.Pos,
			HP:    e.HP,
			MaxHP: e.MaxHP,
			Level: e.Level,
			Speed: e.Speed,
		}.Write())
	}

	slog.Info("client entered world",
		"account", p.Account,
		"entity", res.EntityID,
		"client", c.Addr())
	return nil
}

func (h *Handler) onMoveIntent(c *Client, r *packet.Reader) error {
	p, err := clientpackets.ParseMoveIntent(r)
	if err != nil {
		return fmt.Errorf("parsing move intent: %w", err)
	}
	h.loop.Enqueue(sim.MoveCommand{
		EntityID: c.EntityID(),
		Target:   p.Target,
		ClientTs: p.ClientTs,
	})
	return nil
}

func (h *Handler) onCastRequest(c *Client, r *packet.Reader) error {
	p, err := clientpackets.ParseCastRequest(r)
	if err != nil {
		return fmt.Errorf("parsing cast request: %w", err)
	}
	h.loop.Enqueue(sim.CastCommand{
		EntityID:  c.EntityID(),
		Seq:       p.Seq,
		SkillID:   p.SkillID,
		TargetID:  p.TargetID,
		TargetPos: p.TargetPos,
		ClientTs:  p.ClientTs,
	})
	return nil
}
