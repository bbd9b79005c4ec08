package clientpackets

import (
	"fmt"

	"github.com/openrift/riftd/internal/constants"
	"github.com/openrift/riftd/internal/gameserver/packet"
)

// EnterWorld requests a character to be placed into the simulation.
type EnterWorld struct {
	Account string
	Name    string
}

func ParseEnterWorld(r *packet.Reader) (EnterWorld, error) {
	var p EnterWorld
	var err error

	p.Account, err = r.ReadString(constants.MaxAccountLen)
	if err != nil {
		return p, fmt.Errorf("read account: %w", err)
	}
	if p.Account == "" {
		return p, fmt.Errorf("empty account")
	}
	p.Name, err = r.ReadString(constants.MaxAccountLen)
	if err != nil {
		return p, fmt.Errorf("read name: %w", err)
	}
	if p.Name == "" {
		p.Name = p.Account
	}

	return p, nil
}
