package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/openrift/riftd/internal/model"
)

// Character is the persisted state of one player character. A zero Level
// marks a character that has never entered the world; the simulation
// applies fresh-character defaults on join.
type Character struct {
	ID      int64
	Account string
	Name    string
	X       float64
	Y       float64
	Z       float64
	HP      int32
	MP      int32
	Level   int32
	XP      int64
}

// CharacterRepository manages characters in the database. One character per
// account.
type CharacterRepository struct {
	db *DB
}

// NewCharacterRepository creates a character repository.
func NewCharacterRepository(db *DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// LoadOrCreate returns the account's character, creating a fresh row on
// first login.
func (r *CharacterRepository) LoadOrCreate(ctx context.Context, account, name string) (Character, error) {
	account = strings.ToLower(account)

	var ch Character
	err := r.db.pool.QueryRow(ctx,
		`SELECT id, account, name, x, y, z, hp, mp, level, xp
		 FROM characters WHERE account = $1`, account,
	).Scan(&ch.ID, &ch.Account, &ch.Name, &ch.X, &ch.Y, &ch.Z, &ch.HP, &ch.MP, &ch.Level, &ch.XP)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Character{}, fmt.Errorf("querying character %q: %w", account, err)
	}

	ch = Character{Account: account, Name: name}
	err = r.db.pool.QueryRow(ctx,
		`INSERT INTO characters (account, name) VALUES ($1, $2) RETURNING id`,
		account, name,
	).Scan(&ch.ID)
	if err != nil {
		return Character{}, fmt.Errorf("creating character %q: %w", account, err)
	}
	return ch, nil
}

// Save writes a player's live state back to its character row.
func (r *CharacterRepository) Save(ctx context.Context, p *model.Player) error {
	if p.CharacterID == 0 {
		return nil
	}
	_, err := r.db.pool.Exec(ctx,
		`UPDATE characters
		 SET x = $2, y = $3, z = $4, hp = $5, mp = $6, level = $7, xp = $8,
		     updated_at = now()
		 WHERE id = $1`,
		p.CharacterID, p.Pos.X, p.Pos.Y, p.Pos.Z, p.HP, p.MP, p.Level, p.XP,
	)
	if err != nil {
		return fmt.Errorf("saving character %d: %w", p.CharacterID, err)
	}
	return nil
}
