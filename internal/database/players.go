package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrPlayerNotFound is returned when a player record lookup fails.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerNameTaken is returned when creating a player with a name
// another account already holds.
var ErrPlayerNameTaken = errors.New("player name already taken")

// Player is the durable player record behind the HTTP load/save path.
// The socket core never reads or writes these; in-flight state lives in
// the session registry only.
type Player struct {
	ID         int64   `json:"-"`
	AccountID  int64   `json:"-"`
	Name       string  `json:"name"`
	MapID      string  `json:"mapId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Direction  string  `json:"direction"`
	Level      int     `json:"level"`
	Experience int     `json:"experience"`
	Gold       int     `json:"gold"`
}

// PlayerUpdate is a partial player record; nil fields are left unchanged.
type PlayerUpdate struct {
	MapID      *string  `json:"mapId"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Direction  *string  `json:"direction"`
	Level      *int     `json:"level"`
	Experience *int     `json:"experience"`
	Gold       *int     `json:"gold"`
}

// CreatePlayer creates the player record for an account.
func (d *Database) CreatePlayer(accountID int64, name, mapID string, x, y float64) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("player name cannot be empty")
	}

	insert := "INSERT INTO players (account_id, name, map_id, x, y) VALUES (?, ?, ?, ?, ?)"
	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := d.db.Exec(d.qb.Build(insert), accountID, name, mapID, x, y)
		if err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return nil, ErrPlayerNameTaken
			}
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get player ID: %w", err)
		}
	} else {
		err := d.db.QueryRow(d.qb.BuildWithReturning(insert, "id"), accountID, name, mapID, x, y).Scan(&id)
		if err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return nil, ErrPlayerNameTaken
			}
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
	}

	return &Player{
		ID:        id,
		AccountID: accountID,
		Name:      name,
		MapID:     mapID,
		X:         x,
		Y:         y,
		Direction: "down",
		Level:     1,
	}, nil
}

// GetPlayerByAccount retrieves the player record for an account.
func (d *Database) GetPlayerByAccount(accountID int64) (*Player, error) {
	var p Player
	err := d.db.QueryRow(
		d.qb.Build(`SELECT id, account_id, name, map_id, x, y, direction, level, experience, gold
			FROM players WHERE account_id = ?`),
		accountID,
	).Scan(&p.ID, &p.AccountID, &p.Name, &p.MapID, &p.X, &p.Y, &p.Direction, &p.Level, &p.Experience, &p.Gold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// SavePlayer applies a partial update to an account's player record and
// stamps last_played. Fields left nil in the update are untouched.
func (d *Database) SavePlayer(accountID int64, update PlayerUpdate) error {
	setClauses := []string{"last_played = CURRENT_TIMESTAMP"}
	var args []any

	if update.MapID != nil {
		setClauses = append(setClauses, "map_id = ?")
		args = append(args, *update.MapID)
	}
	if update.X != nil {
		setClauses = append(setClauses, "x = ?")
		args = append(args, *update.X)
	}
	if update.Y != nil {
		setClauses = append(setClauses, "y = ?")
		args = append(args, *update.Y)
	}
	if update.Direction != nil {
		setClauses = append(setClauses, "direction = ?")
		args = append(args, *update.Direction)
	}
	if update.Level != nil {
		setClauses = append(setClauses, "level = ?")
		args = append(args, *update.Level)
	}
	if update.Experience != nil {
		setClauses = append(setClauses, "experience = ?")
		args = append(args, *update.Experience)
	}
	if update.Gold != nil {
		setClauses = append(setClauses, "gold = ?")
		args = append(args, *update.Gold)
	}

	query := fmt.Sprintf("UPDATE players SET %s WHERE account_id = ?", strings.Join(setClauses, ", "))
	args = append(args, accountID)

	result, err := d.db.Exec(d.qb.Build(query), args...)
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	if rows == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// PlayerNameExists checks if any account already uses the player name.
func (d *Database) PlayerNameExists(name string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		d.qb.Build("SELECT COUNT(*) FROM players WHERE name = ?"),
		name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check player name: %w", err)
	}
	return count > 0, nil
}
