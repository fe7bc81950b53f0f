package server

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/driftvale/tilerealm/server/internal/session"
)

// Inbound event names (client -> server).
const (
	EventJoin          = "join"
	EventMove          = "move"
	EventChangeMap     = "changeMap"
	EventEnemyDefeated = "enemyDefeated"
)

// Outbound event names (server -> client).
const (
	EventCurrentPlayers = "currentPlayers"
	EventCurrentEnemies = "currentEnemies"
	EventPlayerUpdate   = "playerUpdate"
	EventPlayerLeft     = "playerLeft"
	EventEnemyRemoved   = "enemyRemoved"
	EventEnemySpawned   = "enemySpawned"
	EventPlayerReward   = "playerReward"
)

// Envelope is the wire framing for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ErrMalformedPayload marks an event payload that failed validation.
var ErrMalformedPayload = errors.New("malformed event payload")

// JoinPayload is the first event a connection must send. X and Y are
// pointers so a missing coordinate is distinguishable from zero.
type JoinPayload struct {
	Name      string   `json:"name"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Direction string   `json:"direction"`
	MapID     string   `json:"mapId"`
}

// Validate checks the join payload. Direction defaults to down when absent.
func (p *JoinPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("join requires a non-empty name")
	}
	if p.MapID == "" {
		return errors.New("join requires a mapId")
	}
	if p.X == nil || p.Y == nil {
		return errors.New("join requires numeric x and y")
	}
	if p.Direction == "" {
		p.Direction = string(session.DirectionDown)
	}
	if _, ok := session.ParseDirection(p.Direction); !ok {
		return errors.New("join direction is invalid")
	}
	return nil
}

// MovePayload carries a position update. The server applies it without
// any legality check; movement is a trust boundary.
type MovePayload struct {
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Direction string   `json:"direction"`
}

// Validate checks the move payload.
func (p *MovePayload) Validate() error {
	if p.X == nil || p.Y == nil {
		return errors.New("move requires numeric x and y")
	}
	if _, ok := session.ParseDirection(p.Direction); !ok {
		return errors.New("move direction is invalid")
	}
	return nil
}

// ChangeMapPayload moves a session to another map. Direction is optional.
type ChangeMapPayload struct {
	NewMapID  string   `json:"newMapId"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Direction string   `json:"direction"`
}

// Validate checks the changeMap payload.
func (p *ChangeMapPayload) Validate() error {
	if p.NewMapID == "" {
		return errors.New("changeMap requires a newMapId")
	}
	if p.X == nil || p.Y == nil {
		return errors.New("changeMap requires numeric x and y")
	}
	if p.Direction != "" {
		if _, ok := session.ParseDirection(p.Direction); !ok {
			return errors.New("changeMap direction is invalid")
		}
	}
	return nil
}

// EnemyDefeatedPayload reports a client-resolved kill. The mapId must
// match the sender's own recorded map.
type EnemyDefeatedPayload struct {
	EnemyID string `json:"enemyId"`
	MapID   string `json:"mapId"`
}

// Validate checks the enemyDefeated payload.
func (p *EnemyDefeatedPayload) Validate() error {
	if p.EnemyID == "" || p.MapID == "" {
		return errors.New("enemyDefeated requires enemyId and mapId")
	}
	return nil
}

// MoveUpdate is the incremental playerUpdate broadcast after a move.
type MoveUpdate struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
}

// PlayerLeftPayload announces a session leaving a room.
type PlayerLeftPayload struct {
	ID string `json:"id"`
}

// EnemyRemovedPayload announces an enemy removed from a map.
type EnemyRemovedPayload struct {
	ID string `json:"id"`
}
