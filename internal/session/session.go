// Package session tracks the server-side record of each connected
// player: identity, last-known position, and current map.
package session

// Direction is a facing direction reported by the client.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection validates a client-supplied direction string.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return Direction(s), true
	}
	return "", false
}

// Session is one connected player's record. The connection id doubles as
// the player id for the session's lifetime. Position is last-known only;
// the server performs no movement validation.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Direction Direction `json:"direction"`
	MapID     string    `json:"mapId"`
}

// Registry holds all live sessions, keyed by connection id.
//
// The registry is not safe for concurrent use: it is owned by the world
// event loop and must only be touched from there.
type Registry struct {
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create inserts a new session for the given connection id.
func (r *Registry) Create(id, name, mapID string, x, y float64, direction Direction) *Session {
	s := &Session{
		ID:        id,
		Name:      name,
		X:         x,
		Y:         y,
		Direction: direction,
		MapID:     mapID,
	}
	r.sessions[id] = s
	return s
}

// Get returns the session for the given connection id.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// UpdateMovement overwrites a session's position and direction in place.
// Returns false if no session exists for the id.
func (r *Registry) UpdateMovement(id string, x, y float64, direction Direction) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.X = x
	s.Y = y
	s.Direction = direction
	return true
}

// UpdateMap moves a session to a new map, overwriting position and
// direction in the same step. Returns false if no session exists.
func (r *Registry) UpdateMap(id, mapID string, x, y float64, direction Direction) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.MapID = mapID
	s.X = x
	s.Y = y
	if direction != "" {
		s.Direction = direction
	}
	return true
}

// Remove deletes and returns the session for cleanup use.
func (r *Registry) Remove(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	return s, true
}

// SessionsOnMap returns a snapshot of all sessions currently on a map.
func (r *Registry) SessionsOnMap(mapID string) []*Session {
	var result []*Session
	for _, s := range r.sessions {
		if s.MapID == mapID {
			result = append(result, s)
		}
	}
	return result
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	return len(r.sessions)
}
