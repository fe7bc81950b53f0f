package server

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/driftvale/tilerealm/server/internal/enemy"
	"github.com/driftvale/tilerealm/server/internal/logger"
	"github.com/driftvale/tilerealm/server/internal/maps"
	"github.com/driftvale/tilerealm/server/internal/population"
	"github.com/driftvale/tilerealm/server/internal/roll"
	"github.com/driftvale/tilerealm/server/internal/session"
)

// Handler is the event dispatch core: it validates inbound events,
// mutates the registries, and emits the resulting outbound events.
// Every method must run on the world event loop.
type Handler struct {
	sessions *session.Registry
	enemies  *population.Registry
	rooms    *RoomRouter
	catalog  *enemy.Catalog
	maps     *maps.Table
	rng      *rand.Rand
}

// NewHandler wires the dispatch core to its registries. The registries
// are injected rather than global so tests can run independent worlds
// side by side.
func NewHandler(sessions *session.Registry, enemies *population.Registry, rooms *RoomRouter, catalog *enemy.Catalog, mapTable *maps.Table) *Handler {
	return &Handler{
		sessions: sessions,
		enemies:  enemies,
		rooms:    rooms,
		catalog:  catalog,
		maps:     mapTable,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleEvent dispatches one inbound event for a connection.
func (h *Handler) HandleEvent(connID string, client Client, env *Envelope) {
	switch env.Event {
	case EventJoin:
		h.handleJoin(connID, client, env.Data)
	case EventMove:
		h.handleMove(connID, env.Data)
	case EventChangeMap:
		h.handleChangeMap(connID, env.Data)
	case EventEnemyDefeated:
		h.handleEnemyDefeated(connID, env.Data)
	default:
		logger.Debug("Unknown event ignored", "conn", connID, "event", env.Event)
	}
}

// handleJoin creates the session, replies with the map's roster and
// enemy list, and announces the newcomer to the room. A malformed
// payload terminates the connection: no valid session can exist.
func (h *Handler) handleJoin(connID string, client Client, data json.RawMessage) {
	if _, exists := h.sessions.Get(connID); exists {
		logger.Warning("Join from connection that already has a session", "conn", connID)
		return
	}

	var payload JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Warning("Join payload malformed, terminating connection", "conn", connID, "error", err)
		client.Close()
		return
	}
	if err := payload.Validate(); err != nil {
		logger.Warning("Join payload invalid, terminating connection", "conn", connID, "error", err)
		client.Close()
		return
	}
	mapDef, ok := h.maps.Get(payload.MapID)
	if !ok {
		logger.Warning("Join for unknown map, terminating connection", "conn", connID, "map", payload.MapID)
		client.Close()
		return
	}

	direction, _ := session.ParseDirection(payload.Direction)
	sess := h.sessions.Create(connID, payload.Name, payload.MapID, *payload.X, *payload.Y, direction)
	h.rooms.Join(connID, payload.MapID)

	h.lazyPopulate(mapDef)
	h.sendRoomState(connID, sess)

	// Everyone already in the room learns about the newcomer
	h.rooms.BroadcastToMap(payload.MapID, EventPlayerUpdate, sess, connID)

	logger.Info("Player joined",
		"conn", connID,
		"name", sess.Name,
		"map", sess.MapID)
}

// handleMove overwrites the session's last-known position and relays an
// incremental update to the room. There is no server-side legality
// check; position is client-trusted.
func (h *Handler) handleMove(connID string, data json.RawMessage) {
	var payload MovePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Debug("Move payload malformed", "conn", connID, "error", err)
		return
	}
	if err := payload.Validate(); err != nil {
		logger.Debug("Move payload invalid", "conn", connID, "error", err)
		return
	}

	sess, ok := h.sessions.Get(connID)
	if !ok {
		logger.Debug("Move from connection without a session", "conn", connID)
		return
	}

	direction, _ := session.ParseDirection(payload.Direction)
	h.sessions.UpdateMovement(connID, *payload.X, *payload.Y, direction)

	h.rooms.BroadcastToMap(sess.MapID, EventPlayerUpdate, MoveUpdate{
		ID:        connID,
		X:         sess.X,
		Y:         sess.Y,
		Direction: string(sess.Direction),
	}, connID)
}

// handleChangeMap moves a session between rooms. The sequence is
// strictly ordered (leave, announce departure, mutate, join, reply,
// announce arrival) so the session is never in zero or two rooms as
// observed by any other event.
func (h *Handler) handleChangeMap(connID string, data json.RawMessage) {
	var payload ChangeMapPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Debug("ChangeMap payload malformed", "conn", connID, "error", err)
		return
	}
	if err := payload.Validate(); err != nil {
		logger.Debug("ChangeMap payload invalid", "conn", connID, "error", err)
		return
	}

	sess, ok := h.sessions.Get(connID)
	if !ok {
		logger.Debug("ChangeMap from connection without a session", "conn", connID)
		return
	}
	if payload.NewMapID == sess.MapID {
		logger.Debug("ChangeMap to current map ignored", "conn", connID, "map", sess.MapID)
		return
	}
	mapDef, ok := h.maps.Get(payload.NewMapID)
	if !ok {
		logger.Warning("ChangeMap to unknown map rejected", "conn", connID, "map", payload.NewMapID)
		return
	}

	oldMapID := sess.MapID
	h.rooms.Leave(connID, oldMapID)
	h.rooms.BroadcastToMap(oldMapID, EventPlayerLeft, PlayerLeftPayload{ID: connID}, "")

	direction := session.Direction(payload.Direction)
	h.sessions.UpdateMap(connID, payload.NewMapID, *payload.X, *payload.Y, direction)
	h.rooms.Join(connID, payload.NewMapID)

	h.lazyPopulate(mapDef)
	h.sendRoomState(connID, sess)

	h.rooms.BroadcastToMap(payload.NewMapID, EventPlayerUpdate, sess, connID)

	logger.Info("Player changed map",
		"conn", connID,
		"from", oldMapID,
		"to", payload.NewMapID)
}

// handleEnemyDefeated applies a client-reported kill. Reports for an
// already-removed enemy are silent no-ops, which makes duplicate
// delivery and racing reports from two clients safe.
func (h *Handler) handleEnemyDefeated(connID string, data json.RawMessage) {
	var payload EnemyDefeatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Debug("EnemyDefeated payload malformed", "conn", connID, "error", err)
		return
	}
	if err := payload.Validate(); err != nil {
		logger.Debug("EnemyDefeated payload invalid", "conn", connID, "error", err)
		return
	}

	sess, ok := h.sessions.Get(connID)
	if !ok {
		logger.Debug("EnemyDefeated from connection without a session", "conn", connID)
		return
	}
	if payload.MapID != sess.MapID {
		logger.Warning("EnemyDefeated for a map the reporter is not on",
			"conn", connID,
			"reported_map", payload.MapID,
			"session_map", sess.MapID)
		return
	}

	removed, ok := h.enemies.Remove(payload.MapID, payload.EnemyID)
	if !ok {
		// Already gone: a lost race or a duplicate report
		logger.Debug("EnemyDefeated for absent enemy", "conn", connID, "enemy", payload.EnemyID)
		return
	}

	h.rooms.BroadcastToMap(payload.MapID, EventEnemyRemoved, EnemyRemovedPayload{ID: removed.ID}, "")

	template, ok := h.catalog.Get(removed.Type)
	if !ok {
		logger.Warning("Defeated enemy has no template, reward skipped",
			"enemy", removed.ID,
			"type", removed.Type)
		return
	}
	reward := enemy.RewardForLevel(template, removed.Level)
	h.rooms.EmitTo(connID, EventPlayerReward, reward)

	logger.Debug("Enemy defeated",
		"conn", connID,
		"map", payload.MapID,
		"enemy", removed.ID,
		"xp", reward.XP,
		"gold", reward.Gold)
}

// HandleDisconnect removes the session and tells its last room. Always
// tolerant of a connection that never joined.
func (h *Handler) HandleDisconnect(connID string) {
	sess, existed := h.sessions.Remove(connID)
	if existed {
		h.rooms.Leave(connID, sess.MapID)
		h.rooms.BroadcastToMap(sess.MapID, EventPlayerLeft, PlayerLeftPayload{ID: connID}, "")
		logger.Info("Player disconnected", "conn", connID, "name", sess.Name, "map", sess.MapID)
	} else {
		logger.Debug("Disconnect for connection without a session", "conn", connID)
	}
	h.rooms.Unregister(connID)
}

// sendRoomState replies to a joining or map-changing session with the
// roster of other players and the live enemy list for its map.
func (h *Handler) sendRoomState(connID string, sess *session.Session) {
	others := make(map[string]*session.Session)
	for _, s := range h.sessions.SessionsOnMap(sess.MapID) {
		if s.ID != connID {
			others[s.ID] = s
		}
	}
	h.rooms.EmitTo(connID, EventCurrentPlayers, others)

	enemiesByID := make(map[string]*population.Instance)
	for _, e := range h.enemies.All(sess.MapID) {
		enemiesByID[e.ID] = e
	}
	h.rooms.EmitTo(connID, EventCurrentEnemies, enemiesByID)
}

// lazyPopulate tops a map up to its target when its first occupant
// arrives, so the world is never empty for the first player in.
func (h *Handler) lazyPopulate(mapDef *maps.Definition) {
	if mapDef.TargetPopulation <= 0 {
		return
	}
	if len(h.sessions.SessionsOnMap(mapDef.ID)) > 1 {
		return // someone is already here; the scheduler owns top-ups
	}
	needed := mapDef.TargetPopulation - h.enemies.Count(mapDef.ID)
	if needed <= 0 {
		return
	}
	spawned := h.enemies.SpawnBatch(mapDef.ID, needed, h.spawnOptions(mapDef))
	if len(spawned) > 0 {
		logger.Debug("Lazy population initialized", "map", mapDef.ID, "spawned", len(spawned))
	}
}

// SpawnForMap tops up one map and broadcasts each new enemy to its
// room. Used by the respawn scheduler; must run on the world loop.
func (h *Handler) SpawnForMap(mapDef *maps.Definition, count int) []*population.Instance {
	spawned := h.enemies.SpawnBatch(mapDef.ID, count, h.spawnOptions(mapDef))
	for _, inst := range spawned {
		h.rooms.BroadcastToMap(mapDef.ID, EventEnemySpawned, inst, "")
	}
	return spawned
}

// spawnOptions builds the placement inputs for one map: its weighted
// archetype table, level clamp, bounds, and an occupancy predicate
// combining walkability with player positions. Enemy-occupied tiles are
// rejected inside the registry itself.
func (h *Handler) spawnOptions(mapDef *maps.Definition) population.SpawnOptions {
	occupants := h.sessions.SessionsOnMap(mapDef.ID)
	free := func(x, y int) bool {
		if !mapDef.IsWalkable(x, y) {
			return false
		}
		for _, s := range occupants {
			px, py := mapDef.PixelToTile(s.X, s.Y)
			if px == x && py == y {
				return false
			}
		}
		return true
	}
	return population.SpawnOptions{
		Catalog:  h.catalog,
		Table:    mapDef.SpawnTable(),
		MinLevel: mapDef.SpawnLevelMin,
		MaxLevel: mapDef.SpawnLevelMax,
		Width:    mapDef.Width,
		Height:   mapDef.Height,
		Attempts: roll.DefaultPlacementAttempts,
		Free:     free,
		RNG:      h.rng,
	}
}

// Sessions exposes the session registry for occupancy queries.
func (h *Handler) Sessions() *session.Registry {
	return h.sessions
}

// Enemies exposes the population registry for occupancy queries.
func (h *Handler) Enemies() *population.Registry {
	return h.enemies
}
