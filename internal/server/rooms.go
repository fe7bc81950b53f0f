package server

import (
	"github.com/driftvale/tilerealm/server/internal/logger"
)

// RoomRouter manages map-scoped broadcast groups. Every connected
// client is registered once; room membership then follows the session's
// current map. Like the registries, the router is owned by the world
// event loop and needs no locking.
type RoomRouter struct {
	clients map[string]Client            // connID -> transport
	rooms   map[string]map[string]struct{} // mapID -> member connIDs
}

// NewRoomRouter creates an empty router.
func NewRoomRouter() *RoomRouter {
	return &RoomRouter{
		clients: make(map[string]Client),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Register makes a connection addressable before it joins any room.
func (r *RoomRouter) Register(connID string, client Client) {
	r.clients[connID] = client
}

// Unregister removes a connection entirely. Callers are expected to
// have already left any room.
func (r *RoomRouter) Unregister(connID string) {
	delete(r.clients, connID)
}

// Join adds a connection to the map's broadcast group.
func (r *RoomRouter) Join(connID, mapID string) {
	room, ok := r.rooms[mapID]
	if !ok {
		room = make(map[string]struct{})
		r.rooms[mapID] = room
	}
	room[connID] = struct{}{}
}

// Leave removes a connection from the map's broadcast group. During a
// map change this must happen before Join on the new map, so a
// connection is never a member of two rooms at once.
func (r *RoomRouter) Leave(connID, mapID string) {
	room, ok := r.rooms[mapID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, mapID)
	}
}

// IsMember reports whether a connection is in the map's broadcast group.
func (r *RoomRouter) IsMember(connID, mapID string) bool {
	_, ok := r.rooms[mapID][connID]
	return ok
}

// RoomSize returns the number of connections in the map's group.
func (r *RoomRouter) RoomSize(mapID string) int {
	return len(r.rooms[mapID])
}

// BroadcastToMap delivers an event to every member of the map's group,
// except the optionally excluded sender (empty string excludes nobody).
func (r *RoomRouter) BroadcastToMap(mapID, event string, data any, excludeConnID string) {
	for connID := range r.rooms[mapID] {
		if connID == excludeConnID {
			continue
		}
		client, ok := r.clients[connID]
		if !ok {
			continue
		}
		if err := client.Send(event, data); err != nil {
			logger.Debug("Broadcast delivery failed",
				"conn", connID,
				"map", mapID,
				"event", event,
				"error", err)
		}
	}
}

// EmitTo delivers an event to a single connection.
func (r *RoomRouter) EmitTo(connID, event string, data any) {
	client, ok := r.clients[connID]
	if !ok {
		logger.Debug("Unicast to unknown connection", "conn", connID, "event", event)
		return
	}
	if err := client.Send(event, data); err != nil {
		logger.Debug("Unicast delivery failed",
			"conn", connID,
			"event", event,
			"error", err)
	}
}
