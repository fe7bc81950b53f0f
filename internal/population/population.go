// Package population owns the live enemy instances of every map:
// spawning, idempotent removal, and occupancy queries.
package population

import (
	"fmt"
	"math/rand"

	"github.com/driftvale/tilerealm/server/internal/enemy"
	"github.com/driftvale/tilerealm/server/internal/logger"
	"github.com/driftvale/tilerealm/server/internal/roll"
)

// Instance is one live enemy placed on a map. Ids are monotonically
// assigned and never reused for the process lifetime, which is what
// makes duplicate defeat reports safe to drop.
type Instance struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
}

// SpawnOptions carries everything SpawnBatch needs to place enemies on
// one map: the archetype sources, level clamp, map bounds, and the
// occupancy predicate (players, terrain). Enemy-vs-enemy occupancy is
// checked by the registry itself.
type SpawnOptions struct {
	Catalog  *enemy.Catalog
	Table    *roll.WeightedTable
	MinLevel int
	MaxLevel int
	Width    int
	Height   int
	Attempts int
	Free     func(tileX, tileY int) bool
	RNG      *rand.Rand
}

// Registry holds the live enemies of every map, keyed by (mapId, enemyId).
//
// Like the session registry, it is owned by the world event loop and is
// not safe for concurrent use.
type Registry struct {
	maps   map[string]map[string]*Instance
	nextID uint64
}

// NewRegistry creates an empty population registry.
func NewRegistry() *Registry {
	return &Registry{maps: make(map[string]map[string]*Instance)}
}

// EnsureMap idempotently initializes an empty population for a map.
func (r *Registry) EnsureMap(mapID string) {
	if _, ok := r.maps[mapID]; !ok {
		r.maps[mapID] = make(map[string]*Instance)
	}
}

// Count returns the number of live enemies on a map.
func (r *Registry) Count(mapID string) int {
	return len(r.maps[mapID])
}

// All returns a snapshot of the live enemies on a map.
func (r *Registry) All(mapID string) []*Instance {
	enemies := r.maps[mapID]
	result := make([]*Instance, 0, len(enemies))
	for _, e := range enemies {
		result = append(result, e)
	}
	return result
}

// Get returns the enemy with the given id on a map.
func (r *Registry) Get(mapID, enemyID string) (*Instance, bool) {
	e, ok := r.maps[mapID][enemyID]
	return e, ok
}

// HasEnemyAt reports whether any live enemy on the map occupies the tile.
func (r *Registry) HasEnemyAt(mapID string, tileX, tileY int) bool {
	for _, e := range r.maps[mapID] {
		if e.X == tileX && e.Y == tileY {
			return true
		}
	}
	return false
}

// Remove deletes an enemy by id and returns it. Absence is not an
// error: duplicate defeat reports simply find nothing to remove.
func (r *Registry) Remove(mapID, enemyID string) (*Instance, bool) {
	enemies, ok := r.maps[mapID]
	if !ok {
		return nil, false
	}
	e, ok := enemies[enemyID]
	if !ok {
		return nil, false
	}
	delete(enemies, enemyID)
	return e, true
}

// SpawnBatch attempts to place count new enemies on the map. Each enemy
// gets a weighted-random archetype, a level from the clamped template
// range, and a rejection-sampled tile that is free of other enemies and
// passes the caller's occupancy predicate. Placement failures are
// tolerated: the result may hold fewer enemies than requested.
func (r *Registry) SpawnBatch(mapID string, count int, opts SpawnOptions) []*Instance {
	r.EnsureMap(mapID)

	if opts.Catalog == nil || opts.Table == nil || opts.Table.Len() == 0 || count <= 0 {
		return nil
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	free := func(x, y int) bool {
		if r.HasEnemyAt(mapID, x, y) {
			return false
		}
		if opts.Free != nil && !opts.Free(x, y) {
			return false
		}
		return true
	}

	var spawned []*Instance
	for i := 0; i < count; i++ {
		key, ok := opts.Table.Pick(rng)
		if !ok {
			break
		}
		template, ok := opts.Catalog.Get(key)
		if !ok {
			logger.Warning("Spawn table references unknown enemy template",
				"map", mapID,
				"type", key)
			continue
		}

		x, y, placed := roll.Place(rng, opts.Width, opts.Height, opts.Attempts, free)
		if !placed {
			// Map too crowded for this one; the next tick tries again
			continue
		}

		level := enemy.RollLevel(template, opts.MinLevel, opts.MaxLevel, rng)
		hp := enemy.ScaleStat(template.BaseHP, level)

		r.nextID++
		instance := &Instance{
			ID:    fmt.Sprintf("enemy-%d", r.nextID),
			Type:  key,
			Name:  template.Name,
			Level: level,
			X:     x,
			Y:     y,
			HP:    hp,
			MaxHP: hp,
		}
		r.maps[mapID][instance.ID] = instance
		spawned = append(spawned, instance)
	}

	if len(spawned) < count {
		logger.Debug("Spawn batch placed fewer enemies than requested",
			"map", mapID,
			"requested", count,
			"placed", len(spawned))
	}

	return spawned
}
