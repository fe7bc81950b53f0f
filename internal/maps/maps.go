// Package maps holds the static per-map configuration the coordination
// core needs: tile bounds, target enemy population, and spawn tables.
// Terrain itself lives client-side; the server only sees map dimensions
// and a pluggable walkability predicate.
package maps

import (
	"github.com/driftvale/tilerealm/server/internal/roll"
)

// DefaultTileSize is the pixel size of one tile when a map doesn't set its own.
const DefaultTileSize = 16

// SpawnEntry is one weighted archetype in a map's spawn table.
type SpawnEntry struct {
	Type   string `yaml:"type"`
	Weight int    `yaml:"weight"`
}

// Definition describes one map. Target population 0 marks a safe zone:
// the respawn scheduler never spawns there.
type Definition struct {
	ID               string       `yaml:"-"`
	Name             string       `yaml:"name"`
	Width            int          `yaml:"width"`
	Height           int          `yaml:"height"`
	TileSize         int          `yaml:"tile_size"`
	TargetPopulation int          `yaml:"target_population"`
	SpawnLevelMin    int          `yaml:"spawn_level_min"`
	SpawnLevelMax    int          `yaml:"spawn_level_max"`
	Spawns           []SpawnEntry `yaml:"spawns"`

	// Walkable is the terrain oracle for spawn placement. The server has
	// no terrain data, so this stays permissive unless a real check is
	// plugged in. TODO: feed the client's collision layer through here
	// once map terrain is exported alongside these definitions.
	Walkable func(tileX, tileY int) bool `yaml:"-"`
}

// IsWalkable reports whether a tile is inside the map and passes the
// walkability predicate (permissive when none is set).
func (d *Definition) IsWalkable(tileX, tileY int) bool {
	if tileX < 0 || tileY < 0 || tileX >= d.Width || tileY >= d.Height {
		return false
	}
	if d.Walkable == nil {
		return true
	}
	return d.Walkable(tileX, tileY)
}

// SpawnTable builds the weighted archetype table for this map.
func (d *Definition) SpawnTable() *roll.WeightedTable {
	table := roll.NewWeightedTable()
	for _, entry := range d.Spawns {
		table.Add(entry.Type, entry.Weight)
	}
	return table
}

// PixelToTile converts a pixel coordinate to a tile coordinate.
func (d *Definition) PixelToTile(px, py float64) (int, int) {
	size := d.TileSize
	if size <= 0 {
		size = DefaultTileSize
	}
	return int(px) / size, int(py) / size
}

// Table is the read-only collection of map definitions, keyed by map id.
type Table struct {
	maps map[string]*Definition
}

// NewTable creates a table from the given definitions.
func NewTable(defs map[string]*Definition) *Table {
	if defs == nil {
		defs = make(map[string]*Definition)
	}
	return &Table{maps: defs}
}

// Get returns the definition for the given map id.
func (t *Table) Get(mapID string) (*Definition, bool) {
	d, ok := t.maps[mapID]
	return d, ok
}

// IDs returns all map ids in the table.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.maps))
	for id := range t.maps {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of maps in the table.
func (t *Table) Count() int {
	return len(t.maps)
}
