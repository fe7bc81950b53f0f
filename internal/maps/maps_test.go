package maps

import "testing"

func TestIsWalkableBounds(t *testing.T) {
	def := &Definition{ID: "world", Width: 10, Height: 8}

	tests := []struct {
		x, y     int
		expected bool
	}{
		{0, 0, true},
		{9, 7, true},
		{-1, 0, false},
		{0, -1, false},
		{10, 0, false},
		{0, 8, false},
	}

	for _, tt := range tests {
		if got := def.IsWalkable(tt.x, tt.y); got != tt.expected {
			t.Errorf("IsWalkable(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestIsWalkableCustomPredicate(t *testing.T) {
	def := &Definition{
		ID:     "world",
		Width:  10,
		Height: 10,
		Walkable: func(x, y int) bool {
			return x != 5 // column 5 is a wall
		},
	}

	if def.IsWalkable(5, 2) {
		t.Error("expected tile (5, 2) to be blocked by the predicate")
	}
	if !def.IsWalkable(4, 2) {
		t.Error("expected tile (4, 2) to be walkable")
	}
}

func TestPixelToTile(t *testing.T) {
	def := &Definition{ID: "world", Width: 100, Height: 100, TileSize: 16}

	x, y := def.PixelToTile(35.7, 16.0)
	if x != 2 || y != 1 {
		t.Errorf("expected tile (2, 1), got (%d, %d)", x, y)
	}
}

func TestPixelToTileDefaultSize(t *testing.T) {
	def := &Definition{ID: "world", Width: 100, Height: 100}

	x, y := def.PixelToTile(32.0, 0)
	if x != 2 || y != 0 {
		t.Errorf("expected tile (2, 0) with default tile size, got (%d, %d)", x, y)
	}
}

func TestSpawnTable(t *testing.T) {
	def := &Definition{
		ID: "world",
		Spawns: []SpawnEntry{
			{Type: "slime", Weight: 50},
			{Type: "goblin", Weight: 25},
			{Type: "ghost", Weight: 0}, // dropped
		},
	}

	table := def.SpawnTable()
	if table.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", table.Len())
	}
	if table.TotalWeight() != 75 {
		t.Errorf("expected total weight 75, got %d", table.TotalWeight())
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable(map[string]*Definition{
		"world": {ID: "world", Width: 10, Height: 10},
	})

	if _, ok := table.Get("world"); !ok {
		t.Error("expected to find 'world'")
	}
	if _, ok := table.Get("void"); ok {
		t.Error("expected lookup of unknown map to fail")
	}
	if table.Count() != 1 {
		t.Errorf("expected 1 map, got %d", table.Count())
	}
}
