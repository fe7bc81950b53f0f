package population

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/driftvale/tilerealm/server/internal/enemy"
	"github.com/driftvale/tilerealm/server/internal/roll"
)

func testCatalog() *enemy.Catalog {
	return enemy.NewCatalog(map[string]enemy.Template{
		"slime":  {Key: "slime", Name: "Slime", BaseHP: 20, BaseXP: 8, BaseGold: 3, MinLevel: 1, MaxLevel: 4},
		"goblin": {Key: "goblin", Name: "Goblin", BaseHP: 30, BaseXP: 15, BaseGold: 10, MinLevel: 2, MaxLevel: 6},
	})
}

func testTable() *roll.WeightedTable {
	table := roll.NewWeightedTable()
	table.Add("slime", 50)
	table.Add("goblin", 25)
	return table
}

func testOptions() SpawnOptions {
	return SpawnOptions{
		Catalog:  testCatalog(),
		Table:    testTable(),
		MinLevel: 1,
		MaxLevel: 5,
		Width:    20,
		Height:   20,
		RNG:      rand.New(rand.NewSource(42)),
	}
}

func TestSpawnBatch(t *testing.T) {
	r := NewRegistry()

	spawned := r.SpawnBatch("world", 10, testOptions())
	if len(spawned) != 10 {
		t.Fatalf("expected 10 enemies on an empty 20x20 map, got %d", len(spawned))
	}
	if r.Count("world") != 10 {
		t.Errorf("expected registry count 10, got %d", r.Count("world"))
	}

	for _, inst := range spawned {
		if !strings.HasPrefix(inst.ID, "enemy-") {
			t.Errorf("unexpected id format %q", inst.ID)
		}
		if inst.X < 0 || inst.X >= 20 || inst.Y < 0 || inst.Y >= 20 {
			t.Errorf("enemy %s placed out of bounds at (%d, %d)", inst.ID, inst.X, inst.Y)
		}
		if inst.HP != inst.MaxHP || inst.HP <= 0 {
			t.Errorf("enemy %s has bad hp %d/%d", inst.ID, inst.HP, inst.MaxHP)
		}
		if inst.Level < 1 || inst.Level > 5 {
			t.Errorf("enemy %s level %d outside clamp", inst.ID, inst.Level)
		}
	}
}

func TestSpawnBatchUniqueIDs(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for _, inst := range r.SpawnBatch("world", 5, testOptions()) {
		seen[inst.ID] = true
	}
	// Remove everything, then spawn again; ids must not repeat
	for id := range seen {
		r.Remove("world", id)
	}
	for _, inst := range r.SpawnBatch("world", 5, testOptions()) {
		if seen[inst.ID] {
			t.Fatalf("id %s reused after removal", inst.ID)
		}
	}
}

func TestSpawnBatchNoTileSharing(t *testing.T) {
	r := NewRegistry()

	// 3x3 map, so at most 9 enemies fit
	opts := testOptions()
	opts.Width = 3
	opts.Height = 3
	opts.Attempts = 200

	spawned := r.SpawnBatch("world", 20, opts)
	if len(spawned) > 9 {
		t.Fatalf("placed %d enemies on a 9-tile map", len(spawned))
	}

	tiles := make(map[[2]int]bool)
	for _, inst := range spawned {
		key := [2]int{inst.X, inst.Y}
		if tiles[key] {
			t.Fatalf("two enemies share tile (%d, %d)", inst.X, inst.Y)
		}
		tiles[key] = true
	}
}

func TestSpawnBatchRespectsFreePredicate(t *testing.T) {
	r := NewRegistry()

	opts := testOptions()
	opts.Free = func(x, y int) bool { return y > 10 } // top half blocked
	opts.Attempts = 200

	for _, inst := range r.SpawnBatch("world", 10, opts) {
		if inst.Y <= 10 {
			t.Errorf("enemy %s placed on blocked tile (%d, %d)", inst.ID, inst.X, inst.Y)
		}
	}
}

func TestSpawnBatchEmptyTable(t *testing.T) {
	r := NewRegistry()

	opts := testOptions()
	opts.Table = roll.NewWeightedTable()

	if spawned := r.SpawnBatch("world", 5, opts); spawned != nil {
		t.Errorf("expected no spawns with an empty table, got %d", len(spawned))
	}
}

func TestSpawnBatchUnknownTemplateSkipped(t *testing.T) {
	r := NewRegistry()

	table := roll.NewWeightedTable()
	table.Add("phantom", 10) // not in the catalog

	opts := testOptions()
	opts.Table = table

	if spawned := r.SpawnBatch("world", 5, opts); len(spawned) != 0 {
		t.Errorf("expected no spawns for unknown template, got %d", len(spawned))
	}
}

func TestRemoveIdempotent(t *testing.T) {
	r := NewRegistry()

	spawned := r.SpawnBatch("world", 1, testOptions())
	if len(spawned) != 1 {
		t.Fatalf("expected 1 spawn, got %d", len(spawned))
	}
	id := spawned[0].ID

	removed, ok := r.Remove("world", id)
	if !ok || removed.ID != id {
		t.Fatalf("expected first remove to succeed, got %+v (ok=%v)", removed, ok)
	}

	if _, ok := r.Remove("world", id); ok {
		t.Error("expected second remove to be a no-op")
	}
	if _, ok := r.Remove("void", id); ok {
		t.Error("expected remove on unknown map to be a no-op")
	}
}

func TestHasEnemyAt(t *testing.T) {
	r := NewRegistry()

	spawned := r.SpawnBatch("world", 1, testOptions())
	inst := spawned[0]

	if !r.HasEnemyAt("world", inst.X, inst.Y) {
		t.Error("expected occupied tile to report an enemy")
	}
	if r.HasEnemyAt("world", inst.X+1, inst.Y) {
		t.Error("expected neighboring tile to be free")
	}
}
