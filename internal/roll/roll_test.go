package roll

import (
	"math/rand"
	"testing"
)

func TestWeightedTablePickEmpty(t *testing.T) {
	table := NewWeightedTable()
	rng := rand.New(rand.NewSource(1))

	if _, ok := table.Pick(rng); ok {
		t.Error("expected Pick to fail on an empty table")
	}
}

func TestWeightedTableIgnoresNonPositiveWeights(t *testing.T) {
	table := NewWeightedTable()
	table.Add("zero", 0)
	table.Add("negative", -5)

	if table.Len() != 0 {
		t.Errorf("expected 0 entries, got %d", table.Len())
	}
	if table.TotalWeight() != 0 {
		t.Errorf("expected total weight 0, got %d", table.TotalWeight())
	}
}

func TestWeightedTablePickCoversAllEntries(t *testing.T) {
	table := NewWeightedTable()
	table.Add("common", 80)
	table.Add("rare", 20)

	rng := rand.New(rand.NewSource(42))
	counts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		key, ok := table.Pick(rng)
		if !ok {
			t.Fatal("Pick failed on a non-empty table")
		}
		counts[key]++
	}

	if counts["common"] == 0 || counts["rare"] == 0 {
		t.Errorf("expected both entries to be drawn, got %v", counts)
	}
	if counts["common"] <= counts["rare"] {
		t.Errorf("expected 'common' to dominate, got %v", counts)
	}
}

func TestWeightedTableSingleEntry(t *testing.T) {
	table := NewWeightedTable()
	table.Add("only", 1)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		key, ok := table.Pick(rng)
		if !ok || key != "only" {
			t.Fatalf("expected 'only', got %q (ok=%v)", key, ok)
		}
	}
}

func TestPlaceWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		x, y, ok := Place(rng, 10, 8, 0, nil)
		if !ok {
			t.Fatal("Place failed with no occupancy predicate")
		}
		if x < 0 || x >= 10 || y < 0 || y >= 8 {
			t.Fatalf("placement (%d, %d) out of bounds", x, y)
		}
	}
}

func TestPlaceRespectsPredicate(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	// Only one free tile on the whole map
	free := func(x, y int) bool { return x == 2 && y == 3 }
	x, y, ok := Place(rng, 4, 4, 200, free)
	if !ok {
		t.Fatal("expected placement to eventually find the free tile")
	}
	if x != 2 || y != 3 {
		t.Errorf("expected (2, 3), got (%d, %d)", x, y)
	}
}

func TestPlaceGivesUpWhenFull(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	never := func(x, y int) bool { return false }
	if _, _, ok := Place(rng, 5, 5, 20, never); ok {
		t.Error("expected placement to fail when no tile is free")
	}
}

func TestPlaceInvalidDimensions(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	if _, _, ok := Place(rng, 0, 5, 20, nil); ok {
		t.Error("expected placement to fail with zero width")
	}
	if _, _, ok := Place(rng, 5, -1, 20, nil); ok {
		t.Error("expected placement to fail with negative height")
	}
}
