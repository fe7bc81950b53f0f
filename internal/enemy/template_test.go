package enemy

import (
	"math/rand"
	"testing"
)

func TestScaleStatLevelOne(t *testing.T) {
	if got := ScaleStat(20, 1); got != 20 {
		t.Errorf("expected level 1 to keep the base stat, got %d", got)
	}
}

func TestScaleStat(t *testing.T) {
	tests := []struct {
		base     int
		level    int
		expected int
	}{
		{20, 2, 22},  // 20 * 1.1
		{20, 5, 28},  // 20 * 1.4
		{20, 11, 40}, // 20 * 2.0
		{10, 3, 12},  // 10 * 1.2
		{7, 2, 7},    // 7 * 1.1 = 7.7, truncated
	}

	for _, tt := range tests {
		if got := ScaleStat(tt.base, tt.level); got != tt.expected {
			t.Errorf("ScaleStat(%d, %d) = %d, expected %d", tt.base, tt.level, got, tt.expected)
		}
	}
}

func TestScaleStatBelowLevelOne(t *testing.T) {
	if got := ScaleStat(20, 0); got != 20 {
		t.Errorf("expected level 0 to be treated as level 1, got %d", got)
	}
}

func TestRewardForLevel(t *testing.T) {
	template := Template{BaseXP: 10, BaseGold: 4}

	reward := RewardForLevel(template, 5)
	if reward.XP != 14 {
		t.Errorf("expected 14 xp at level 5, got %d", reward.XP)
	}
	if reward.Gold != 5 {
		t.Errorf("expected 5 gold at level 5, got %d", reward.Gold)
	}
}

func TestRollLevelWithinClampedRange(t *testing.T) {
	template := Template{MinLevel: 2, MaxLevel: 10}
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 100; i++ {
		level := RollLevel(template, 4, 6, rng)
		if level < 4 || level > 6 {
			t.Fatalf("level %d outside clamp [4, 6]", level)
		}
	}
}

func TestRollLevelTemplateRangeWins(t *testing.T) {
	template := Template{MinLevel: 3, MaxLevel: 5}
	rng := rand.New(rand.NewSource(5))

	// Map clamp wider than the template range
	for i := 0; i < 100; i++ {
		level := RollLevel(template, 1, 20, rng)
		if level < 3 || level > 5 {
			t.Fatalf("level %d outside template range [3, 5]", level)
		}
	}
}

func TestRollLevelInvertedRange(t *testing.T) {
	// Clamp floor above the template ceiling collapses to a single level
	template := Template{MinLevel: 1, MaxLevel: 3}
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 20; i++ {
		if level := RollLevel(template, 8, 10, rng); level != 8 {
			t.Fatalf("expected collapsed range to yield 8, got %d", level)
		}
	}
}

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog(map[string]Template{
		"slime": {Key: "slime", Name: "Slime", BaseHP: 20},
	})

	template, ok := catalog.Get("slime")
	if !ok {
		t.Fatal("expected to find 'slime'")
	}
	if template.Name != "Slime" {
		t.Errorf("expected name 'Slime', got %q", template.Name)
	}

	if _, ok := catalog.Get("dragon"); ok {
		t.Error("expected lookup of unknown key to fail")
	}
}

func TestCatalogNilTemplates(t *testing.T) {
	catalog := NewCatalog(nil)
	if catalog.Count() != 0 {
		t.Errorf("expected empty catalog, got %d entries", catalog.Count())
	}
}
