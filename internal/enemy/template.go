// Package enemy holds the static enemy archetype catalog and the stat
// scaling applied when an archetype is instantiated at a level.
package enemy

import "math/rand"

// LevelScalingFactor is the per-level stat multiplier step.
// A level-L enemy has stats of base * (1 + (L-1) * LevelScalingFactor).
const LevelScalingFactor = 0.1

// Template is a static enemy archetype definition.
// Templates are immutable after loading; spawn operations only read them.
type Template struct {
	Key         string `yaml:"-"`
	Name        string `yaml:"name"`
	BaseHP      int    `yaml:"base_hp"`
	BaseAttack  int    `yaml:"base_attack"`
	BaseDefense int    `yaml:"base_defense"`
	BaseXP      int    `yaml:"base_xp"`
	BaseGold    int    `yaml:"base_gold"`
	MinLevel    int    `yaml:"min_level"`
	MaxLevel    int    `yaml:"max_level"`
	SpawnWeight int    `yaml:"spawn_weight"`
}

// Reward is the xp/gold grant for defeating an enemy.
type Reward struct {
	XP   int `json:"xp"`
	Gold int `json:"gold"`
}

// Catalog is the read-only table of enemy templates, keyed by archetype key.
type Catalog struct {
	templates map[string]Template
}

// NewCatalog creates a catalog from the given templates.
func NewCatalog(templates map[string]Template) *Catalog {
	if templates == nil {
		templates = make(map[string]Template)
	}
	return &Catalog{templates: templates}
}

// Get returns the template for the given archetype key.
func (c *Catalog) Get(key string) (Template, bool) {
	t, ok := c.templates[key]
	return t, ok
}

// Keys returns all archetype keys in the catalog.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	return keys
}

// Count returns the number of templates in the catalog.
func (c *Catalog) Count() int {
	return len(c.templates)
}

// ScaleStat applies level scaling to a base stat.
func ScaleStat(base, level int) int {
	if level <= 1 {
		return base
	}
	return int(float64(base) * (1.0 + float64(level-1)*LevelScalingFactor))
}

// RewardForLevel computes the defeat reward for a template at a level.
func RewardForLevel(t Template, level int) Reward {
	return Reward{
		XP:   ScaleStat(t.BaseXP, level),
		Gold: ScaleStat(t.BaseGold, level),
	}
}

// RollLevel picks a uniform-random level within the template's range,
// clamped to [min, max] supplied by the map's spawn configuration.
func RollLevel(t Template, minLevel, maxLevel int, rng *rand.Rand) int {
	lo := t.MinLevel
	if minLevel > lo {
		lo = minLevel
	}
	hi := t.MaxLevel
	if maxLevel > 0 && maxLevel < hi {
		hi = maxLevel
	}
	if hi < lo {
		hi = lo
	}
	if lo < 1 {
		lo = 1
	}
	return lo + rng.Intn(hi-lo+1)
}
