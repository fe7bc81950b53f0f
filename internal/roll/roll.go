// Package roll provides the small random-selection utilities shared by
// enemy spawning: cumulative-weight draws and bounded-retry tile placement.
package roll

import "math/rand"

// DefaultPlacementAttempts is the per-enemy retry budget for tile placement.
const DefaultPlacementAttempts = 20

type weightedEntry struct {
	key    string
	weight int
}

// WeightedTable draws keys with probability proportional to their weight.
type WeightedTable struct {
	entries []weightedEntry
	total   int
}

// NewWeightedTable creates an empty weighted table.
func NewWeightedTable() *WeightedTable {
	return &WeightedTable{}
}

// Add registers a key with the given weight. Entries with weight <= 0 are ignored.
func (t *WeightedTable) Add(key string, weight int) {
	if weight <= 0 {
		return
	}
	t.entries = append(t.entries, weightedEntry{key: key, weight: weight})
	t.total += weight
}

// Len returns the number of entries in the table.
func (t *WeightedTable) Len() int {
	return len(t.entries)
}

// TotalWeight returns the sum of all entry weights.
func (t *WeightedTable) TotalWeight() int {
	return t.total
}

// Pick draws a key using a cumulative-weight roll.
// Returns false if the table is empty.
func (t *WeightedTable) Pick(rng *rand.Rand) (string, bool) {
	if t.total <= 0 {
		return "", false
	}
	r := rng.Intn(t.total)
	for _, e := range t.entries {
		r -= e.weight
		if r < 0 {
			return e.key, true
		}
	}
	// Unreachable while total matches the entries
	return t.entries[len(t.entries)-1].key, true
}

// Place picks a uniform-random tile within [0,width) x [0,height) and
// retries until free(x, y) accepts it or the attempt budget runs out.
// Rejection sampling is cheap at these map sizes; the attempt cap keeps
// a crowded map from livelocking the caller.
func Place(rng *rand.Rand, width, height, attempts int, free func(x, y int) bool) (int, int, bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	if attempts <= 0 {
		attempts = DefaultPlacementAttempts
	}
	for i := 0; i < attempts; i++ {
		x := rng.Intn(width)
		y := rng.Intn(height)
		if free == nil || free(x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}
