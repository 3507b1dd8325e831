package scheduler

import (
	"math/rand"
	"time"
)

// RandomSource yields floats in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a deterministic source for the seed.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// NewRunSource returns a source seeded from the clock. Sources are not safe
// for concurrent use; build one per scheduling run.
func NewRunSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// intn maps a float source onto [0, n).
func intn(rng RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	v := int(rng.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// shuffleStrings applies a Fisher–Yates permutation in place.
func shuffleStrings(rng RandomSource, items []string) {
	for i := len(items) - 1; i > 0; i-- {
		j := intn(rng, i+1)
		items[i], items[j] = items[j], items[i]
	}
}
