// Package random provides the single random source shared by pairing,
// shuffling and write-task veracity draws. A run is either seeded
// (reproducible, used by bootstrap) or unseeded (every run differs).
package random

import (
	"math/rand/v2"
	"time"
)

// Source is the randomness a pipeline run draws from.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Shuffle permutes n elements using swap.
	Shuffle(n int, swap func(i, j int))
}

// Options selects seeded or unseeded behaviour.
type Options struct {
	Seeded bool
	Seed   int64
}

type source struct {
	rng *rand.Rand
}

// New returns a Source. Seeded sources yield identical sequences for the same seed.
func New(opts Options) Source {
	seed := uint64(opts.Seed)
	if !opts.Seeded {
		seed = uint64(time.Now().UnixNano())
	}
	return &source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Seeded is shorthand for New(Options{Seeded: true, Seed: seed}).
func Seeded(seed int64) Source {
	return New(Options{Seeded: true, Seed: seed})
}

func (s *source) Float64() float64 {
	return s.rng.Float64()
}

func (s *source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// ShuffleStrings shuffles items in place.
func ShuffleStrings(src Source, items []string) {
	src.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
