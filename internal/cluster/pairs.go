package cluster

import (
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/random"
)

// Pair is an ordered (left, right) vote pairing
type Pair struct {
	Left  model.Claim
	Right model.Claim
}

// PairBuilder pairs true and false claims inside clusters
type PairBuilder struct {
	rng random.Source
}

// NewPairBuilder creates a pair builder drawing from rng
func NewPairBuilder(rng random.Source) *PairBuilder {
	return &PairBuilder{rng: rng}
}

// Build pairs the i-th true claim with the i-th false claim. Excess claims on
// the longer side are dropped. Each pair's sides are swapped with probability 0.5.
func (b *PairBuilder) Build(c Cluster) []Pair {
	var trues, falses []model.Claim
	for _, claim := range c.Claims {
		if claim.Veracity {
			trues = append(trues, claim)
		} else {
			falses = append(falses, claim)
		}
	}

	n := min(len(trues), len(falses))
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		if b.rng.Float64() > 0.5 {
			pairs = append(pairs, Pair{Left: trues[i], Right: falses[i]})
		} else {
			pairs = append(pairs, Pair{Left: falses[i], Right: trues[i]})
		}
	}
	return pairs
}

// BuildAll pairs every cluster in order
func (b *PairBuilder) BuildAll(clusters []Cluster) []Pair {
	var pairs []Pair
	for _, c := range clusters {
		pairs = append(pairs, b.Build(c)...)
	}
	return pairs
}
