// Package cluster groups claims by category and pairs them for voting.
package cluster

import (
	"fmt"
	"sort"

	"github.com/ppiankov/fibs/internal/model"
	"go.uber.org/zap"
)

// MergedName names the cluster that collects undersized categories
const MergedName = "merged"

// Cluster is a named group of claims
type Cluster struct {
	Name   string
	Claims []model.Claim
}

// Bounds limit cluster sizes
type Bounds struct {
	Min     int
	Max     int
	Desired int
}

// DefaultBounds returns min 8, max 64, desired 16
func DefaultBounds() Bounds {
	return Bounds{Min: 8, Max: 64, Desired: 16}
}

// BoundsFromConfig maps the cluster config section to Bounds
func BoundsFromConfig(cfg model.ClusterConfig) Bounds {
	return Bounds{Min: cfg.MinSize, Max: cfg.MaxSize, Desired: cfg.Desired}
}

// Clusterer partitions claims by category
type Clusterer struct {
	bounds Bounds
	logger *zap.Logger
}

// NewClusterer creates a clusterer with the given bounds
func NewClusterer(bounds Bounds, logger *zap.Logger) *Clusterer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clusterer{bounds: bounds, logger: logger}
}

// ByCategory groups claims by category. Categories below Min are merged into
// one cluster; categories above Max are split by like count into chunks of
// Desired. Clusters are returned sorted by name.
func (c *Clusterer) ByCategory(claims []model.Claim) []Cluster {
	sorted := make([]model.Claim, len(claims))
	copy(sorted, claims)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var order []string
	groups := make(map[string][]model.Claim)
	for _, claim := range sorted {
		if _, ok := groups[claim.Category]; !ok {
			order = append(order, claim.Category)
		}
		groups[claim.Category] = append(groups[claim.Category], claim)
	}

	var out []Cluster
	var merged []model.Claim
	for _, category := range order {
		group := groups[category]
		switch {
		case len(group) < c.bounds.Min:
			c.logger.Debug("Category too small", zap.String("category", category), zap.Int("claims", len(group)))
			merged = append(merged, group...)
		case len(group) > c.bounds.Max:
			c.logger.Debug("Category too big", zap.String("category", category), zap.Int("claims", len(group)))
			out = append(out, c.byInterest(group, category)...)
		default:
			out = append(out, Cluster{Name: category, Claims: group})
		}
	}
	if len(merged) > 0 {
		out = append(out, Cluster{Name: MergedName, Claims: merged})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// byInterest sorts by like count and slices into Desired-sized chunks.
// A trailing remainder smaller than Min joins the previous chunk.
func (c *Clusterer) byInterest(claims []model.Claim, category string) []Cluster {
	sorted := make([]model.Claim, len(claims))
	copy(sorted, claims)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].NumLikes() < sorted[j].NumLikes() })

	var chunks [][]model.Claim
	for start := 0; start < len(sorted); start += c.bounds.Desired {
		end := min(start+c.bounds.Desired, len(sorted))
		chunk := sorted[start:end]
		if len(chunk) < c.bounds.Min && len(chunks) > 0 {
			chunks[len(chunks)-1] = append(chunks[len(chunks)-1], chunk...)
			continue
		}
		chunks = append(chunks, chunk)
	}

	out := make([]Cluster, 0, len(chunks))
	for i, chunk := range chunks {
		out = append(out, Cluster{Name: fmt.Sprintf("%04d-%s", i+1, category), Claims: chunk})
	}
	return out
}
