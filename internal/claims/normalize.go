// Package claims turns raw datastore claims into the canonical dataset form.
package claims

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
)

// Engagement is what the vote reconciler accumulates for one claim
type Engagement struct {
	Category     string
	Votes        []string  // Voter ids in fetch order
	Likes        model.Set // Users who liked the claim
	TotalVotes   int
	TotalLikes   int
	CorrectVotes int
}

// RecordError is a dropped raw claim
type RecordError struct {
	ID     string
	Reason string
}

func (e RecordError) Error() string {
	return fmt.Sprintf("claim %s: %s", e.ID, e.Reason)
}

// Report summarizes one normalization pass
type Report struct {
	Accepted int
	Errors   []RecordError
	Fields   []string // Union of output field names
}

// Normalizer validates and reshapes raw claims
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize validates each raw claim and reshapes the accepted ones.
// Accepted claims are returned sorted by id.
func (n *Normalizer) Normalize(raw []store.RawClaim, engagement map[string]Engagement) ([]model.Claim, Report) {
	sorted := make([]store.RawClaim, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var report Report
	out := make([]model.Claim, 0, len(sorted))
	for _, r := range sorted {
		claim, reason := normalize(r, engagement[r.ID])
		if reason != "" {
			recErr := RecordError{ID: r.ID, Reason: reason}
			n.logger.Warn("Dropping claim", zap.String("claim", r.ID), zap.String("reason", reason))
			report.Errors = append(report.Errors, recErr)
			continue
		}
		out = append(out, claim)
	}

	report.Accepted = len(out)
	if fields, err := export.Fields(out); err == nil {
		report.Fields = fields
	}
	n.logger.Info("Normalized claims",
		zap.Int("accepted", report.Accepted),
		zap.Int("dropped", len(report.Errors)),
		zap.Strings("fields", report.Fields))
	return out, report
}

// normalize returns the canonical claim or the reason it was rejected
func normalize(r store.RawClaim, e Engagement) (model.Claim, string) {
	var veracity bool
	switch r.Veracity {
	case "TRUE":
		veracity = true
	case "FALSE":
		veracity = false
	case "":
		return model.Claim{}, "no veracity found"
	default:
		return model.Claim{}, fmt.Sprintf("invalid veracity %q", r.Veracity)
	}

	if !r.Evidence.Present || r.Evidence.Count == 0 {
		return model.Claim{}, "no evidence found"
	}
	if !r.Evidence.Structured {
		return model.Claim{}, "evidence is not structured"
	}
	if !r.Gold.Present || r.Gold.Count == 0 {
		return model.Claim{}, "no gold found"
	}
	if !r.Gold.Structured {
		return model.Claim{}, "gold is not structured"
	}

	likes := e.Likes.Sorted()
	votes := e.Votes
	if votes == nil {
		votes = []string{}
	}

	return model.Claim{
		Author:            r.Author,
		Category:          e.Category,
		CorrectVotes:      e.CorrectVotes,
		Created:           r.Created,
		GoldEvidence:      reshape(r.Gold.Items),
		ID:                r.ID,
		Label:             model.LabelFor(veracity),
		Likes:             likes,
		Page:              r.Page,
		RetrievedEvidence: reshape(r.Evidence.Items),
		Text:              strings.TrimSpace(r.Text),
		TotalLikes:        e.TotalLikes,
		TotalVotes:        e.TotalVotes,
		Veracity:          veracity,
		Votes:             votes,
	}, ""
}

func reshape(items []store.EvidenceItem) []model.Evidence {
	out := make([]model.Evidence, 0, len(items))
	for _, item := range items {
		out = append(out, model.Evidence{
			SectionHeader: item.Name,
			Text:          strings.TrimSpace(item.Line),
		})
	}
	return out
}
