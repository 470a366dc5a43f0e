package reconcile

import (
	"fmt"
	"slices"

	"github.com/ppiankov/fibs/internal/claims"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
)

// ClaimRecords are the vote and like documents of one claim
type ClaimRecords struct {
	Votes []store.VoteRecord
	Likes []store.LikeRecord
}

// Aggregate is the result of folding vote and like records
type Aggregate struct {
	Votes      model.Votes
	Engagement map[string]claims.Engagement
	Issues     []Issue
}

// Aggregator folds per-claim votes and likes into summaries
type Aggregator struct {
	logger          *zap.Logger
	categories      map[string]string // page -> category
	missingCategory string
}

// NewAggregator creates an aggregator. Pages absent from categories get missingCategory.
func NewAggregator(categories map[string]string, missingCategory string, logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: nopIfNil(logger), categories: categories, missingCategory: missingCategory}
}

// Aggregate builds vote summaries and engagement for every raw claim
func (a *Aggregator) Aggregate(raw []store.RawClaim, records map[string]ClaimRecords) Aggregate {
	found := &issues{logger: a.logger}
	out := Aggregate{
		Votes:      make(model.Votes),
		Engagement: make(map[string]claims.Engagement, len(raw)),
	}

	for _, claim := range raw {
		category, ok := a.categories[claim.Page]
		if !ok {
			category = a.missingCategory
		}
		e := claims.Engagement{Category: category, Votes: []string{}, Likes: make(model.Set)}

		rec := records[claim.ID]
		for _, vote := range rec.Votes {
			e.TotalVotes++
			e.Votes = append(e.Votes, vote.Voter)
			if vote.Success {
				e.CorrectVotes++
			}
			out.Votes.Put(claim.ID, vote.Voter, a.summarize(claim.ID, vote, found))
		}
		for _, like := range rec.Likes {
			e.TotalLikes++
			e.Likes.Add(like.User)
		}
		out.Engagement[claim.ID] = e
	}

	out.Issues = found.list
	return out
}

func (a *Aggregator) summarize(claimID string, vote store.VoteRecord, found *issues) model.VoteSummary {
	summary := model.VoteSummary{
		Points:       vote.Points,
		HasPoints:    vote.HasPoints,
		SecondsLeft:  vote.SecondsLeft,
		Success:      vote.Success,
		EvidenceUsed: make(map[string]int),
	}
	if vote.Created != nil {
		summary.Time = *vote.Created
	}

	if len(vote.Fibs) == 2 && len(vote.EvidenceUsed) == 2 {
		if !slices.Contains(vote.Fibs, claimID) {
			found.add(Issue{
				Kind:   IssueClaimNotInFibs,
				User:   vote.Voter,
				Claim:  claimID,
				Detail: fmt.Sprintf("fibs=%v", vote.Fibs),
			})
			return summary
		}
		summary.EvidenceUsed[vote.Fibs[0]] = vote.EvidenceUsed[0]
		summary.EvidenceUsed[vote.Fibs[1]] = vote.EvidenceUsed[1]
	}
	return summary
}
