// Package reconcile merges status, vote and like records into derived datasets.
package reconcile

import (
	"fmt"

	"go.uber.org/zap"
)

// IssueKind classifies a consistency problem found while reconciling
type IssueKind string

const (
	IssueMalformedPair     IssueKind = "malformed_pair"
	IssueClaimNotInFibs    IssueKind = "claim_not_in_fibs"
	IssueMissingClaim      IssueKind = "missing_claim"
	IssueMissingVote       IssueKind = "missing_vote"
	IssueFieldMismatch     IssueKind = "field_mismatch"
	IssueEvidenceAsymmetry IssueKind = "evidence_asymmetry"
)

// Issue is a consistency problem. The affected row is kept with sentinel values.
type Issue struct {
	Kind   IssueKind
	User   string
	Claim  string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s user=%s claim=%s %s", i.Kind, i.User, i.Claim, i.Detail)
}

// issues collects and logs consistency problems
type issues struct {
	logger *zap.Logger
	list   []Issue
}

func (s *issues) add(issue Issue) {
	s.logger.Warn("Inconsistent record",
		zap.String("kind", string(issue.Kind)),
		zap.String("user", issue.User),
		zap.String("claim", issue.Claim),
		zap.String("detail", issue.Detail))
	s.list = append(s.list, issue)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
