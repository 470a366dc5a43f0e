package model

import "time"

// VoteSummary is the reconciled vote of one voter on one claim
type VoteSummary struct {
	Points       float64        `json:"points"`
	HasPoints    bool           `json:"has_points"`
	Time         time.Time      `json:"time"`            // Zero when the vote carried no timestamp
	SecondsLeft  int            `json:"secondsLeft"`     // -1 when absent
	Success      bool           `json:"success"`         // Voter identified the false claim
	EvidenceUsed map[string]int `json:"evidence_used"`   // claim id -> evidence index revealed
}

// HasTime reports whether the vote carried a timestamp
func (v VoteSummary) HasTime() bool {
	return !v.Time.IsZero()
}

// Votes indexes vote summaries by claim id, then voter id
type Votes map[string]map[string]VoteSummary

// Get returns the vote of voter on claim
func (v Votes) Get(claim, voter string) (VoteSummary, bool) {
	byVoter, ok := v[claim]
	if !ok {
		return VoteSummary{}, false
	}
	vote, ok := byVoter[voter]
	return vote, ok
}

// Put stores the vote of voter on claim, replacing an earlier one
func (v Votes) Put(claim, voter string, vote VoteSummary) {
	if v[claim] == nil {
		v[claim] = make(map[string]VoteSummary)
	}
	v[claim][voter] = vote
}

// Sentinel marks a field that could not be reconciled.
const Sentinel = -1

// Comparison is one true/false claim pair a user was shown, with both votes merged.
// Fields are declared in JSON key order.
type Comparison struct {
	False             string  `json:"false"`               // False claim id
	FalseClaim        string  `json:"false_claim"`         // False claim text
	FalseEvidenceSeen int     `json:"false_evidence_seen"` // Evidence index revealed for the false claim
	Points            float64 `json:"points"`              // -1 when unreconciled
	SecondsLeft       int     `json:"secondsLeft"`         // -1 when unreconciled
	Time              string  `json:"time"`                // "-1" when unreconciled
	True              string  `json:"true"`                // True claim id
	TrueClaim         string  `json:"true_claim"`          // True claim text
	TrueEvidenceSeen  int     `json:"true_evidence_seen"`  // Evidence index revealed for the true claim
	User              string  `json:"user"`                // Voter uid
}

// EvidenceSeen is the combined evidence-seen count used to rank comparisons.
func (c Comparison) EvidenceSeen() int {
	return c.TrueEvidenceSeen + c.FalseEvidenceSeen
}
