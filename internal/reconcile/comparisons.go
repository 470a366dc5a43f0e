package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
	"go.uber.org/zap"
)

// ErrInconsistentLabels is returned when a seen pair is not one SUPPORTS and one REFUTES claim
var ErrInconsistentLabels = errors.New("inconsistent claim labels")

// TimeLayout formats reconciled vote times
const TimeLayout = "2006-01-02 15:04:05.999999-07:00"

// BuildComparisons emits one row per unordered pair per user, ranked by
// evidence seen, highest first.
func BuildComparisons(seen Seen, claimsByID map[string]model.Claim, votes model.Votes, logger *zap.Logger) ([]model.Comparison, []Issue, error) {
	found := &issues{logger: nopIfNil(logger)}
	var rows []model.Comparison

	for _, user := range seen.Users() {
		for _, pair := range seen.Pairs(user) {
			left, ok := claimsByID[pair[0]]
			if !ok {
				found.add(Issue{Kind: IssueMissingClaim, User: user, Claim: pair[0]})
				continue
			}
			right, ok := claimsByID[pair[1]]
			if !ok {
				found.add(Issue{Kind: IssueMissingClaim, User: user, Claim: pair[1]})
				continue
			}

			trueClaim, falseClaim, err := arms(left, right)
			if err != nil {
				return nil, found.list, err
			}
			rows = append(rows, compare(user, trueClaim, falseClaim, votes, found))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EvidenceSeen() > rows[j].EvidenceSeen()
	})
	return rows, found.list, nil
}

func arms(a, b model.Claim) (model.Claim, model.Claim, error) {
	switch {
	case a.Label == model.LabelSupports && b.Label == model.LabelRefutes:
		return a, b, nil
	case a.Label == model.LabelRefutes && b.Label == model.LabelSupports:
		return b, a, nil
	default:
		return model.Claim{}, model.Claim{}, fmt.Errorf("%w: %s is %s, %s is %s",
			ErrInconsistentLabels, a.ID, a.Label, b.ID, b.Label)
	}
}

func compare(user string, t, f model.Claim, votes model.Votes, found *issues) model.Comparison {
	row := model.Comparison{
		False:             f.ID,
		FalseClaim:        f.Text,
		FalseEvidenceSeen: model.Sentinel,
		Points:            model.Sentinel,
		SecondsLeft:       model.Sentinel,
		Time:              fmt.Sprint(model.Sentinel),
		True:              t.ID,
		TrueClaim:         t.Text,
		TrueEvidenceSeen:  model.Sentinel,
		User:              user,
	}

	tv, tok := votes.Get(t.ID, user)
	fv, fok := votes.Get(f.ID, user)
	if !tok || !fok {
		if !fok {
			found.add(Issue{Kind: IssueMissingVote, User: user, Claim: f.ID, Detail: "false arm"})
		}
		if !tok {
			found.add(Issue{Kind: IssueMissingVote, User: user, Claim: t.ID, Detail: "true arm"})
		}
		return row
	}

	mismatch := func(field string, a, b any) {
		found.add(Issue{
			Kind:   IssueFieldMismatch,
			User:   user,
			Claim:  t.ID,
			Detail: fmt.Sprintf("%s: %v != %v (false arm %s)", field, a, b, f.ID),
		})
	}

	if tv.HasPoints && fv.HasPoints {
		if tv.Points == fv.Points {
			row.Points = tv.Points
		} else {
			mismatch("points", tv.Points, fv.Points)
		}
	}

	if tv.SecondsLeft != model.Sentinel && fv.SecondsLeft != model.Sentinel {
		if tv.SecondsLeft == fv.SecondsLeft {
			row.SecondsLeft = tv.SecondsLeft
		} else {
			mismatch("secondsLeft", tv.SecondsLeft, fv.SecondsLeft)
		}
	}

	if tv.HasTime() && fv.HasTime() {
		if tv.Time.Equal(fv.Time) {
			row.Time = tv.Time.Format(TimeLayout)
		} else {
			mismatch("time", tv.Time, fv.Time)
		}
	}

	trueSeen := evidence(tv, t.ID)
	falseSeen := evidence(tv, f.ID)
	if other := evidence(fv, t.ID); other != trueSeen {
		found.add(Issue{Kind: IssueEvidenceAsymmetry, User: user, Claim: t.ID,
			Detail: fmt.Sprintf("true arm %d vs %d", trueSeen, other)})
	}
	if other := evidence(fv, f.ID); other != falseSeen {
		found.add(Issue{Kind: IssueEvidenceAsymmetry, User: user, Claim: f.ID,
			Detail: fmt.Sprintf("false arm %d vs %d", falseSeen, other)})
	}
	row.TrueEvidenceSeen = trueSeen
	row.FalseEvidenceSeen = falseSeen
	return row
}

func evidence(v model.VoteSummary, claimID string) int {
	if n, ok := v.EvidenceUsed[claimID]; ok {
		return n
	}
	return model.Sentinel
}

// comparisonColumns is the CSV column order
var comparisonColumns = []string{
	"true", "false", "true_claim", "false_claim", "user",
	"points", "secondsLeft", "time", "true_evidence_seen", "false_evidence_seen",
}

// SaveComparisons writes <name>.votes.jsonl and <name>.votes.csv in rank order
func SaveComparisons(rows []model.Comparison, name string) error {
	if err := export.WriteJSONL(name+".votes.jsonl", rows); err != nil {
		return fmt.Errorf("save comparisons jsonl: %w", err)
	}
	if err := export.WriteRecordsCSV(name+".votes.csv", comparisonColumns, rows); err != nil {
		return fmt.Errorf("save comparisons csv: %w", err)
	}
	return nil
}
