package claims

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func structured(items ...store.EvidenceItem) store.EvidenceField {
	return store.EvidenceField{Present: true, Structured: true, Count: len(items), Items: items}
}

func validRaw(id, veracity string) store.RawClaim {
	return store.RawClaim{
		ID:       id,
		Text:     "  Lions live in Africa.  ",
		Page:     "Lion",
		Author:   "u1",
		Veracity: veracity,
		Evidence: structured(store.EvidenceItem{Name: "Summary", Line: " The lion lives in Africa. "}, store.EvidenceItem{Name: "Range", Line: "Also Asia."}),
		Gold:     structured(store.EvidenceItem{Name: "Summary", Line: "The lion lives in Africa."}),
	}
}

func TestNormalize_Reshape(t *testing.T) {
	created := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := validRaw("c1", "TRUE")
	raw.Created = &created

	engagement := map[string]Engagement{
		"c1": {
			Category:     "Animals",
			Votes:        []string{"u3", "u2"},
			Likes:        model.NewSet("u9", "u2"),
			TotalVotes:   2,
			TotalLikes:   2,
			CorrectVotes: 1,
		},
	}

	got, report := NewNormalizer(zap.NewNop()).Normalize([]store.RawClaim{raw}, engagement)
	want := []model.Claim{{
		Author:       "u1",
		Category:     "Animals",
		CorrectVotes: 1,
		Created:      &created,
		GoldEvidence: []model.Evidence{{SectionHeader: "Summary", Text: "The lion lives in Africa."}},
		ID:           "c1",
		Label:        model.LabelSupports,
		Likes:        []string{"u2", "u9"},
		Page:         "Lion",
		RetrievedEvidence: []model.Evidence{
			{SectionHeader: "Summary", Text: "The lion lives in Africa."},
			{SectionHeader: "Range", Text: "Also Asia."},
		},
		Text:       "Lions live in Africa.",
		TotalLikes: 2,
		TotalVotes: 2,
		Veracity:   true,
		Votes:      []string{"u3", "u2"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}
	if report.Accepted != 1 || len(report.Errors) != 0 {
		t.Errorf("Unexpected report %+v", report)
	}
	if !contains(report.Fields, "created") || !contains(report.Fields, "label") {
		t.Errorf("Expected created and label in fields, got %v", report.Fields)
	}
}

func contains(items []string, item string) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}

func TestNormalize_Rejections(t *testing.T) {
	maybe := validRaw("c-maybe", "MAYBE")

	rawEvidence := validRaw("c-raw", "FALSE")
	rawEvidence.Evidence = store.EvidenceField{Present: true, Count: 1}

	noGold := validRaw("c-nogold", "TRUE")
	noGold.Gold = store.EvidenceField{Present: true}

	rawGold := validRaw("c-rawgold", "TRUE")
	rawGold.Gold = store.EvidenceField{Present: true, Count: 2}

	noEvidence := validRaw("c-noev", "TRUE")
	noEvidence.Evidence = store.EvidenceField{}

	core, logs := observer.New(zapcore.WarnLevel)
	n := NewNormalizer(zap.New(core))

	got, report := n.Normalize([]store.RawClaim{maybe, rawEvidence, noGold, rawGold, noEvidence, validRaw("c-ok", "FALSE")}, nil)
	if len(got) != 1 || got[0].ID != "c-ok" || got[0].Label != model.LabelRefutes {
		t.Fatalf("Expected only c-ok accepted, got %+v", got)
	}

	reasons := make(map[string]string)
	for _, e := range report.Errors {
		reasons[e.ID] = e.Reason
	}
	want := map[string]string{
		"c-maybe":   `invalid veracity "MAYBE"`,
		"c-raw":     "evidence is not structured",
		"c-nogold":  "no gold found",
		"c-rawgold": "gold is not structured",
		"c-noev":    "no evidence found",
	}
	if diff := cmp.Diff(want, reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
	if logs.Len() != 5 {
		t.Errorf("Expected 5 warnings, got %d", logs.Len())
	}
}

func TestNormalize_SortedByID(t *testing.T) {
	got, _ := NewNormalizer(nil).Normalize([]store.RawClaim{validRaw("b", "TRUE"), validRaw("a", "FALSE")}, nil)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Expected claims sorted by id, got %+v", got)
	}
	if got[0].Likes == nil || got[0].Votes == nil {
		t.Error("Expected empty likes and votes to encode as lists")
	}
}

func TestClaimJSONRoundTrip(t *testing.T) {
	got, _ := NewNormalizer(nil).Normalize([]store.RawClaim{validRaw("c1", "TRUE")}, nil)
	data, err := json.Marshal(got[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back model.Claim
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(got[0], back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSave(t *testing.T) {
	claims, _ := NewNormalizer(nil).Normalize([]store.RawClaim{validRaw("c1", "TRUE"), validRaw("c2", "FALSE")}, nil)
	name := filepath.Join(t.TempDir(), "logs", "run")

	if err := Save(claims, name); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	jsonl, err := os.ReadFile(name + ".claims.jsonl")
	if err != nil {
		t.Fatalf("read jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(jsonl)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], `{"author":"u1","category":""`) {
		t.Errorf("Unexpected jsonl:\n%s", jsonl)
	}

	csvData, err := os.ReadFile(name + ".claims.csv")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	header := strings.SplitN(string(csvData), "\n", 2)[0]
	if !strings.HasPrefix(header, "author,category,correct_votes,gold_evidence,id,label") {
		t.Errorf("Unexpected header %q", header)
	}
}

func TestTrueProbability(t *testing.T) {
	claims := []model.Claim{{Veracity: true}, {Veracity: false}, {Veracity: true}, {Veracity: true}}
	if got := TrueProbability(claims); got != 0.75 {
		t.Errorf("Expected 0.75, got %v", got)
	}
	if got := TrueProbability(nil); got != 0 {
		t.Errorf("Expected 0 for no claims, got %v", got)
	}
}
