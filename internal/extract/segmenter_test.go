package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRuleSegmenter(t *testing.T) {
	got := RuleSegmenter{}.Segment("One sentence here. Another one! A question?\n\nNext paragraph.")
	want := []string{"One sentence here.", "Another one!", "A question?\n", "Next paragraph.\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestPunktSegmenter(t *testing.T) {
	seg, err := NewPunktSegmenter()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := seg.Segment("Mr. Smith went to Washington. He arrived on time.\nNew para.")
	if len(got) < 2 {
		t.Fatalf("Expected at least 2 sentences, got %v", got)
	}
	if got[len(got)-1] != "New para.\n" {
		t.Errorf("Expected last paragraph kept whole, got %q", got[len(got)-1])
	}
	newlines := 0
	for _, s := range got {
		if strings.HasSuffix(s, "\n") {
			newlines++
		}
	}
	if newlines != 2 {
		t.Errorf("Expected 2 paragraph ends, got %d in %v", newlines, got)
	}
}

func TestNewSegmenter(t *testing.T) {
	if _, err := NewSegmenter("rules"); err != nil {
		t.Errorf("Expected rules segmenter, got %v", err)
	}
	if _, err := NewSegmenter("spacy"); err == nil {
		t.Error("Expected error for unknown segmenter")
	}
}
