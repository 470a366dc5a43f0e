package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/model"
)

func pageJSON(t *testing.T, title string, n int) string {
	t.Helper()
	page := model.PageIndex{Category: "Animals", Title: title}
	for i := 0; i < n; i++ {
		page.Sentences = append(page.Sentences, model.Sentence{Name: "Summary", Line: "A sentence long enough to count.", ID: i})
	}
	data, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestPageLengths(t *testing.T) {
	f := newFixture(t)
	f.write(t, "pages/Cat.sentences.json", pageJSON(t, "Cat", 3))
	f.writeJSON(t, "store/pages.json", map[string]any{
		"Dog": map[string]any{"sentences": pageJSON(t, "Dog", 5)},
	})
	p := f.pipeline(t)

	categories := category.Categories{"Animals": {"Cat", "Dog", "Fish"}}
	lengths := p.PageLengths(context.Background(), categories, 4)

	want := Lengths{"Animals": {"Cat": 3, "Dog": 5, "Fish": 0}}
	if diff := cmp.Diff(want, lengths); diff != "" {
		t.Errorf("lengths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"Dog": "Animals"}, lengths.CategoryLookup(4)); diff != "" {
		t.Errorf("lookup mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.Stat(PagePath(f.cfg.Paths.PagesDir, "Dog", "sentences")); err != nil {
		t.Errorf("Expected datastore copy cached locally, got %v", err)
	}
}

func TestCategoryLookup_StrictlyLonger(t *testing.T) {
	lengths := Lengths{"A": {"x": 20, "y": 21}}
	if diff := cmp.Diff(map[string]string{"y": "A"}, lengths.CategoryLookup(20)); diff != "" {
		t.Errorf("lookup mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryLookup_SharedPage(t *testing.T) {
	lengths := Lengths{
		"Zoo":     {"Lion": 30},
		"Animals": {"Lion": 30, "Cat": 30},
		"Cats":    {"Lion": 30},
	}
	want := map[string]string{"Lion": "Zoo", "Cat": "Animals"}
	for i := 0; i < 50; i++ {
		if diff := cmp.Diff(want, lengths.CategoryLookup(10)); diff != "" {
			t.Fatalf("lookup mismatch on call %d (-want +got):\n%s", i, diff)
		}
	}
}
