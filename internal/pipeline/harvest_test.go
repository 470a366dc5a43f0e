package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/index"
)

func TestHarvest(t *testing.T) {
	f := newFixture(t)
	f.write(t, "categories/wikititle_Animals.txt", "Cat\nDog\nAcme\nMissing\n")
	p := f.pipeline(t)

	categories, _, err := category.Read(f.cfg.Paths.Categories)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	report, err := p.Harvest(context.Background(), categories)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := report.Added["Animals"]; got != 2 {
		t.Errorf("Expected 2 pages added, got %d", got)
	}
	if diff := cmp.Diff([]string{"Missing"}, report.Failed["Animals"]); diff != "" {
		t.Errorf("failed pages mismatch (-want +got):\n%s", diff)
	}

	for _, blob := range []string{PageBlob("Cat"), IndexBlob("Cat"), PageBlob("Dog"), IndexBlob("Dog")} {
		if !f.blobExists(t, blob) {
			t.Errorf("Expected blob %s", blob)
		}
	}
	if f.blobExists(t, PageBlob("Acme")) {
		t.Error("Expected disambiguation page to be skipped")
	}
	if fileExists(PagePath(f.cfg.Paths.PagesDir, "Acme", "sentences")) {
		t.Error("Expected no sentence file for disambiguation page")
	}

	page, err := index.ReadPage(PagePath(f.cfg.Paths.PagesDir, "Dog", "sentences"))
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if page.Category != "Animals" || page.Title != "Dog" {
		t.Errorf("Unexpected page header %+v", page)
	}
	if len(page.Sentences) != 2 || page.Sentences[1].Name != "History" {
		t.Errorf("Unexpected sentences %+v", page.Sentences)
	}

	idx, err := index.ReadIndex(PagePath(f.cfg.Paths.PagesDir, "Dog", "index"))
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if diff := cmp.Diff([]int{1}, idx.Lookup("humans")); diff != "" {
		t.Errorf("index lookup mismatch (-want +got):\n%s", diff)
	}

	again, err := p.Harvest(context.Background(), categories)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if again.Total() != 0 {
		t.Errorf("Expected published pages to be skipped, got %d added", again.Total())
	}
}

func TestProcessPage_LocalFilesShortCircuit(t *testing.T) {
	f := newFixture(t)
	f.writeJSON(t, "pages/Offline.sentences.json", map[string]any{
		"category": "Misc",
		"title":    "Offline",
		"sentences": []map[string]any{
			{"name": "Summary", "sentence": 0, "par": true, "line": "Offline pages are never fetched again.", "id": 0},
		},
	})
	p := f.pipeline(t)

	added, err := p.ProcessPage(context.Background(), "Misc", "Offline")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !added {
		t.Error("Expected page to be published")
	}
	if !fileExists(PagePath(f.cfg.Paths.PagesDir, "Offline", "index")) {
		t.Error("Expected index to be built from the local file")
	}
}

func TestPagePath(t *testing.T) {
	got := PagePath("pages", "AC/DC", "sentences")
	if got != "pages/AC_DC.sentences.json" {
		t.Errorf("Unexpected path %q", got)
	}
	if PageBlob("AC/DC") != "pages/AC/DC.json" {
		t.Errorf("Unexpected blob %q", PageBlob("AC/DC"))
	}
}
