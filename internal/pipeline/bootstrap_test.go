package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
	"github.com/ppiankov/fibs/internal/workflow"
)

const labelledDataset = `{"id": "s1", "text": "Cats purr.", "label": "SUPPORTS", "wikipedia_page": "Cat", "gold_evidence": [{"text": "Cats purr."}], "retrieved_evidence": [{"text": "Cats purr."}]}
{"id": "s2", "text": "Dogs bark.", "label": "SUPPORTS", "wikipedia_page": "Dog", "gold_evidence": [{"text": "Dogs bark."}], "retrieved_evidence": [{"text": "Dogs bark."}]}
{"id": "r1", "text": "Cats bark.", "label": "REFUTES", "wikipedia_page": "Cat", "gold_evidence": [{"text": "Cats purr."}], "retrieved_evidence": [{"text": "Cats purr."}]}
{"id": "r2", "text": "Dogs meow.", "label": "REFUTES", "wikipedia_page": "Dog", "gold_evidence": [{"text": "Dogs bark."}], "retrieved_evidence": [{"text": "Dogs bark."}]}
`

const dataset = labelledDataset + `
{"text": "Dogs purr.", "label": "REFUTES", "wikipedia_page": "Dog", "gold_evidence": [{"text": "Dogs bark."}], "retrieved_evidence": [{"text": "Dogs bark."}]}
`

func TestReadDataset(t *testing.T) {
	f := newFixture(t)
	f.write(t, "dataset/test.jsonl", dataset)

	claims, err := ReadDataset(f.cfg.Paths.Dataset)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 5 {
		t.Fatalf("Expected 5 claims, got %d", len(claims))
	}
	if claims[4].ID == "" {
		t.Error("Expected a generated id for the claim without one")
	}
	again, err := ReadDataset(f.cfg.Paths.Dataset)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if again[4].ID != claims[4].ID {
		t.Errorf("Expected a stable generated id, got %q then %q", claims[4].ID, again[4].ID)
	}
	doc := claims[0].Document()
	if doc["veracity"] != "TRUE" || doc["author"] != BootstrapAuthor {
		t.Errorf("Unexpected document %v", doc)
	}
	if doc := claims[2].Document(); doc["veracity"] != "FALSE" {
		t.Errorf("Expected FALSE veracity, got %v", doc["veracity"])
	}
}

func TestBootstrap(t *testing.T) {
	f := newFixture(t)
	f.write(t, "categories/wikititle_Animals.txt", "Cat\nDog\n")
	f.write(t, "dataset/test.jsonl", dataset)
	f.cfg.Workflow.BootstrapWrites = 2
	f.cfg.Workflow.BootstrapVotes = 2
	p := f.pipeline(t)

	ctx := context.Background()
	res, err := p.Bootstrap(ctx, 42)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Writes != 2 || res.Votes != 2 {
		t.Errorf("Expected 2 writes and 2 votes, got %d/%d", res.Writes, res.Votes)
	}
	if res.Harvest != 2 {
		t.Errorf("Expected 2 harvested pages, got %d", res.Harvest)
	}

	if w := res.Workflow[workflow.Key(0, model.TaskWrite)]; w.Veracity {
		t.Error("Expected first write task to be false")
	}
	if w := res.Workflow[workflow.Key(1, model.TaskWrite)]; !w.Veracity {
		t.Error("Expected second write task to be true")
	}

	raw, err := f.store.Claims(ctx)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(raw) != 4 {
		t.Errorf("Expected 4 seeded claims, got %d", len(raw))
	}
	for _, c := range raw {
		if c.Author != BootstrapAuthor || !c.Gold.Structured || !c.Evidence.Structured {
			t.Errorf("Unexpected seeded claim %+v", c)
		}
	}

	data, err := f.blobs.Read(ctx, workflow.BlobName(f.cfg.Workflow.DefaultName))
	if err != nil {
		t.Fatalf("Read default workflow: %v", err)
	}
	var published model.Workflow
	if err := json.Unmarshal(data, &published); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(published) != 4 {
		t.Errorf("Expected 4 published tasks, got %d", len(published))
	}
	for key, task := range published {
		if task.Type == model.TaskVerify && task.PageLeft == "" {
			t.Errorf("Task %s has no left page", key)
		}
	}

	cors, err := os.ReadFile(filepath.Join(f.cfg.Store.BlobDir, ".cors"))
	if err != nil {
		t.Fatalf("Expected CORS policy, got %v", err)
	}
	if !strings.Contains(string(cors), "max_age=86400s") {
		t.Errorf("Unexpected CORS policy %q", cors)
	}
}

func TestBootstrap_Reproducible(t *testing.T) {
	run := func() model.Workflow {
		f := newFixture(t)
		f.write(t, "categories/wikititle_Animals.txt", "Cat\nDog\n")
		f.write(t, "dataset/test.jsonl", labelledDataset)
		f.cfg.Workflow.BootstrapWrites = 2
		f.cfg.Workflow.BootstrapVotes = 2
		res, err := f.pipeline(t).Bootstrap(context.Background(), 42)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return res.Workflow
	}
	first, second := run(), run()
	for key, task := range first {
		if second[key] != task {
			t.Errorf("Task %s differs between seeded runs: %+v vs %+v", key, task, second[key])
		}
	}
}

var _ store.CORSConfigurer = (*store.LocalBlobs)(nil)
