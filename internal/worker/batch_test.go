package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mockProcessor implements PageProcessor
type mockProcessor struct {
	existing map[string]bool
	failing  map[string]bool
	calls    atomic.Int32
}

func (m *mockProcessor) ProcessPage(_ context.Context, _, title string) (bool, error) {
	m.calls.Add(1)
	if m.failing[title] {
		return false, errors.New("fetch failed")
	}
	return !m.existing[title], nil
}

func TestBatchProcessor_ProcessCategory(t *testing.T) {
	processor := &mockProcessor{
		existing: map[string]bool{"Dog": true},
		failing:  map[string]bool{"Cat": true},
	}

	var mu sync.Mutex
	var finished []string
	batch := NewBatchProcessor(processor, 2, func(r *PageResult) {
		mu.Lock()
		finished = append(finished, r.Title)
		mu.Unlock()
	})

	results := batch.ProcessCategory(context.Background(), "Animals", []string{"Dog", "Cat", "Fish", "Bird"})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	var titles []string
	for _, r := range results {
		titles = append(titles, r.Title)
		if r.Category != "Animals" {
			t.Errorf("Unexpected category %q", r.Category)
		}
	}
	if diff := cmp.Diff([]string{"Dog", "Cat", "Fish", "Bird"}, titles); diff != "" {
		t.Errorf("result order mismatch (-want +got):\n%s", diff)
	}
	if results[1].Error == nil {
		t.Error("expected Cat to fail")
	}
	if got := Added(results); got != 2 {
		t.Errorf("expected 2 added pages, got %d", got)
	}
	if len(finished) != 4 {
		t.Errorf("expected done callback for 4 pages, got %d", len(finished))
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := &mockProcessor{}
	results := NewBatchProcessor(processor, 1, nil).ProcessCategory(context.Background(), "Empty", nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if processor.calls.Load() != 0 {
		t.Errorf("expected no calls, got %d", processor.calls.Load())
	}
}
