package worker

import (
	"context"
)

// PageProcessor harvests one page of a category. It reports whether the
// page was newly published.
type PageProcessor interface {
	ProcessPage(ctx context.Context, category, title string) (bool, error)
}

// PageJob is the harvest of one page
type PageJob struct {
	Category  string
	Title     string
	Processor PageProcessor
	Done      func(*PageResult)
}

// Execute runs the page harvest
func (j *PageJob) Execute(ctx context.Context) Result {
	added, err := j.Processor.ProcessPage(ctx, j.Category, j.Title)
	res := &PageResult{Category: j.Category, Title: j.Title, Added: added, Error: err}
	if j.Done != nil {
		j.Done(res)
	}
	return res
}

// PageResult is the outcome of one page harvest
type PageResult struct {
	Category string
	Title    string
	Added    bool
	Error    error
}

// GetError returns the harvest error
func (r *PageResult) GetError() error {
	return r.Error
}

// BatchProcessor harvests the pages of a category concurrently
type BatchProcessor struct {
	processor   PageProcessor
	concurrency int
	done        func(*PageResult)
}

// NewBatchProcessor creates a batch processor. done, when set, is called
// from the worker goroutine as each page finishes.
func NewBatchProcessor(processor PageProcessor, concurrency int, done func(*PageResult)) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
		done:        done,
	}
}

// ProcessCategory harvests titles and returns one result per title, in order.
// Titles skipped by cancellation are absent.
func (b *BatchProcessor) ProcessCategory(ctx context.Context, category string, titles []string) []*PageResult {
	if len(titles) == 0 {
		return []*PageResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, title := range titles {
		job := &PageJob{
			Category:  category,
			Title:     title,
			Processor: b.processor,
			Done:      b.done,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	pageResults := make([]*PageResult, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		pageResults = append(pageResults, result.(*PageResult))
	}
	return pageResults
}

// Added counts newly published pages
func Added(results []*PageResult) int {
	n := 0
	for _, r := range results {
		if r.Added && r.Error == nil {
			n++
		}
	}
	return n
}
