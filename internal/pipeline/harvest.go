package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/worker"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// ErrDisambiguation marks a page whose first record is a disambiguation notice
var ErrDisambiguation = errors.New("disambiguation page")

// ErrEmptyPage marks a page that produced no sentences
var ErrEmptyPage = errors.New("page has no sentences")

// PagePath returns the local file of a page artifact, kind "sentences" or "index"
func PagePath(dir, title, kind string) string {
	return filepath.Join(dir, strings.ReplaceAll(title, "/", "_")+"."+kind+".json")
}

// PageBlob is the blob name of a page sentence index
func PageBlob(title string) string {
	return "pages/" + title + ".json"
}

// IndexBlob is the blob name of a page search index
func IndexBlob(title string) string {
	return "indices/" + title + ".json"
}

// HarvestReport counts pages per category
type HarvestReport struct {
	Added  map[string]int
	Failed map[string][]string
}

// Total returns the number of newly published pages
func (r HarvestReport) Total() int {
	n := 0
	for _, added := range r.Added {
		n += added
	}
	return n
}

// Harvest processes every page of every category, in category name order
func (p *Pipeline) Harvest(ctx context.Context, categories category.Categories) (HarvestReport, error) {
	report := HarvestReport{Added: make(map[string]int), Failed: make(map[string][]string)}

	for _, name := range categories.Names() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		titles := categories[name]

		bar := p.progressBar(len(titles), name)
		batch := worker.NewBatchProcessor(p, p.config.Concurrency.Workers, func(*worker.PageResult) {
			if bar != nil {
				_ = bar.Add(1)
			}
		})
		results := batch.ProcessCategory(ctx, name, titles)
		if bar != nil {
			_ = bar.Finish()
		}

		for _, r := range results {
			if r.Error != nil {
				report.Failed[name] = append(report.Failed[name], r.Title)
				p.logger.Warn("Page skipped",
					zap.String("category", name),
					zap.String("page", r.Title),
					zap.Error(r.Error))
			}
		}
		report.Added[name] = worker.Added(results)
		p.logger.Info(fmt.Sprintf("Added %d pages for %s", report.Added[name], name))
	}
	return report, nil
}

func (p *Pipeline) progressBar(n int, description string) *progressbar.ProgressBar {
	if p.progress == nil || n == 0 {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// ProcessPage builds the sentence and search index of one page and publishes
// both when the page blob does not exist yet. Local files short-circuit
// their regeneration.
func (p *Pipeline) ProcessPage(ctx context.Context, categoryName, title string) (bool, error) {
	dir := p.config.Paths.PagesDir
	sentencesFile := PagePath(dir, title, "sentences")
	indexFile := PagePath(dir, title, "index")

	if !fileExists(sentencesFile) {
		page, err := p.extractPage(ctx, categoryName, title)
		if errors.Is(err, ErrDisambiguation) {
			p.logger.Info("Skipping disambiguation page", zap.String("page", title))
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if err := export.WriteJSON(sentencesFile, page); err != nil {
			return false, err
		}
	}
	if !fileExists(indexFile) {
		if err := p.builder.Build(ctx, sentencesFile, indexFile); err != nil {
			return false, fmt.Errorf("build index for %s: %w", title, err)
		}
	}

	exists, err := p.blobs.Exists(ctx, PageBlob(title))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", PageBlob(title), err)
	}
	if exists {
		return false, nil
	}
	if err := p.upload(ctx, sentencesFile, PageBlob(title)); err != nil {
		return false, err
	}
	if err := p.upload(ctx, indexFile, IndexBlob(title)); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pipeline) extractPage(ctx context.Context, categoryName, title string) (model.PageIndex, error) {
	article, err := p.source.Fetch(ctx, title)
	if err != nil {
		return model.PageIndex{}, fmt.Errorf("fetch %s: %w", title, err)
	}
	sentences := p.extractor.Collect(article.SectionTree())
	if len(sentences) == 0 {
		return model.PageIndex{}, fmt.Errorf("%s: %w", title, ErrEmptyPage)
	}
	if p.extractor.IsDisambiguation(sentences) {
		return model.PageIndex{}, fmt.Errorf("%s: %w", title, ErrDisambiguation)
	}
	return model.PageIndex{Category: categoryName, Title: title, Sentences: sentences}, nil
}

func (p *Pipeline) upload(ctx context.Context, path, blob string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := p.blobs.Upload(ctx, blob, "application/json", data); err != nil {
		return fmt.Errorf("upload %s: %w", blob, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
