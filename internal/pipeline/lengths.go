package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
)

// Lengths are sentence counts per category, then page
type Lengths map[string]map[string]int

// CategoryLookup maps each page longer than minLength sentences to its category.
// A page in several categories maps to the last category in name order.
func (l Lengths) CategoryLookup(minLength int) map[string]string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)

	lookup := make(map[string]string)
	for _, name := range names {
		for page, length := range l[name] {
			if length > minLength {
				lookup[page] = name
			}
		}
	}
	return lookup
}

// PageLengths reads the sentence count of every category page. Pages without
// a local index are read from the datastore and cached in the pages dir.
func (p *Pipeline) PageLengths(ctx context.Context, categories category.Categories, minLength int) Lengths {
	lengths := make(Lengths, len(categories))
	for _, name := range categories.Names() {
		lengths[name] = make(map[string]int, len(categories[name]))
		for _, page := range categories[name] {
			n := p.pageLength(ctx, page)
			lengths[name][page] = n
			if n < minLength {
				p.logger.Info("Too short",
					zap.String("category", name),
					zap.String("page", page),
					zap.Int("sentences", n))
			}
		}
	}
	return lengths
}

func (p *Pipeline) pageLength(ctx context.Context, page string) int {
	path := PagePath(p.config.Paths.PagesDir, page, "sentences")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data, err = p.fetchPageIndex(ctx, page, path)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Debug("No JSON in index", zap.String("page", page))
		} else {
			p.logger.Warn("Page index unreadable", zap.String("page", page), zap.Error(err))
		}
		return 0
	}

	var doc model.PageIndex
	if err := json.Unmarshal(data, &doc); err != nil {
		p.logger.Warn("Page index undecodable", zap.String("page", page), zap.Error(err))
		return 0
	}
	return len(doc.Sentences)
}

func (p *Pipeline) fetchPageIndex(ctx context.Context, page, path string) ([]byte, error) {
	sentences, err := p.store.PageSentences(ctx, page)
	if err != nil {
		return nil, err
	}
	data := []byte(sentences)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pages dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("cache page index: %w", err)
	}
	return data, nil
}
