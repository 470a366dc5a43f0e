// Package index builds the secondary search index the front-end loads per page.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
)

// Builder turns a page index file into a search index file
type Builder interface {
	Build(ctx context.Context, input, output string) error
}

// New returns the builder registered under name
func New(cfg model.IndexConfig) (Builder, error) {
	switch cfg.Builder {
	case "", "inverted":
		return InvertedBuilder{}, nil
	case "sqlite":
		return SQLiteBuilder{}, nil
	case "exec":
		b, err := NewExecBuilder(cfg.Command)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown index builder %q", cfg.Builder)
	}
}

// Fields are the indexed sentence fields
var Fields = []string{"name", "line"}

// Index is the JSON search index: term -> field -> sentence ids
type Index struct {
	Title     string                      `json:"title"`
	Fields    []string                    `json:"fields"`
	Documents int                         `json:"documents"`
	Terms     map[string]map[string][]int `json:"terms"`
}

// newIndex creates an empty index for a page
func newIndex(page model.PageIndex) *Index {
	return &Index{
		Title:     page.Title,
		Fields:    Fields,
		Documents: len(page.Sentences),
		Terms:     make(map[string]map[string][]int),
	}
}

// add records that sentence id contains term in field
func (idx *Index) add(term, field string, id int) {
	byField := idx.Terms[term]
	if byField == nil {
		byField = make(map[string][]int)
		idx.Terms[term] = byField
	}
	ids := byField[field]
	if n := len(ids); n > 0 && ids[n-1] == id {
		return
	}
	byField[field] = append(ids, id)
}

// finish sorts and deduplicates postings
func (idx *Index) finish() {
	for _, byField := range idx.Terms {
		for field, ids := range byField {
			sort.Ints(ids)
			out := ids[:0]
			for i, id := range ids {
				if i == 0 || id != ids[i-1] {
					out = append(out, id)
				}
			}
			byField[field] = out
		}
	}
}

// Lookup returns the ids of sentences containing term in any field
func (idx *Index) Lookup(term string) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, field := range idx.Fields {
		for _, id := range idx.Terms[term][field] {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// ReadPage loads a page index file
func ReadPage(path string) (model.PageIndex, error) {
	var page model.PageIndex
	data, err := os.ReadFile(path)
	if err != nil {
		return page, fmt.Errorf("read page index: %w", err)
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return page, fmt.Errorf("decode page index: %w", err)
	}
	return page, nil
}

// ReadIndex loads a JSON search index
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &idx, nil
}

func writeIndex(path string, idx *Index) error {
	idx.finish()
	return export.WriteJSON(path, idx)
}
