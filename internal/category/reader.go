// Package category reads the page manifests that define what gets harvested
// and which pages are preferred for write tasks.
package category

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/fibs/internal/model"
)

// DefaultGlob matches the manifests shipped with the front-end.
const DefaultGlob = "categories/wikititle_*.txt"

const (
	filePrefix     = "wikititle_"
	priorityMarker = "*"
)

// Categories maps a category name to its page titles in manifest order.
type Categories map[string][]string

// Names returns category names in ascending order.
func (c Categories) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pages returns every page over every category.
func (c Categories) Pages() model.Set {
	pages := make(model.Set)
	for _, titles := range c {
		for _, title := range titles {
			pages.Add(title)
		}
	}
	return pages
}

// Lookup returns page -> category. A page listed in several categories maps
// to the last category in name order.
func (c Categories) Lookup() map[string]string {
	lookup := make(map[string]string)
	for _, name := range c.Names() {
		for _, title := range c[name] {
			lookup[title] = name
		}
	}
	return lookup
}

// Read loads every manifest matching glob. No match is an empty result.
func Read(glob string) (Categories, model.Set, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %q: %w", glob, err)
	}

	categories := make(Categories)
	priority := make(model.Set)
	for _, file := range files {
		name := Name(file)
		titles, starred, err := ReadManifest(file)
		if err != nil {
			return nil, nil, err
		}
		categories[name] = mergeTitles(categories[name], titles)
		for _, title := range starred {
			priority.Add(title)
		}
	}

	return categories, priority, nil
}

// Name derives the category from a manifest path: wikititle_Animals.txt -> Animals.
func Name(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, filePrefix); idx >= 0 {
		base = base[idx+len(filePrefix):]
	}
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	return base
}

// ReadManifest reads one page title per line, deduplicated in first-seen order.
// Titles prefixed with "*" are also returned as priority pages.
func ReadManifest(path string) ([]string, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var titles, starred []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		title := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(title, priorityMarker) {
			title = strings.TrimSpace(strings.TrimPrefix(title, priorityMarker))
			if title != "" {
				starred = append(starred, title)
			}
		}
		if title == "" {
			continue
		}
		if !seen[title] {
			seen[title] = true
			titles = append(titles, title)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan manifest: %w", err)
	}

	return titles, starred, nil
}

func mergeTitles(existing, titles []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, title := range existing {
		seen[title] = true
	}
	for _, title := range titles {
		if !seen[title] {
			seen[title] = true
			existing = append(existing, title)
		}
	}
	return existing
}
