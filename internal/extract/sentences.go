// Package extract turns a page's section tree into ordered, citable sentence records.
package extract

import (
	"iter"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/fibs/internal/model"
)

// Options tunes record boundaries and the document length cap
type Options struct {
	MinLength      int      // Minimum record length in characters
	MaxTotalLength int      // Cap on characters emitted per document
	BadSections    []string // Section titles skipped with their subsections
	BadStarts      []string // A sentence starting with one of these never opens a record
	BadEnds        []string // A buffer ending with one of these is never flushed mid-section
	ReferMarkers   []string // Lowercase markers of a disambiguation page
}

// OptionsFromConfig maps the extract config section to Options
func OptionsFromConfig(cfg model.ExtractConfig) Options {
	return Options{
		MinLength:      cfg.MinSentenceLength,
		MaxTotalLength: cfg.MaxTotalLength,
		BadSections:    cfg.BadSections,
		BadStarts:      cfg.BadStarts,
		BadEnds:        cfg.BadEnds,
		ReferMarkers:   cfg.ReferMarkers,
	}
}

// Extractor builds sentence records from section trees
type Extractor struct {
	segmenter Segmenter
	opts      Options
}

// NewExtractor creates an extractor over the given segmenter
func NewExtractor(segmenter Segmenter, opts Options) *Extractor {
	return &Extractor{segmenter: segmenter, opts: opts}
}

// Extract returns the records of tree in document order. Each call to the
// returned sequence starts from the first record.
func (e *Extractor) Extract(tree []model.Section) iter.Seq[model.Sentence] {
	return func(yield func(model.Sentence) bool) {
		w := &walk{extractor: e, yield: yield}
		for _, section := range tree {
			if !w.section(section, section.Title) {
				return
			}
		}
	}
}

// Collect runs Extract to completion
func (e *Extractor) Collect(tree []model.Section) []model.Sentence {
	return slices.Collect(e.Extract(tree))
}

// IsDisambiguation reports whether the first record marks a disambiguation page
func (e *Extractor) IsDisambiguation(records []model.Sentence) bool {
	if len(records) == 0 {
		return false
	}
	line := strings.ToLower(records[0].Line)
	for _, marker := range e.opts.ReferMarkers {
		if strings.Contains(line, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// walk carries the document-wide state of one extraction
type walk struct {
	extractor *Extractor
	yield     func(model.Sentence) bool
	total     int
	nextID    int
}

// section emits the records of one section and its subsections.
// It returns false once extraction must stop.
func (w *walk) section(s model.Section, name string) bool {
	opts := w.extractor.opts
	if slices.Contains(opts.BadSections, s.Title) {
		return true
	}

	sents := w.extractor.segmenter.Segment(s.Text)
	var buffer string
	prevPar := false

	for i, sent := range sents {
		if runeLen(buffer) >= opts.MinLength &&
			!hasAnyPrefix(strings.TrimSpace(sent), opts.BadStarts) &&
			!hasAnySuffix(buffer, opts.BadEnds) {
			if !w.emit(name, buffer, i-1, prevPar) {
				return false
			}
			buffer = ""
		}
		cleaned := strings.Join(strings.Fields(strings.ReplaceAll(sent, "===", "")), " ")
		buffer = strings.TrimSpace(buffer + " " + cleaned)
		prevPar = strings.HasSuffix(sent, "\n")
	}

	if runeLen(buffer) >= opts.MinLength {
		if !w.emit(name, buffer, len(sents)-1, true) {
			return false
		}
	}

	for _, sub := range s.Sections {
		if !w.section(sub, name+" | "+sub.Title) {
			return false
		}
	}
	return true
}

func (w *walk) emit(name, line string, sentence int, par bool) bool {
	n := runeLen(line)
	if w.total+n > w.extractor.opts.MaxTotalLength {
		return false
	}
	w.total += n
	record := model.Sentence{Name: name, Sentence: sentence, Par: par, Line: line, ID: w.nextID}
	w.nextID++
	return w.yield(record)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
