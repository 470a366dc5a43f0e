package extract

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits section text into sentences in order.
// A sentence that closes a paragraph keeps its trailing "\n".
type Segmenter interface {
	Segment(text string) []string
}

// NewSegmenter returns the segmenter registered under name ("punkt" or "rules").
func NewSegmenter(name string) (Segmenter, error) {
	switch name {
	case "", "punkt":
		return NewPunktSegmenter()
	case "rules":
		return RuleSegmenter{}, nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q", name)
	}
}

// PunktSegmenter tokenizes each paragraph with the English Punkt model
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSegmenter loads the bundled English training data
func NewPunktSegmenter() (*PunktSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tokenizer}, nil
}

// Segment implements Segmenter
func (p *PunktSegmenter) Segment(text string) []string {
	return segmentParagraphs(text, func(paragraph string) []string {
		var out []string
		for _, s := range p.tokenizer.Tokenize(paragraph) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
		return out
	})
}

// RuleSegmenter splits on sentence terminators followed by whitespace.
// It needs no model data and is used in tests and offline runs.
type RuleSegmenter struct{}

// Segment implements Segmenter
func (RuleSegmenter) Segment(text string) []string {
	return segmentParagraphs(text, splitSentences)
}

// segmentParagraphs splits text on newlines and marks the last sentence of
// each paragraph with a trailing newline.
func segmentParagraphs(text string, split func(string) []string) []string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		sents := split(paragraph)
		if len(sents) == 0 {
			continue
		}
		sents[len(sents)-1] += "\n"
		out = append(out, sents...)
	}
	return out
}

// splitSentences splits one paragraph by terminators followed by a space
func splitSentences(text string) []string {
	var sents []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				if s := strings.TrimSpace(current.String()); s != "" {
					sents = append(sents, s)
				}
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sents = append(sents, s)
	}

	return sents
}
