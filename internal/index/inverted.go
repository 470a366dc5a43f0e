package index

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// InvertedBuilder builds the index in process
type InvertedBuilder struct{}

// Build implements Builder
func (InvertedBuilder) Build(ctx context.Context, input, output string) error {
	page, err := ReadPage(input)
	if err != nil {
		return err
	}

	idx := newIndex(page)
	for _, s := range page.Sentences {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, term := range Terms(s.Name) {
			idx.add(term, "name", s.ID)
		}
		for _, term := range Terms(s.Line) {
			idx.add(term, "line", s.ID)
		}
	}
	return writeIndex(output, idx)
}

var fold = cases.Fold()

// Terms splits text into case-folded terms with diacritics removed
func Terms(text string) []string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		stripped = text
	}
	folded := fold.String(stripped)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
