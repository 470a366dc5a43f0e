package model

// Sentence is one citable record of a page index.
// Ordering is significant: ID is the citation address used by the front-end.
type Sentence struct {
	Name     string `json:"name"`     // Section path joined with " | "
	Sentence int    `json:"sentence"` // Index of the last segmenter sentence in the record
	Par      bool   `json:"par"`      // Record closes a paragraph
	Line     string `json:"line"`     // Record text
	ID       int    `json:"id"`       // Sequential id within the page
}

// PageIndex is the persisted sentence index of one page.
type PageIndex struct {
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Sentences []Sentence `json:"sentences"`
}
