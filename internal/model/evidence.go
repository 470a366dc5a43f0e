package model

// Evidence is one cited sentence attached to a claim
type Evidence struct {
	SectionHeader string `json:"section_header"` // Section path of the sentence, e.g. "History | Origins"
	Text          string `json:"text"`           // Sentence text, trimmed
}

// Section is one node of a page's section tree
type Section struct {
	Title    string    // Section heading ("Summary" for the lead)
	Text     string    // Body text; paragraphs are separated by "\n"
	Sections []Section // Nested subsections in page order
}

// Article is a fetched page split into its lead and sections
type Article struct {
	Title    string
	Summary  string
	Sections []Section
}

// SectionTree returns the lead as a "Summary" section followed by the page sections.
func (a Article) SectionTree() []Section {
	tree := make([]Section, 0, len(a.Sections)+1)
	tree = append(tree, Section{Title: "Summary", Text: a.Summary})
	return append(tree, a.Sections...)
}
