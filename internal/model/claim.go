package model

import (
	"sort"
	"time"
)

// Claim is a user-authored statement about a source page, in canonical form.
// Fields are declared in JSON key order so encoded records are stable.
type Claim struct {
	Author            string     `json:"author"`             // Author uid
	Category          string     `json:"category"`           // Category of the source page
	CorrectVotes      int        `json:"correct_votes"`      // Votes that identified the false arm
	Created           *time.Time `json:"created,omitempty"`  // Creation time, when recorded
	GoldEvidence      []Evidence `json:"gold_evidence"`      // Evidence selected by the author
	ID                string     `json:"id"`                 // Document id
	Label             Label      `json:"label"`              // SUPPORTS or REFUTES
	Likes             []string   `json:"likes"`              // Users who liked the claim, sorted
	Page              string     `json:"page"`               // Source page title
	RetrievedEvidence []Evidence `json:"retrieved_evidence"` // Evidence shown to voters
	Text              string     `json:"text"`               // The claim text itself
	TotalLikes        int        `json:"total_likes"`        // len(likes) at fetch time
	TotalVotes        int        `json:"total_votes"`        // Number of vote documents
	Veracity          bool       `json:"veracity"`           // Whether the claim is true
	Votes             []string   `json:"votes"`              // Voter uids in fetch order
}

// NumLikes is the engagement metric used to split oversized clusters.
func (c Claim) NumLikes() int {
	return len(c.Likes)
}

// Label is the dataset label of a claim.
type Label string

const (
	LabelSupports Label = "SUPPORTS"
	LabelRefutes  Label = "REFUTES"
)

// LabelFor maps veracity to a dataset label.
func LabelFor(veracity bool) Label {
	if veracity {
		return LabelSupports
	}
	return LabelRefutes
}

// Set is an unordered collection of strings (page titles, user ids).
type Set map[string]struct{}

// NewSet builds a set from the given items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts an item.
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// Has reports whether item is present.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Minus returns the items of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := make(Set, len(s))
	for item := range s {
		if !other.Has(item) {
			out.Add(item)
		}
	}
	return out
}

// Sorted returns the items in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
