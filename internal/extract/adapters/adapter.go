// Package adapters fetches page content and turns it into section trees.
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/ppiankov/fibs/internal/model"
	"golang.org/x/net/html"
)

// ErrPageNotFound is returned when the source has no page with the title
var ErrPageNotFound = errors.New("page not found")

// PageSource provides section trees for page titles
type PageSource interface {
	// Name returns the source name
	Name() string

	// Fetch returns the page split into lead and sections
	Fetch(ctx context.Context, title string) (model.Article, error)
}

// StaticSource serves articles from memory. Used offline and in tests.
type StaticSource map[string]model.Article

// Name returns the source name
func (s StaticSource) Name() string {
	return "static"
}

// Fetch implements PageSource
func (s StaticSource) Fetch(_ context.Context, title string) (model.Article, error) {
	article, ok := s[title]
	if !ok {
		return model.Article{}, ErrPageNotFound
	}
	if article.Title == "" {
		article.Title = title
	}
	return article, nil
}

// BaseAdapter provides HTML helpers shared by sources
type BaseAdapter struct{}

// ParseHTML parses HTML string into a node tree
func (b *BaseAdapter) ParseHTML(htmlContent string) (*html.Node, error) {
	return html.Parse(strings.NewReader(htmlContent))
}

// InlineText concatenates the text under n with whitespace collapsed.
// Nodes for which skip returns true are left out with their subtree.
func (b *BaseAdapter) InlineText(n *html.Node, skip func(*html.Node) bool) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if skip != nil && skip(node) {
			return
		}
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}
