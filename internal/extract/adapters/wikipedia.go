package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/fibs/internal/model"
	"golang.org/x/net/html"
)

// Getter performs a GET request and returns the body
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// WikipediaSource fetches rendered pages through the MediaWiki parse API
type WikipediaSource struct {
	BaseAdapter
	getter  Getter
	baseURL string
}

// NewWikipediaSource creates a source for the given language edition.
// baseURL overrides https://<language>.wikipedia.org when set.
func NewWikipediaSource(getter Getter, language, baseURL string) *WikipediaSource {
	if baseURL == "" {
		if language == "" {
			language = "en"
		}
		baseURL = fmt.Sprintf("https://%s.wikipedia.org", language)
	}
	return &WikipediaSource{getter: getter, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the source name
func (a *WikipediaSource) Name() string {
	return "wikipedia"
}

type parseResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// PageURL returns the parse API request for title
func (a *WikipediaSource) PageURL(title string) string {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("prop", "text")
	q.Set("redirects", "1")
	q.Set("disableeditsection", "1")
	q.Set("page", title)
	return a.baseURL + "/w/api.php?" + q.Encode()
}

// Fetch implements PageSource
func (a *WikipediaSource) Fetch(ctx context.Context, title string) (model.Article, error) {
	body, err := a.getter.Get(ctx, a.PageURL(title))
	if err != nil {
		return model.Article{}, fmt.Errorf("fetch %q: %w", title, err)
	}

	var resp parseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Article{}, fmt.Errorf("decode %q: %w", title, err)
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" || resp.Error.Code == "invalidtitle" {
			return model.Article{}, fmt.Errorf("%q: %w", title, ErrPageNotFound)
		}
		return model.Article{}, fmt.Errorf("parse %q: %s: %s", title, resp.Error.Code, resp.Error.Info)
	}
	if resp.Parse == nil {
		return model.Article{}, fmt.Errorf("%q: %w", title, ErrPageNotFound)
	}

	doc, err := a.ParseHTML(resp.Parse.Text)
	if err != nil {
		return model.Article{}, fmt.Errorf("parse html %q: %w", title, err)
	}

	article := a.SplitSections(doc)
	article.Title = resp.Parse.Title
	if article.Title == "" {
		article.Title = title
	}
	return article, nil
}

// sectionNode is a section under construction
type sectionNode struct {
	title      string
	level      int
	paragraphs []string
	children   []*sectionNode
}

func (n *sectionNode) section() model.Section {
	s := model.Section{Title: n.title, Text: strings.Join(n.paragraphs, "\n")}
	for _, child := range n.children {
		s.Sections = append(s.Sections, child.section())
	}
	return s
}

// SplitSections walks the rendered body and groups paragraphs under headings.
// Paragraphs before the first heading form the summary.
func (a *WikipediaSource) SplitSections(doc *html.Node) model.Article {
	content := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" && a.HasClass(n, "mw-parser-output")
	})
	if content == nil {
		content = a.FindFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "body"
		})
	}
	if content == nil {
		content = doc
	}

	root := &sectionNode{level: 1}
	stack := []*sectionNode{root}

	for c := content.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}

		if heading, level := a.heading(c); heading != nil {
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			node := &sectionNode{title: a.InlineText(heading, a.skipNode), level: level}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
			stack = append(stack, node)
			continue
		}

		current := stack[len(stack)-1]
		current.paragraphs = append(current.paragraphs, a.blockText(c)...)
	}

	article := model.Article{Summary: strings.Join(root.paragraphs, "\n")}
	for _, child := range root.children {
		article.Sections = append(article.Sections, child.section())
	}
	return article
}

// heading returns the heading element and its level for section boundaries,
// including headings wrapped in div.mw-heading.
func (a *WikipediaSource) heading(n *html.Node) (*html.Node, int) {
	if level := headingLevel(n); level > 0 {
		return n, level
	}
	if n.Data == "div" && a.HasClass(n, "mw-heading") {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if level := headingLevel(c); level > 0 {
				return c, level
			}
		}
	}
	return nil, 0
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0
	}
	if n.Data[1] >= '2' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}

// blockText returns the paragraphs contributed by a top-level block
func (a *WikipediaSource) blockText(n *html.Node) []string {
	switch n.Data {
	case "p", "blockquote":
		if text := a.InlineText(n, a.skipNode); text != "" {
			return []string{text}
		}
	case "ul", "ol", "dl":
		var items []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if text := a.InlineText(c, a.skipNode); text != "" {
				items = append(items, text)
			}
		}
		return items
	}
	return nil
}

// skipNode drops markup that is not prose: citations, edit links, styles
func (a *WikipediaSource) skipNode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return n.Type == html.CommentNode
	}
	switch n.Data {
	case "style", "script", "table", "figure", "math":
		return true
	case "sup":
		return a.HasClass(n, "reference") || a.HasClass(n, "noprint")
	case "span":
		return a.HasClass(n, "mw-editsection")
	}
	return a.HasClass(n, "mw-empty-elt") || a.HasClass(n, "noprint")
}
