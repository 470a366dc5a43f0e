package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/fibs/internal/model"
)

type fakeGetter struct {
	body []byte
	err  error
	urls []string
}

func (f *fakeGetter) Get(_ context.Context, rawURL string) ([]byte, error) {
	f.urls = append(f.urls, rawURL)
	return f.body, f.err
}

func parseBody(t *testing.T, title, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{"parse": map[string]string{"title": title, "text": text}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

const lionHTML = `<div class="mw-parser-output">
<style>.x{}</style>
<table class="infobox"><tr><td>Kingdom</td></tr></table>
<p>The <b>lion</b> is a large cat.<sup class="reference">[1]</sup></p>
<p>It lives in Africa.</p>
<div class="mw-heading mw-heading2"><h2 id="Etymology">Etymology</h2><span class="mw-editsection">edit</span></div>
<p>The word comes from Latin.</p>
<div class="mw-heading mw-heading3"><h3>Old French</h3></div>
<p>Via Old French <i>lion</i>.</p>
<h2>Behaviour</h2>
<ul><li>Hunts at night.</li><li>Rests by day.</li></ul>
</div>`

func TestWikipediaSource_Fetch(t *testing.T) {
	getter := &fakeGetter{body: parseBody(t, "Lion", lionHTML)}
	source := NewWikipediaSource(getter, "en", "")

	article, err := source.Fetch(context.Background(), "Lion")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := model.Article{
		Title:   "Lion",
		Summary: "The lion is a large cat.\nIt lives in Africa.",
		Sections: []model.Section{
			{
				Title: "Etymology",
				Text:  "The word comes from Latin.",
				Sections: []model.Section{
					{Title: "Old French", Text: "Via Old French lion."},
				},
			},
			{Title: "Behaviour", Text: "Hunts at night.\nRests by day."},
		},
	}
	if diff := cmp.Diff(want, article); diff != "" {
		t.Errorf("article mismatch (-want +got):\n%s", diff)
	}

	if len(getter.urls) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(getter.urls))
	}
	u, err := url.Parse(getter.urls[0])
	if err != nil {
		t.Fatalf("parse request url: %v", err)
	}
	if u.Host != "en.wikipedia.org" || u.Query().Get("page") != "Lion" || u.Query().Get("action") != "parse" {
		t.Errorf("Unexpected request %s", getter.urls[0])
	}
}

func TestWikipediaSource_MissingTitle(t *testing.T) {
	getter := &fakeGetter{body: []byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`)}
	_, err := NewWikipediaSource(getter, "en", "").Fetch(context.Background(), "Nope")
	if !errors.Is(err, ErrPageNotFound) {
		t.Errorf("Expected ErrPageNotFound, got %v", err)
	}
}

func TestWikipediaSource_GetterError(t *testing.T) {
	getter := &fakeGetter{err: errors.New("boom")}
	if _, err := NewWikipediaSource(getter, "en", "").Fetch(context.Background(), "Lion"); err == nil {
		t.Error("Expected error")
	}
}

func TestWikipediaSource_BaseURLOverride(t *testing.T) {
	source := NewWikipediaSource(&fakeGetter{}, "de", "http://localhost:8080/")
	u, err := url.Parse(source.PageURL("Löwe"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "localhost:8080" || u.Path != "/w/api.php" || u.Query().Get("page") != "Löwe" {
		t.Errorf("Unexpected url %s", u)
	}
}

func TestStaticSource(t *testing.T) {
	source := StaticSource{"Tiger": {Summary: "The tiger is striped."}}

	article, err := source.Fetch(context.Background(), "Tiger")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if article.Title != "Tiger" {
		t.Errorf("Expected title defaulted, got %q", article.Title)
	}
	if _, err := source.Fetch(context.Background(), "Lion"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("Expected ErrPageNotFound, got %v", err)
	}
}
