package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestTextContentSkipsScripts(t *testing.T) {
	doc := parse(t, `<div>visible<script>hidden()</script> text<style>.x{}</style></div>`)
	assert.Equal(t, "visible text", textContent(doc))
}

func TestFindAllByClassSkipsNestedMatches(t *testing.T) {
	doc := parse(t, `
		<div class="result">
			<div class="result">nested</div>
		</div>
		<div class="result other">second</div>`)

	assert.Len(t, findAllByClass(doc, "result"), 2)
}

func TestHasClassMatchesWholeWords(t *testing.T) {
	doc := parse(t, `<div class="result__a"></div>`)
	node := firstByClass(doc, "result__a")
	require.NotNil(t, node)
	assert.Nil(t, firstByClass(doc, "result"))
}

func TestFetchExtractsTitleAndParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><head><title>Example Domain</title></head>
			<body><p>First paragraph.</p><script>noise()</script><p>Second paragraph.</p></body></html>`))
	}))
	defer srv.Close()

	c := NewClient("test-agent/1.0", 5*time.Second)
	page, err := c.Fetch(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", page.Title)
	assert.Equal(t, "First paragraph. Second paragraph.", page.Text)
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-agent/1.0", 5*time.Second)
	_, err := c.Fetch(srv.URL)
	assert.Error(t, err)
}

func TestSearchResultScraping(t *testing.T) {
	// the same markup shape the search endpoint returns
	doc := parse(t, `
		<div class="results">
			<div class="result">
				<a class="result__a" href="https://example.com/one">First Result</a>
				<a class="result__snippet">First snippet text.</a>
			</div>
			<div class="result">
				<a class="result__a" href="https://example.com/two">Second Result</a>
			</div>
		</div>`)

	nodes := findAllByClass(doc, "result")
	require.Len(t, nodes, 2)

	link := firstByClass(nodes[0], "result__a")
	require.NotNil(t, link)
	assert.Equal(t, "First Result", strings.TrimSpace(textContent(link)))
	assert.Equal(t, "https://example.com/one", attrValue(link, "href"))

	snippet := firstByClass(nodes[0], "result__snippet")
	require.NotNil(t, snippet)
	assert.Equal(t, "First snippet text.", strings.TrimSpace(textContent(snippet)))

	assert.Nil(t, firstByClass(nodes[1], "result__snippet"))
}
