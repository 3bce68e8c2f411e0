// Package web provides the search and fetch capabilities used by the
// research tools. No account access is involved; these operations are
// read-only and ungated.
package web

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxBodyBytes caps how much of a response is read; pages beyond this
// are truncated, not failed.
const maxBodyBytes = 2 << 20

// Client performs outbound web requests with a fixed user agent and
// timeout.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a web client.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// SearchResult is one entry returned by Search.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Search queries the DuckDuckGo HTML endpoint and scrapes the result
// list.
func (c *Client) Search(query string, limit int) ([]*SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	endpoint := "https://duckduckgo.com/html/?q=" + url.QueryEscape(query)
	doc, err := c.get(endpoint)
	if err != nil {
		return nil, err
	}

	var results []*SearchResult
	for _, node := range findAllByClass(doc, "result") {
		link := firstByClass(node, "result__a")
		if link == nil {
			continue
		}
		result := &SearchResult{
			Title: strings.TrimSpace(textContent(link)),
			URL:   attrValue(link, "href"),
		}
		if snippet := firstByClass(node, "result__snippet"); snippet != nil {
			result.Snippet = strings.TrimSpace(textContent(snippet))
		}
		results = append(results, result)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Page is the readable view of a fetched URL.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Fetch retrieves a page and extracts its title and paragraph text.
func (c *Client) Fetch(pageURL string) (*Page, error) {
	doc, err := c.get(pageURL)
	if err != nil {
		return nil, err
	}
	page := &Page{URL: pageURL}
	if title := firstByTag(doc, "title"); title != nil {
		page.Title = strings.TrimSpace(textContent(title))
	}
	var paragraphs []string
	for _, p := range findAllByTag(doc, "p") {
		if text := strings.TrimSpace(textContent(p)); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	page.Text = strings.Join(paragraphs, " ")
	return page, nil
}

func (c *Client) get(rawURL string) (*html.Node, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s for %s", res.Status, rawURL)
	}
	doc, err := html.Parse(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return doc, nil
}
