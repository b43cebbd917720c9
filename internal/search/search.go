// Package search gathers web context for fusion queries.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/abelbrown/worthit/internal/httpclient"
	"github.com/abelbrown/worthit/internal/logging"
)

// DefaultEndpoint is the DuckDuckGo HTML results page.
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

// Fallback is the context used when search yields nothing.
const Fallback = "Internal Knowledge"

// Result is a single search hit.
type Result struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// Searcher scrapes the DuckDuckGo HTML endpoint.
type Searcher struct {
	client   *http.Client
	endpoint string
}

// New returns a Searcher using client. An empty endpoint uses DefaultEndpoint.
func New(client *http.Client, endpoint string) *Searcher {
	if client == nil {
		client = &http.Client{Timeout: httpclient.FeedTimeout}
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Searcher{client: client, endpoint: endpoint}
}

// Text runs a query and returns up to max results.
func (s *Searcher) Text(ctx context.Context, query string, max int) ([]Result, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", httpclient.ChromeUA)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if max > 0 && len(results) >= max {
			return false
		}
		link := sel.Find(".result__a").First()
		body := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		if body == "" {
			return true
		}
		href, _ := link.Attr("href")
		results = append(results, Result{
			Title: strings.TrimSpace(link.Text()),
			Href:  resolveHref(href),
			Body:  body,
		})
		return true
	})
	return results, nil
}

// resolveHref unwraps DuckDuckGo redirect links ("//duckduckgo.com/l/?uddg=...").
func resolveHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// Context returns the concatenated result bodies for query, or Fallback when
// the search fails or finds nothing.
func (s *Searcher) Context(ctx context.Context, query string, max int) string {
	results, err := s.Text(ctx, query, max)
	if err != nil {
		logging.Warn("search failed, using fallback context", "error", err)
		return Fallback
	}
	if len(results) == 0 {
		return Fallback
	}
	bodies := make([]string, len(results))
	for i, r := range results {
		bodies[i] = r.Body
	}
	return strings.Join(bodies, "\n")
}
