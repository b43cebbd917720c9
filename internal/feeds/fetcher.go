package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/worthit/internal/httpclient"
	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/sanitize"
)

// FetchHook observes each source fetch. err is nil on success.
type FetchHook func(src Source, n int, dur time.Duration, err error)

// Fetcher retrieves and parses feeds.
type Fetcher struct {
	client *http.Client

	// OnFetch, if set, is called after every source attempt.
	OnFetch FetchHook
}

// NewFetcher creates a Fetcher using client. A nil client gets a direct
// client with the default feed timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: httpclient.FeedTimeout}
	}
	return &Fetcher{client: client}
}

// Fetch retrieves all entries of one source in feed order.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]Item, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", httpclient.ChromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		items = append(items, convertFeedItem(fi, src))
	}
	return items, nil
}

// Collect fetches sources in order, keeps the first perSource entries of
// each, and drops entries whose link was already seen. Failed sources are
// logged and skipped.
func (f *Fetcher) Collect(ctx context.Context, sources []Source, perSource int) []Item {
	seen := make(map[string]bool)
	var out []Item

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		items, err := f.Fetch(ctx, src)
		if err != nil {
			logging.Warn("feed skipped", "source", src.Name, "error", err)
			f.notify(src, 0, time.Since(start), err)
			continue
		}

		if perSource > 0 && len(items) > perSource {
			items = items[:perSource]
		}
		kept := 0
		for _, it := range items {
			if it.Link == "" || seen[it.Link] {
				continue
			}
			seen[it.Link] = true
			out = append(out, it)
			kept++
		}
		logging.Debug("feed fetched", "source", src.Name, "kept", kept)
		f.notify(src, kept, time.Since(start), nil)
	}
	return out
}

func (f *Fetcher) notify(src Source, n int, dur time.Duration, err error) {
	if f.OnFetch != nil {
		f.OnFetch(src, n, dur, err)
	}
}

func convertFeedItem(fi *gofeed.Item, src Source) Item {
	var published time.Time
	if fi.PublishedParsed != nil {
		published = *fi.PublishedParsed
	} else if fi.UpdatedParsed != nil {
		published = *fi.UpdatedParsed
	}

	summary := fi.Description
	if summary == "" {
		summary = fi.Content
	}

	return Item{
		Link:      strings.TrimSpace(fi.Link),
		Title:     strings.TrimSpace(fi.Title),
		Summary:   summary,
		Image:     resolveImage(fi),
		Source:    src.Name,
		Published: published,
	}
}

// resolveImage picks the item image: media:content, media:thumbnail, the
// feed item image, an image enclosure, then the first <img> in the summary.
func resolveImage(fi *gofeed.Item) string {
	if u := mediaURL(fi, "content"); u != "" {
		return u
	}
	if u := mediaURL(fi, "thumbnail"); u != "" {
		return u
	}
	if fi.Image != nil && fi.Image.URL != "" {
		return fi.Image.URL
	}
	for _, enc := range fi.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if u := sanitize.FirstImage(fi.Description); u != "" {
		return u
	}
	return sanitize.FirstImage(fi.Content)
}

func mediaURL(fi *gofeed.Item, name string) string {
	media, ok := fi.Extensions["media"]
	if !ok {
		return ""
	}
	for _, ext := range media[name] {
		if u := ext.Attrs["url"]; u != "" {
			return u
		}
	}
	// media:group wraps content elements in some feeds
	for _, group := range media["group"] {
		for _, ext := range group.Children[name] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}
