package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func rssDoc(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Test Feed</title>
` + strings.Join(items, "\n") + `
  </channel>
</rss>`
}

func rssItem(title, link, extra string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>about %s</description><pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>%s</item>`,
		title, link, title, extra)
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchParsesItems(t *testing.T) {
	srv := feedServer(t, rssDoc(
		rssItem("Article 1", "http://example.com/a1", ""),
		rssItem("Article 2", "http://example.com/a2", ""),
	))

	items, err := NewFetcher(nil).Fetch(context.Background(), Source{Name: "Test", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Article 1" || items[0].Link != "http://example.com/a1" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Source != "Test" {
		t.Errorf("expected source label Test, got %q", items[0].Source)
	}
	if items[0].Published.IsZero() {
		t.Error("published time not parsed")
	}
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var ua, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.Write([]byte(rssDoc()))
	}))
	defer srv.Close()

	if _, err := NewFetcher(nil).Fetch(context.Background(), Source{Name: "T", URL: srv.URL}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(ua, "Mozilla/5.0") {
		t.Errorf("expected browser user agent, got %q", ua)
	}
	if !strings.Contains(accept, "application/xml") {
		t.Errorf("expected feed Accept header, got %q", accept)
	}
}

func TestFetch404(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := NewFetcher(nil).Fetch(context.Background(), Source{Name: "T", URL: srv.URL}); err == nil {
		t.Error("expected error for 404")
	}
}

func TestImageResolutionOrder(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{
			"media content wins",
			`<media:content url="http://img/content.jpg" medium="image"/><media:thumbnail url="http://img/thumb.jpg"/>`,
			"http://img/content.jpg",
		},
		{
			"thumbnail second",
			`<media:thumbnail url="http://img/thumb.jpg"/><enclosure url="http://img/enc.jpg" type="image/jpeg" length="1"/>`,
			"http://img/thumb.jpg",
		},
		{
			"enclosure",
			`<enclosure url="http://img/enc.jpg" type="image/jpeg" length="1"/>`,
			"http://img/enc.jpg",
		},
		{
			"none",
			``,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := feedServer(t, rssDoc(rssItem("A", "http://example.com/a", tt.extra)))
			items, err := NewFetcher(nil).Fetch(context.Background(), Source{Name: "T", URL: srv.URL})
			if err != nil {
				t.Fatalf("Fetch failed: %v", err)
			}
			if items[0].Image != tt.want {
				t.Errorf("image = %q, want %q", items[0].Image, tt.want)
			}
		})
	}
}

func TestImageFromSummaryMarkup(t *testing.T) {
	item := `<item><title>A</title><link>http://example.com/a</link><description><![CDATA[<p>x</p><img src="http://img/inline.png">]]></description></item>`
	srv := feedServer(t, rssDoc(item))

	items, err := NewFetcher(nil).Fetch(context.Background(), Source{Name: "T", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if items[0].Image != "http://img/inline.png" {
		t.Errorf("expected inline image, got %q", items[0].Image)
	}
}

func TestCollectPerSourceAndDedup(t *testing.T) {
	a := feedServer(t, rssDoc(
		rssItem("A1", "http://x/1", ""),
		rssItem("A2", "http://x/2", ""),
		rssItem("A3", "http://x/3", ""),
		rssItem("A4", "http://x/4", ""),
	))
	b := feedServer(t, rssDoc(
		rssItem("B2", "http://x/2", ""), // duplicate of A2
		rssItem("B5", "http://x/5", ""),
	))

	items := NewFetcher(nil).Collect(context.Background(), []Source{
		{Name: "A", URL: a.URL},
		{Name: "B", URL: b.URL},
	}, 3)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	got := strings.Join(titles, ",")
	if got != "A1,A2,A3,B5" {
		t.Errorf("unexpected collection order %q", got)
	}
}

func TestCollectSkipsFailingSource(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := feedServer(t, rssDoc(rssItem("G1", "http://x/g1", "")))

	var failures, successes int
	f := NewFetcher(nil)
	f.OnFetch = func(src Source, n int, dur time.Duration, err error) {
		if err != nil {
			failures++
		} else {
			successes++
		}
	}

	items := f.Collect(context.Background(), []Source{
		{Name: "Bad", URL: bad.URL},
		{Name: "Good", URL: good.URL},
	}, 3)

	if len(items) != 1 || items[0].Title != "G1" {
		t.Errorf("expected only G1, got %+v", items)
	}
	if failures != 1 || successes != 1 {
		t.Errorf("hook saw %d failures, %d successes", failures, successes)
	}
}

func TestTopicMode(t *testing.T) {
	tests := map[Topic]Mode{
		TopicNews: ModeGeneral,
		TopicFilm: ModeFilm,
		TopicGear: ModeHardware,
	}
	for topic, want := range tests {
		if got := topic.Mode(); got != want {
			t.Errorf("%s.Mode() = %s, want %s", topic, got, want)
		}
	}
	if _, err := ParseTopic("sports"); err == nil {
		t.Error("expected error for unknown topic")
	}
	if got, _ := ParseTopic("hardware"); got != TopicGear {
		t.Errorf("hardware alias = %s", got)
	}
}

func TestDefaultCatalogOrder(t *testing.T) {
	news := DefaultCatalog.Sources(TopicNews)
	if len(news) != 2 || news[0].Name != "Techmeme" || news[1].Name != "Nature" {
		t.Errorf("unexpected news sources: %+v", news)
	}
	film := DefaultCatalog.Sources(TopicFilm)
	if film[0].Name != "Variety" {
		t.Errorf("unexpected film order: %+v", film)
	}
}

func TestLoadCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "film:\n  - name: IndieWire\n    url: https://www.indiewire.com/feed/\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if film := cat.Sources(TopicFilm); len(film) != 1 || film[0].Name != "IndieWire" {
		t.Errorf("film override not applied: %+v", film)
	}
	if news := cat.Sources(TopicNews); len(news) != 2 {
		t.Errorf("news should keep defaults, got %+v", news)
	}

	// Override must not mutate the built-in catalog.
	if DefaultCatalog.Sources(TopicFilm)[0].Name != "Variety" {
		t.Error("default catalog mutated")
	}
}

func TestLoadCatalogRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	os.WriteFile(path, []byte("gear:\n  - name: NoURL\n"), 0600)
	if _, err := LoadCatalog(path); err == nil {
		t.Error("expected error for entry without url")
	}
}
