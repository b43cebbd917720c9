package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the ordered source list per topic.
type Catalog map[Topic][]Source

// DefaultCatalog is the built-in source list. Order matters: earlier sources
// win link collisions.
var DefaultCatalog = Catalog{
	TopicNews: {
		{Name: "Techmeme", URL: "https://www.techmeme.com/feed.xml"},
		{Name: "Nature", URL: "https://www.nature.com/nature.rss"},
	},
	TopicFilm: {
		{Name: "Variety", URL: "https://variety.com/v/film/feed/"},
		{Name: "HollywoodReporter", URL: "https://www.hollywoodreporter.com/c/movies/movie-news/feed/"},
	},
	TopicGear: {
		{Name: "Engadget", URL: "https://www.engadget.com/rss.xml"},
		{Name: "TheVerge", URL: "https://www.theverge.com/rss/circuit-breaker/index.xml"},
	},
}

// Sources returns the sources for a topic.
func (c Catalog) Sources(t Topic) []Source {
	return c[t]
}

// catalogFile is the YAML layout:
//
//	news:
//	  - name: Techmeme
//	    url: https://www.techmeme.com/feed.xml
type catalogFile map[string][]Source

// LoadCatalog reads a YAML catalog override. Topics missing from the file
// keep their built-in sources. An empty path returns the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	out := make(Catalog, len(DefaultCatalog))
	for t, srcs := range DefaultCatalog {
		out[t] = append([]Source(nil), srcs...)
	}
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	for name, srcs := range raw {
		t, err := ParseTopic(name)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		for i, s := range srcs {
			if s.Name == "" || s.URL == "" {
				return nil, fmt.Errorf("catalog %s: %s entry %d needs name and url", path, name, i)
			}
		}
		out[t] = srcs
	}
	return out, nil
}
