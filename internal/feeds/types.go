// Package feeds retrieves the latest entries for a dashboard topic.
package feeds

import (
	"fmt"
	"strings"
	"time"
)

// Topic is a dashboard tab backed by feeds.
type Topic string

const (
	TopicNews Topic = "news"
	TopicFilm Topic = "film"
	TopicGear Topic = "gear"
)

// Topics lists the feed-backed tabs in display order.
var Topics = []Topic{TopicNews, TopicFilm, TopicGear}

// Mode is the analysis persona selector.
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModeFilm     Mode = "film"
	ModeHardware Mode = "hardware"
)

// Mode maps a topic to its analysis mode.
func (t Topic) Mode() Mode {
	switch t {
	case TopicFilm:
		return ModeFilm
	case TopicGear:
		return ModeHardware
	default:
		return ModeGeneral
	}
}

// Label is the tab title.
func (t Topic) Label() string {
	switch t {
	case TopicNews:
		return "News"
	case TopicFilm:
		return "Film"
	case TopicGear:
		return "Gear"
	}
	return string(t)
}

// ShowsImage reports whether cards for this topic display the item image.
func (t Topic) ShowsImage() bool {
	return t == TopicFilm || t == TopicGear
}

// ParseTopic accepts the topic name or its "hardware" alias.
func ParseTopic(s string) (Topic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "news", "general":
		return TopicNews, nil
	case "film", "movie", "movies":
		return TopicFilm, nil
	case "gear", "hardware":
		return TopicGear, nil
	}
	return "", fmt.Errorf("unknown topic %q (want news, film or gear)", s)
}

// Item is one feed entry. Link is its identity.
type Item struct {
	Link      string
	Title     string
	Summary   string // raw, may contain markup
	Image     string // optional
	Source    string // source label
	Published time.Time
}

// Source is a named feed URL.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
