package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/worthit/internal/brain"
	"github.com/abelbrown/worthit/internal/coord"
	"github.com/abelbrown/worthit/internal/feeds"
)

func sampleCard() coord.Card {
	return coord.Card{
		Item: feeds.Item{
			Title:     "Studio greenlights sequel",
			Link:      "http://example.com/sequel",
			Image:     "http://img.example.com/poster.jpg",
			Source:    "Variety",
			Published: time.Now().Add(-3 * time.Hour),
		},
		Result: brain.Result{
			Score:   82,
			TitleCN: "续集获批",
			Summary: "- **Studio** confirms\n- release next year",
			Tags:    []string{"Film", "Sequel"},
			Status:  brain.StatusOK,
		},
	}
}

func TestScoreThreshold(t *testing.T) {
	tests := []struct {
		score int
		want  bool
	}{
		{100, true},
		{80, true},
		{79, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := isHot(tt.score); got != tt.want {
			t.Errorf("isHot(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
	if !strings.Contains(ScoreBadge(82), "82") {
		t.Error("badge should show the score")
	}
}

func TestRenderCardFields(t *testing.T) {
	out := RenderCard(sampleCard(), feeds.TopicFilm, 100)

	for _, want := range []string{"续集获批", "Studio greenlights sequel", "Variety", "#Film", "#Sequel", "3 hours ago", "http://example.com/sequel"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Error("bold markers should be rendered, not shown")
	}
}

func TestRenderCardImageOnlyForArtworkTopics(t *testing.T) {
	card := sampleCard()
	for _, tt := range []struct {
		topic feeds.Topic
		want  bool
	}{
		{feeds.TopicFilm, true},
		{feeds.TopicGear, true},
		{feeds.TopicNews, false},
	} {
		out := RenderCard(card, tt.topic, 100)
		if got := strings.Contains(out, "poster.jpg"); got != tt.want {
			t.Errorf("%s: image shown = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestRenderCardFallbackTag(t *testing.T) {
	card := sampleCard()
	card.Result = brain.Result{
		Score:   0,
		TitleCN: card.Item.Title,
		Summary: "raw text",
		Tags:    []string{brain.FailTag},
		Status:  brain.StatusFallback,
	}
	out := RenderCard(card, feeds.TopicNews, 100)
	if !strings.Contains(out, "#Fail") {
		t.Errorf("fallback card should carry the Fail tag:\n%s", out)
	}
	// The untranslated title is not repeated when it is the title.
	if strings.Count(out, card.Item.Title) != 1 {
		t.Errorf("title should appear once:\n%s", out)
	}
}

func TestRenderCardTruncatesWideTitles(t *testing.T) {
	card := sampleCard()
	card.Result.TitleCN = strings.Repeat("很长的标题", 30)
	out := RenderCard(card, feeds.TopicNews, 60)
	if !strings.Contains(out, "…") {
		t.Error("wide title should be truncated with an ellipsis")
	}
}

func TestRenderCardsEmpty(t *testing.T) {
	out := RenderCards(coord.ScanResult{Topic: feeds.TopicGear}, 80)
	if !strings.Contains(out, "No entries") {
		t.Errorf("expected empty hint, got %q", out)
	}
}

func TestRenderCardsHeaderCountsFallbacks(t *testing.T) {
	good := sampleCard()
	bad := sampleCard()
	bad.Result.Status = brain.StatusFallback
	res := coord.ScanResult{Topic: feeds.TopicFilm, Engine: brain.Gemini, Cards: []coord.Card{good, bad}}

	out := RenderCards(res, 100)
	if !strings.Contains(out, "2 entries via Gemini") || !strings.Contains(out, "1 unparsed") {
		t.Errorf("unexpected header:\n%s", out)
	}
}
