package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/worthit/internal/brain"
	"github.com/abelbrown/worthit/internal/coord"
	"github.com/abelbrown/worthit/internal/feeds"
)

// hotScore is the threshold for the red score badge.
const hotScore = 80

// ScoreBadge renders a score, red from 80 up and amber below.
func ScoreBadge(score int) string {
	label := fmt.Sprintf("%3d", score)
	if isHot(score) {
		return ScoreHot.Render(label)
	}
	return ScoreWarm.Render(label)
}

func isHot(score int) bool {
	return score >= hotScore
}

// RenderCard renders one analyzed item. The image URL is shown only for
// topics that carry artwork (film and gear).
func RenderCard(card coord.Card, topic feeds.Topic, width int) string {
	inner := width - 4 // border + padding
	if inner < 20 {
		inner = 20
	}

	var b strings.Builder

	badge := ScoreBadge(card.Result.Score)
	titleWidth := inner - runewidth.StringWidth(fmt.Sprintf("%3d", card.Result.Score)) - 3
	title := card.Result.TitleCN
	if title == "" {
		title = card.Item.Title
	}
	b.WriteString(badge + " " + CardTitle.Render(runewidth.Truncate(title, titleWidth, "…")))
	b.WriteString("\n")

	if card.Item.Title != "" && card.Item.Title != title {
		b.WriteString(CardOriginal.Render(runewidth.Truncate(card.Item.Title, inner, "…")))
		b.WriteString("\n")
	}

	b.WriteString(metaLine(card))
	b.WriteString("\n\n")

	b.WriteString(renderMarkdown(card.Result.Summary, inner))
	b.WriteString("\n\n")

	if card.Item.Link != "" {
		b.WriteString(MetaStyle.Render("link  ") + LinkStyle.Render(runewidth.Truncate(card.Item.Link, inner-6, "…")))
	}
	if topic.ShowsImage() && card.Item.Image != "" {
		b.WriteString("\n")
		b.WriteString(MetaStyle.Render("image ") + LinkStyle.Render(runewidth.Truncate(card.Item.Image, inner-6, "…")))
	}

	return CardBox.Width(width - 2).Render(b.String())
}

func metaLine(card coord.Card) string {
	parts := []string{SourceBadge.Render(card.Item.Source)}

	var tags []string
	for _, t := range card.Result.Tags {
		if t == brain.FailTag {
			tags = append(tags, FailTagStyle.Render("#"+t))
			continue
		}
		tags = append(tags, TagStyle.Render("#"+t))
	}
	if len(tags) > 0 {
		parts = append(parts, strings.Join(tags, " "))
	}

	if !card.Item.Published.IsZero() {
		parts = append(parts, MetaStyle.Render(humanize.Time(card.Item.Published)))
	}
	return strings.Join(parts, " ")
}

// RenderCards renders a whole scan, highest score first.
func RenderCards(res coord.ScanResult, width int) string {
	if len(res.Cards) == 0 {
		return HelpStyle.Render("No entries came back from the feeds. Press enter to scan again.")
	}

	var b strings.Builder
	header := fmt.Sprintf("%d entries via %s in %s", len(res.Cards), res.Engine, res.Took.Round(100 * time.Millisecond))
	if n := res.Fallbacks(); n > 0 {
		header += fmt.Sprintf(", %d unparsed", n)
	}
	b.WriteString(MetaStyle.Render(header))
	b.WriteString("\n\n")
	for _, card := range res.Cards {
		b.WriteString(RenderCard(card, res.Topic, width))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderFusion renders a fusion answer. With raw set, both unmerged reports
// follow the merged one.
func RenderFusion(res coord.AskResult, width int, raw bool) string {
	var b strings.Builder
	b.WriteString(MetaStyle.Render(fmt.Sprintf("%q in %s", res.Query, res.Fusion.Took.Round(100 * time.Millisecond))))
	b.WriteString("\n\n")
	b.WriteString(renderMarkdown(res.Fusion.Merged, width-2))
	if raw {
		for _, r := range []struct{ name, text string }{
			{string(brain.DeepSeek), res.Fusion.RawA},
			{string(brain.Gemini), res.Fusion.RawB},
		} {
			b.WriteString("\n\n")
			b.WriteString(DebugHeaderStyle.Render("Raw " + r.name))
			b.WriteString("\n")
			b.WriteString(renderMarkdown(r.text, width-2))
		}
	}
	return b.String()
}
