package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var boldSpan = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// renderMarkdown styles the small Markdown subset the backends are asked to
// produce: ## and ### headings, "- " bullets and **bold** spans. Lines are
// wrapped to width.
func renderMarkdown(md string, width int) string {
	if width < 10 {
		width = 10
	}
	wrap := lipgloss.NewStyle().Width(width)

	var out []string
	blank := false
	for _, raw := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			// Collapse runs of blank lines.
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false

		switch {
		case strings.HasPrefix(trimmed, "### "):
			out = append(out, HeadingStyle.Render(inlineBold(strings.TrimPrefix(trimmed, "### "), false)))
		case strings.HasPrefix(trimmed, "## "):
			out = append(out, HeadingStyle.Underline(true).Render(inlineBold(strings.TrimPrefix(trimmed, "## "), false)))
		case strings.HasPrefix(trimmed, "# "):
			out = append(out, HeadingStyle.Underline(true).Render(inlineBold(strings.TrimPrefix(trimmed, "# "), false)))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			indent := len(line) - len(strings.TrimLeft(line, " "))
			bullet := strings.Repeat(" ", indent) + "• " + inlineBold(trimmed[2:], true)
			out = append(out, wrap.Render(bullet))
		default:
			out = append(out, wrap.Render(inlineBold(line, true)))
		}
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// inlineBold replaces **x** spans. With styled false the markers are only
// removed, for text that is already styled as a whole.
func inlineBold(s string, styled bool) string {
	return boldSpan.ReplaceAllStringFunc(s, func(m string) string {
		inner := m[2 : len(m)-2]
		if !styled {
			return inner
		}
		return BoldStyle.Render(inner)
	})
}
