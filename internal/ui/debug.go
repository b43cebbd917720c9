package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/worthit/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the event panel: per-kind counts over the ring buffer
// and the most recent events. Returns a hint if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return HelpStyle.Render("Event log disabled.")
	}

	all := ring.Last(ring.Len())
	stats := make(map[otel.EventKind]int)
	for _, e := range all {
		stats[e.Kind]++
	}
	recent := all
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Pipeline Stats"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d complete, %d errors",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Analyses:   %d complete, %d retried, %d fallback",
		stats[otel.KindAnalyzeComplete], stats[otel.KindAnalyzeRetry], stats[otel.KindAnalyzeFallback]))
	lines = append(lines, fmt.Sprintf("  Scans:      %d", stats[otel.KindScanComplete]))
	lines = append(lines, fmt.Sprintf("  Fusions:    %d complete, %d search misses",
		stats[otel.KindFusionComplete], stats[otel.KindSearchError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d events", len(all)))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Source != "" {
			line += "  " + runewidth.Truncate(e.Source, 18, "…")
		}
		if e.Msg != "" {
			line += "  " + runewidth.Truncate(e.Msg, 40, "…")
		}
		if e.Err != "" {
			line += "  ERR:" + runewidth.Truncate(e.Err, 30, "…")
		}
		if e.RunID != "" && len(e.RunID) >= 8 {
			line += "  run:" + e.RunID[:8]
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 90
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the event overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("?") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [EVENTS]  " + keys)
}
