package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorHot       = lipgloss.Color("196") // Red
	colorWarm      = lipgloss.Color("214") // Amber
)

// TabActive style for the selected tab.
var TabActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 2)

// TabInactive style for the other tabs.
var TabInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 2)

// CardBox frames one analyzed item.
var CardBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1).
	MarginBottom(1)

// CardTitle style for the localized title.
var CardTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// CardOriginal style for the untranslated title under the localized one.
var CardOriginal = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Italic(true)

// SourceBadge style for source name badges.
var SourceBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// TagStyle for keyword tags.
var TagStyle = lipgloss.NewStyle().
	Foreground(colorHighlight)

// FailTagStyle marks the fallback tag.
var FailTagStyle = lipgloss.NewStyle().
	Foreground(colorHot).
	Bold(true)

// ScoreHot badge for scores of 80 and above.
var ScoreHot = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorHot).
	Padding(0, 1)

// ScoreWarm badge for every other score.
var ScoreWarm = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("232")).
	Background(colorWarm).
	Padding(0, 1)

// LinkStyle for item links and image URLs.
var LinkStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Underline(true)

// MetaStyle for publish times and other low-priority text.
var MetaStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// HeadingStyle for Markdown headings in summaries and reports.
var HeadingStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// BoldStyle for **bold** spans.
var BoldStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// EngineReady marks a configured engine.
var EngineReady = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// EngineOffline marks an engine without credentials.
var EngineOffline = lipgloss.NewStyle().
	Foreground(colorMuted).
	Strikethrough(true)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// QueryBar style for the fusion query input.
var QueryBar = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, false, true, false).
	BorderForeground(colorMuted).
	Padding(0, 1)

// ProgressTitle style for the item currently being analyzed.
var ProgressTitle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// ProgressCount style for the item counter.
var ProgressCount = lipgloss.NewStyle().
	Foreground(colorMuted)

// DebugPanel frames the event overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headers in the event overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
