// Package ui provides the Bubble Tea dashboard for WorthIt.
package ui

import (
	"github.com/abelbrown/worthit/internal/coord"
	"github.com/abelbrown/worthit/internal/feeds"
)

// ScanProgress is sent as each item of a scan is picked up.
type ScanProgress struct {
	Topic   feeds.Topic
	Done    int
	Total   int
	Current string
}

// ScanDone is sent when a topic scan finishes.
type ScanDone struct {
	Topic  feeds.Topic
	Result coord.ScanResult
	Err    error
}

// AskDone is sent when a fusion query finishes.
type AskDone struct {
	Result coord.AskResult
}

// EventTick refreshes the status bar from the event ring buffer.
type EventTick struct{}
