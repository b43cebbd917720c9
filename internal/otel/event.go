// Package otel records structured pipeline events for WorthIt.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the status bar.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Feed events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Analysis events
	KindAnalyzeStart    EventKind = "analyze.start"
	KindAnalyzeRetry    EventKind = "analyze.retry"
	KindAnalyzeComplete EventKind = "analyze.complete"
	KindAnalyzeFallback EventKind = "analyze.fallback"
	KindScanComplete    EventKind = "scan.complete"

	// Fusion events
	KindFusionDispatch EventKind = "fusion.dispatch"
	KindFusionComplete EventKind = "fusion.complete"

	// Search events
	KindSearchComplete EventKind = "search.complete"
	KindSearchError    EventKind = "search.error"

	// Journal events
	KindStoreError EventKind = "store.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal record. Every field except Kind and Time is
// optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "coord", "ui", "feeds", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the entire process
	RunID     string         `json:"run_id,omitempty"`     // one scan or one fusion query
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"`
	Topic     string         `json:"topic,omitempty"`
	Engine    string         `json:"engine,omitempty"`
	Score     int            `json:"score,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// Summary renders the event as one short human-readable line.
func (e Event) Summary() string {
	s := string(e.Kind)
	for _, part := range []string{e.Topic, e.Source, e.Engine} {
		if part != "" {
			s += " " + part
		}
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != "" {
		s += ": " + e.Err
	}
	return s
}
