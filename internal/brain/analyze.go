package brain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/worthit/internal/feeds"
	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/sanitize"
)

// Status tags an analysis result.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFallback Status = "fallback"
)

// FailTag marks a fallback result.
const FailTag = "Fail"

// MaxAttempts is the number of backend calls made per item.
const MaxAttempts = 2

// Waits between attempts. Gemini gets the longer pause to clear its rate limiter.
const (
	GeminiRetryWait  = 2 * time.Second
	DefaultRetryWait = 1 * time.Second
)

// Result is the analysis of one item. Summary and Tags are never empty and
// Score is always within [0, 100].
type Result struct {
	Score    int      `json:"score"`
	TitleCN  string   `json:"title_cn"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Status   Status   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Attempts int      `json:"attempts"`
}

// Fallback reports whether the result is the degraded record.
func (r Result) Fallback() bool {
	return r.Status == StatusFallback
}

// Dispatcher sends a prompt to a named engine. Engines implements it.
type Dispatcher interface {
	Single(ctx context.Context, prompt string, name EngineName) string
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithSleeper overrides how waits between attempts are performed.
func WithSleeper(s Sleeper) AnalyzerOption {
	return func(a *Analyzer) {
		a.sleep = s
	}
}

// WithLocale sets the output language named in prompts.
func WithLocale(locale string) AnalyzerOption {
	return func(a *Analyzer) {
		if locale != "" {
			a.locale = locale
		}
	}
}

// Analyzer scores, translates and summarizes feed items.
type Analyzer struct {
	engines Dispatcher
	locale  string
	sleep   Sleeper
}

// NewAnalyzer creates an Analyzer dispatching through engines.
func NewAnalyzer(engines Dispatcher, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		engines: engines,
		locale:  "Simplified Chinese",
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryWait returns the pause between attempts for engine.
func RetryWait(engine EngineName) time.Duration {
	if engine == Gemini {
		return GeminiRetryWait
	}
	return DefaultRetryWait
}

// Analyze runs up to MaxAttempts backend calls for item and returns the first
// usable result, or the fallback record. It never fails.
func (a *Analyzer) Analyze(ctx context.Context, item feeds.Item, mode feeds.Mode, engine EngineName) Result {
	clean := sanitize.Clean(item.Summary)
	prompt := analysisPrompt(mode, a.locale, item.Title, sanitize.Clip(clean, ItemBudget))

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := a.sleep(ctx, RetryWait(engine)); err != nil {
				lastErr = err
				break
			}
		}
		attempts = attempt

		reply := a.engines.Single(ctx, prompt, engine)
		res, err := parseResult(reply, item, mode)
		if err == nil {
			res.Attempts = attempts
			logging.Debug("analysis complete", "engine", engine, "title", item.Title, "score", res.Score, "attempts", attempts)
			return res
		}
		lastErr = err
		logging.Warn("analysis attempt failed", "engine", engine, "title", item.Title, "attempt", attempt, "error", err)
	}

	res := fallbackResult(item, clean, lastErr)
	res.Attempts = attempts
	return res
}

func fallbackResult(item feeds.Item, clean string, cause error) Result {
	summary := clean
	if summary == "" {
		summary = item.Title
	}
	if summary == "" {
		summary = item.Link
	}
	reason := "analysis failed"
	if cause != nil {
		reason = cause.Error()
	}
	return Result{
		Score:   0,
		TitleCN: item.Title,
		Summary: summary,
		Tags:    []string{FailTag},
		Status:  StatusFallback,
		Reason:  reason,
	}
}

var errEmptySummary = errors.New("empty summary")

func parseResult(reply string, item feeds.Item, mode feeds.Mode) (Result, error) {
	obj, err := Repair(reply)
	if err != nil {
		return Result{}, fmt.Errorf("%w (reply: %s)", err, sanitize.Clip(reply, 120))
	}

	summary := strings.TrimSpace(asText(obj["summary"]))
	if summary == "" {
		return Result{}, errEmptySummary
	}

	title := strings.TrimSpace(asText(obj["title_cn"]))
	if title == "" {
		title = item.Title
	}

	tags := asTags(obj["tags"])
	if len(tags) == 0 {
		tags = []string{DefaultTag(mode)}
	}

	return Result{
		Score:   coerceScore(obj["score"]),
		TitleCN: title,
		Summary: summary,
		Tags:    tags,
		Status:  StatusOK,
	}, nil
}

// coerceScore maps any JSON value to an integer in [0, 100]. Numbers are
// truncated, numeric strings parsed, anything else is 0.
func coerceScore(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}

func asText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			if s := asText(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func asTags(v any) []string {
	var out []string
	switch x := v.(type) {
	case []any:
		for _, t := range x {
			if s := strings.TrimSpace(asText(t)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
