package brain

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/sanitize"
)

// Skipped stands in for backend B's report when it is not configured.
const Skipped = "skipped"

// Caller is a backend as seen by the Fuser. *Backend implements it.
type Caller interface {
	Name() EngineName
	Configured() bool
	Call(ctx context.Context, prompt string) string
}

// FusionResult is the merged report plus both raw reports.
type FusionResult struct {
	Merged string        `json:"merged"`
	RawA   string        `json:"raw_a"`
	RawB   string        `json:"raw_b"`
	Took   time.Duration `json:"-"`
}

// Fuser asks two backends the same question and has A merge both answers.
type Fuser struct {
	a, b   Caller
	locale string
}

// NewFuser creates a Fuser. a is also the editor for the merge step.
func NewFuser(a, b Caller, locale string) *Fuser {
	if locale == "" {
		locale = "Simplified Chinese"
	}
	return &Fuser{a: a, b: b, locale: locale}
}

// Fuse dispatches the query to both backends concurrently, waits for both,
// then merges. B is skipped when unconfigured. Failures surface as text.
func (f *Fuser) Fuse(ctx context.Context, query, material string) FusionResult {
	start := time.Now()
	task := fusionTaskPrompt(query, sanitize.Clip(material, ContextBudget))

	var rawA, rawB string
	var g errgroup.Group
	g.SetLimit(2)

	g.Go(func() error {
		rawA = f.a.Call(ctx, task)
		return nil
	})
	if f.b != nil && f.b.Configured() {
		g.Go(func() error {
			rawB = f.b.Call(ctx, task)
			return nil
		})
	} else {
		rawB = Skipped
	}
	_ = g.Wait() // tasks report failures in their text

	logging.Debug("fusion dispatch complete", "raw_a_len", len(rawA), "raw_b_len", len(rawB), "took", time.Since(start))

	bName := Gemini
	if f.b != nil {
		bName = f.b.Name()
	}
	merge := mergePrompt(f.locale, f.a.Name(), bName,
		sanitize.Clip(rawA, ReportBudget), sanitize.Clip(rawB, ReportBudget))
	merged := f.a.Call(ctx, merge)

	return FusionResult{
		Merged: merged,
		RawA:   rawA,
		RawB:   rawB,
		Took:   time.Since(start),
	}
}
