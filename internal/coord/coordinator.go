// Package coord runs WorthIt's two workflows: topic scans and fusion queries.
package coord

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/worthit/internal/brain"
	"github.com/abelbrown/worthit/internal/config"
	"github.com/abelbrown/worthit/internal/feeds"
	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/otel"
	"github.com/abelbrown/worthit/internal/search"
	"github.com/abelbrown/worthit/internal/store"
)

// Collector gathers the items of a topic. *feeds.Fetcher implements it.
type Collector interface {
	Collect(ctx context.Context, sources []feeds.Source, perSource int) []feeds.Item
}

// Analyzer analyzes one item. *brain.Analyzer implements it.
type Analyzer interface {
	Analyze(ctx context.Context, item feeds.Item, mode feeds.Mode, engine brain.EngineName) brain.Result
}

// Fuser answers a query with two backends. *brain.Fuser implements it.
type Fuser interface {
	Fuse(ctx context.Context, query, material string) brain.FusionResult
}

// Searcher gathers reference material. *search.Searcher implements it.
type Searcher interface {
	Context(ctx context.Context, query string, max int) string
}

// Deps are the collaborators of a Coordinator. Journal, Events and Engines
// are optional.
type Deps struct {
	Catalog   feeds.Catalog
	Collector Collector
	Analyzer  Analyzer
	Fuser     Fuser
	Searcher  Searcher
	Engines   *brain.Engines
	Journal   *store.Store
	Events    *otel.Logger
}

// Card is an analyzed item ready for display.
type Card struct {
	Item   feeds.Item
	Result brain.Result
}

// ScanResult is the outcome of one topic scan. Cards are sorted by score,
// highest first.
type ScanResult struct {
	RunID  string
	Topic  feeds.Topic
	Engine brain.EngineName
	Cards  []Card
	Took   time.Duration
}

// Fallbacks counts cards that carry the fallback record.
func (r ScanResult) Fallbacks() int {
	n := 0
	for _, c := range r.Cards {
		if c.Result.Fallback() {
			n++
		}
	}
	return n
}

// AskResult is the outcome of one fusion query.
type AskResult struct {
	RunID    string
	Query    string
	Material string
	Fusion   brain.FusionResult
}

// Progress reports scan progress: done of total items analyzed, and the
// title currently being worked on.
type Progress func(done, total int, current string)

// Coordinator drives scans and fusion queries. Safe for use by one caller at
// a time; the TUI serializes requests.
type Coordinator struct {
	cfg     *config.Config
	deps    Deps
	limiter *rate.Limiter // spaces Gemini analyses
}

// New creates a Coordinator.
func New(cfg *config.Config, d Deps) *Coordinator {
	if d.Catalog == nil {
		d.Catalog = feeds.DefaultCatalog
	}
	spacing := cfg.Analysis.GeminiSpacing.Duration
	limit := rate.Inf
	if spacing > 0 {
		limit = rate.Every(spacing)
	}
	return &Coordinator{
		cfg:     cfg,
		deps:    d,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Config returns the configuration the Coordinator was built with.
func (c *Coordinator) Config() *config.Config {
	return c.cfg
}

// Ready lists the engines with credentials.
func (c *Coordinator) Ready() []brain.EngineName {
	if c.deps.Engines == nil {
		return nil
	}
	return c.deps.Engines.Ready()
}

// Primary returns the configured primary engine.
func (c *Coordinator) Primary() brain.EngineName {
	name, err := brain.ParseEngineName(c.cfg.Engine)
	if err != nil {
		return brain.Gemini
	}
	return name
}

// Scan fetches the topic's feeds, analyzes each item in turn with engine,
// and returns the cards sorted by score. A cancelled context stops the scan
// and returns its error.
func (c *Coordinator) Scan(ctx context.Context, topic feeds.Topic, engine brain.EngineName, progress Progress) (ScanResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	res := ScanResult{RunID: runID, Topic: topic, Engine: engine}

	sources := c.deps.Catalog.Sources(topic)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchStart, Comp: "coord", RunID: runID,
		Topic: string(topic), Count: len(sources)})

	items := c.deps.Collector.Collect(ctx, sources, c.cfg.Feeds.PerSource)
	logging.Info("scan collected items", "topic", topic, "engine", engine, "items", len(items))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	mode := topic.Mode()
	cards := make([]Card, 0, len(items))
	for i, item := range items {
		if progress != nil {
			progress(i, len(items), item.Title)
		}
		if engine == brain.Gemini {
			if err := c.limiter.Wait(ctx); err != nil {
				return res, fmt.Errorf("waiting for Gemini pacing: %w", err)
			}
		}

		itemStart := time.Now()
		c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindAnalyzeStart, Comp: "coord", RunID: runID,
			Engine: string(engine), Source: item.Source, Msg: item.Title})

		r := c.deps.Analyzer.Analyze(ctx, item, mode, engine)
		c.emitAnalysis(runID, engine, item, r, time.Since(itemStart))
		cards = append(cards, Card{Item: item, Result: r})

		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
	if progress != nil {
		progress(len(items), len(items), "")
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Result.Score > cards[j].Result.Score
	})
	res.Cards = cards
	res.Took = time.Since(start)

	c.journalScan(res)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindScanComplete, Comp: "coord", RunID: runID,
		Topic: string(topic), Engine: string(engine), Count: len(cards), Dur: res.Took,
		Msg: fmt.Sprintf("%d fallback", res.Fallbacks())})
	logging.Info("scan complete", "topic", topic, "cards", len(cards), "fallbacks", res.Fallbacks(), "took", res.Took)
	return res, nil
}

func (c *Coordinator) emitAnalysis(runID string, engine brain.EngineName, item feeds.Item, r brain.Result, dur time.Duration) {
	if r.Attempts > 1 {
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAnalyzeRetry, Comp: "coord", RunID: runID,
			Engine: string(engine), Source: item.Source, Attempt: r.Attempts})
	}
	if r.Fallback() {
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAnalyzeFallback, Comp: "coord", RunID: runID,
			Engine: string(engine), Source: item.Source, Err: r.Reason, Dur: dur})
		return
	}
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindAnalyzeComplete, Comp: "coord", RunID: runID,
		Engine: string(engine), Source: item.Source, Score: r.Score, Dur: dur})
}

// Ask gathers web context for query and fuses both backends' answers.
func (c *Coordinator) Ask(ctx context.Context, query string) AskResult {
	runID := uuid.NewString()

	searchStart := time.Now()
	material := c.deps.Searcher.Context(ctx, query, c.cfg.Search.MaxResults)
	kind := otel.KindSearchComplete
	if material == "" || material == search.Fallback {
		kind = otel.KindSearchError
	}
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: kind, Comp: "coord", RunID: runID,
		Query: query, Count: len(material), Dur: time.Since(searchStart)})

	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFusionDispatch, Comp: "coord", RunID: runID, Query: query})
	fusion := c.deps.Fuser.Fuse(ctx, query, material)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFusionComplete, Comp: "coord", RunID: runID,
		Query: query, Dur: fusion.Took, Msg: fmt.Sprintf("raw_b=%s", rawBState(fusion.RawB))})
	logging.Info("fusion complete", "query", query, "took", fusion.Took, "merged_len", len(fusion.Merged))

	res := AskResult{RunID: runID, Query: query, Material: material, Fusion: fusion}
	c.journalAsk(res)
	return res
}

func rawBState(raw string) string {
	if raw == brain.Skipped {
		return "skipped"
	}
	return "ok"
}

func (c *Coordinator) journalScan(res ScanResult) {
	if c.deps.Journal == nil || len(res.Cards) == 0 {
		return
	}
	now := time.Now()
	records := make([]store.Analysis, len(res.Cards))
	for i, card := range res.Cards {
		records[i] = store.Analysis{
			RunID:     res.RunID,
			Topic:     string(res.Topic),
			Engine:    string(res.Engine),
			Link:      card.Item.Link,
			Title:     card.Item.Title,
			Source:    card.Item.Source,
			Score:     card.Result.Score,
			TitleCN:   card.Result.TitleCN,
			Summary:   card.Result.Summary,
			Tags:      card.Result.Tags,
			Status:    string(card.Result.Status),
			Reason:    card.Result.Reason,
			CreatedAt: now,
		}
	}
	if err := c.deps.Journal.SaveAnalyses(records); err != nil {
		logging.Error("journal scan failed", "run", res.RunID, "error", err)
		c.deps.Events.Error(otel.KindStoreError, "coord", err)
	}
}

func (c *Coordinator) journalAsk(res AskResult) {
	if c.deps.Journal == nil {
		return
	}
	err := c.deps.Journal.SaveFusion(store.Fusion{
		RunID:  res.RunID,
		Query:  res.Query,
		Merged: res.Fusion.Merged,
		RawA:   res.Fusion.RawA,
		RawB:   res.Fusion.RawB,
		TookMs: res.Fusion.Took.Milliseconds(),
	})
	if err != nil {
		logging.Error("journal fusion failed", "run", res.RunID, "error", err)
		c.deps.Events.Error(otel.KindStoreError, "coord", err)
	}
}

func (c *Coordinator) emit(e otel.Event) {
	c.deps.Events.Emit(e)
}
