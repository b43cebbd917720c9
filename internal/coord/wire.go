package coord

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/worthit/internal/brain"
	"github.com/abelbrown/worthit/internal/config"
	"github.com/abelbrown/worthit/internal/feeds"
	"github.com/abelbrown/worthit/internal/httpclient"
	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/otel"
	"github.com/abelbrown/worthit/internal/search"
	"github.com/abelbrown/worthit/internal/store"
)

// Build wires the production collaborators from cfg. The returned cleanup
// closes the journal; events stays owned by the caller.
func Build(cfg *config.Config, events *otel.Logger) (*Coordinator, func(), error) {
	clients, err := httpclient.NewClients(cfg.ProxyURL(), cfg.Feeds.Timeout.Duration)
	if err != nil {
		return nil, nil, fmt.Errorf("http clients: %w", err)
	}

	catalog := feeds.DefaultCatalog
	if cfg.Feeds.CatalogFile != "" {
		catalog, err = feeds.LoadCatalog(cfg.Feeds.CatalogFile)
		if err != nil {
			return nil, nil, err
		}
	}

	fetcher := feeds.NewFetcher(clients.Feed)
	fetcher.OnFetch = func(src feeds.Source, n int, dur time.Duration, err error) {
		if err != nil {
			events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: "feeds",
				Source: src.Name, Dur: dur, Err: err.Error()})
			return
		}
		events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "feeds",
			Source: src.Name, Count: n, Dur: dur})
	}

	engines := brain.NewEngines(cfg, clients.Model)
	d := Deps{
		Catalog:   catalog,
		Collector: fetcher,
		Analyzer:  brain.NewAnalyzer(engines, brain.WithLocale(cfg.Locale)),
		Fuser:     brain.NewFuser(engines.DeepSeek, engines.Gemini, cfg.Locale),
		Searcher:  search.New(clients.Feed, cfg.Search.Endpoint),
		Engines:   engines,
		Events:    events,
	}

	cleanup := func() {}
	if cfg.Journal.Enabled {
		j, err := openJournal(cfg.JournalPath())
		if err != nil {
			// The journal is an audit aid; runs proceed without it.
			logging.Warn("journal unavailable", "path", cfg.JournalPath(), "error", err)
			events.Error(otel.KindStoreError, "coord", err)
		} else {
			d.Journal = j
			cleanup = func() { j.Close() }
		}
	}

	return New(cfg, d), cleanup, nil
}

func openJournal(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	return store.Open(path)
}
