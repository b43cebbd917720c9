package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/abelbrown/worthit/internal/config"
	"github.com/abelbrown/worthit/internal/coord"
	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/otel"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	events  *otel.Logger
	ring    *otel.RingBuffer
	cleanup []func()
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			path = config.ConfigPath()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// startLogging points the global logger at the log file, or at stderr with
// --verbose, and opens the event log.
func (c *commandContext) startLogging() error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	if c.verbose != nil && *c.verbose {
		logging.InitWriter(os.Stderr)
	} else {
		if err := logging.Init(cfg.DataDir); err != nil {
			return err
		}
		c.cleanup = append(c.cleanup, logging.Close)
	}

	c.ring = otel.NewRingBuffer(otel.DefaultRingSize)
	events, err := otel.OpenFile(cfg.EventLogPath())
	if err != nil {
		// Events are diagnostics; keep going without them.
		logging.Warn("event log unavailable", "path", cfg.EventLogPath(), "error", err)
		events = otel.NewNullLogger()
	}
	events.SetRingBuffer(c.ring)
	events.Info(otel.KindStartup, "main", logging.Version)
	c.events = events
	c.cleanup = append(c.cleanup, func() {
		events.Info(otel.KindShutdown, "main", "")
		events.Close()
	})
	return nil
}

// coordinator builds the production coordinator. Logging must be started.
func (c *commandContext) coordinator() (*coord.Coordinator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	co, cleanup, err := coord.Build(cfg, c.events)
	if err != nil {
		return nil, fmt.Errorf("build coordinator: %w", err)
	}
	c.cleanup = append(c.cleanup, cleanup)
	return co, nil
}

// close releases resources in reverse order of acquisition.
func (c *commandContext) close() {
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
	c.cleanup = nil
}
