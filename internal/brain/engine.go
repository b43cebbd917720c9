package brain

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/abelbrown/worthit/internal/config"
	"github.com/abelbrown/worthit/internal/logging"
)

// EngineName identifies a model backend.
type EngineName string

const (
	DeepSeek EngineName = config.EngineDeepSeek
	Gemini   EngineName = config.EngineGemini
)

// ParseEngineName accepts an engine name in any case.
func ParseEngineName(s string) (EngineName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deepseek":
		return DeepSeek, nil
	case "gemini":
		return Gemini, nil
	}
	return "", fmt.Errorf("unknown engine %q (want DeepSeek or Gemini)", s)
}

// Backend turns a provider into a string-in, string-out call. Call never
// returns an error: failures are reported as text in the reply.
type Backend struct {
	name     EngineName
	provider Provider
}

// NewBackend wraps p under the given engine name.
func NewBackend(name EngineName, p Provider) *Backend {
	return &Backend{name: name, provider: p}
}

// Name returns the engine name.
func (b *Backend) Name() EngineName {
	return b.name
}

// Configured reports whether the backend has a usable credential.
func (b *Backend) Configured() bool {
	return b != nil && b.provider != nil && b.provider.Available()
}

// Call sends prompt as a single user message and returns the reply text.
// An unconfigured backend yields "<Engine> not configured"; transport and
// API failures yield "<Engine> Error: <detail>".
func (b *Backend) Call(ctx context.Context, prompt string) string {
	if !b.Configured() {
		return NotConfigured(b.name)
	}
	resp, err := b.provider.Generate(ctx, Request{UserPrompt: prompt})
	if err != nil {
		logging.Warn("backend call failed", "engine", b.name, "error", err)
		return fmt.Sprintf("%s Error: %v", b.name, err)
	}
	return resp.Content
}

// NotConfigured is the reply of a backend without a credential.
func NotConfigured(name EngineName) string {
	return fmt.Sprintf("%s not configured", name)
}

// Engines holds both backends.
type Engines struct {
	DeepSeek *Backend
	Gemini   *Backend
}

// NewEngines builds both backends from cfg. All traffic uses client.
func NewEngines(cfg *config.Config, client *http.Client) *Engines {
	e := &Engines{
		DeepSeek: NewBackend(DeepSeek, NewHTTPProvider(DeepSeekConfig(cfg.Models.DeepSeek), client)),
		Gemini:   NewBackend(Gemini, NewHTTPProvider(GeminiConfig(cfg.Models.Gemini), client)),
	}
	// Only whether a key exists is logged, never its content.
	logging.Info("engines ready", "deepseek", e.DeepSeek.Configured(), "gemini", e.Gemini.Configured())
	return e
}

// Backend returns the backend for name. Unknown names get Gemini, matching
// the single-call dispatch: anything that is not DeepSeek goes to Gemini.
func (e *Engines) Backend(name EngineName) *Backend {
	if name == DeepSeek {
		return e.DeepSeek
	}
	return e.Gemini
}

// Single dispatches prompt to the named backend.
func (e *Engines) Single(ctx context.Context, prompt string, name EngineName) string {
	return e.Backend(name).Call(ctx, prompt)
}

// Configured reports whether the named backend has a credential.
func (e *Engines) Configured(name EngineName) bool {
	return e.Backend(name).Configured()
}

// Ready lists the configured engines in display order.
func (e *Engines) Ready() []EngineName {
	var out []EngineName
	for _, n := range []EngineName{DeepSeek, Gemini} {
		if e.Configured(n) {
			out = append(out, n)
		}
	}
	return out
}
