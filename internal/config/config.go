package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Engine names accepted in Config.Engine.
const (
	EngineDeepSeek = "DeepSeek"
	EngineGemini   = "Gemini"
)

// DefaultProxy is the local outbound proxy every request is routed through.
const DefaultProxy = "http://127.0.0.1:3067"

// minKeyLength is the presence threshold for credentials. Shorter strings
// are treated as unset placeholders.
const minKeyLength = 10

// Config is the application configuration. It is built once at startup and
// passed to constructors; nothing reads it from package state.
type Config struct {
	// Engine is the primary backend for per-item analysis. Left empty, it is
	// resolved at load time from the configured credentials.
	Engine string `json:"engine,omitempty"`

	// Proxy is the outbound proxy URL. "none" or "direct" disables it.
	Proxy string `json:"proxy"`

	// Locale is the language analysis and fusion output is written in.
	Locale string `json:"locale"`

	Models   ModelConfig    `json:"models"`
	Feeds    FeedConfig     `json:"feeds"`
	Analysis AnalysisConfig `json:"analysis"`
	Search   SearchConfig   `json:"search"`
	Journal  JournalConfig  `json:"journal"`

	// DataDir holds logs, the event log, the journal database and, unless
	// WORTHIT_SECRETS points elsewhere, secrets.toml.
	DataDir string `json:"data_dir"`

	// engineDefaulted is set when ResolveEngine picked Engine from the
	// credentials rather than from the file or environment.
	engineDefaulted bool
}

// ModelConfig holds settings for both backends.
type ModelConfig struct {
	DeepSeek ModelSettings `json:"deepseek"`
	Gemini   ModelSettings `json:"gemini"`
}

// ModelSettings for a single backend
type ModelSettings struct {
	APIKey      string  `json:"-"` // loaded from the secrets store only
	Endpoint    string  `json:"endpoint,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// FeedConfig controls feed retrieval.
type FeedConfig struct {
	PerSource   int      `json:"per_source"`
	CatalogFile string   `json:"catalog_file,omitempty"`
	Timeout     Duration `json:"timeout"`
}

// AnalysisConfig controls per-item analysis pacing.
type AnalysisConfig struct {
	// GeminiSpacing is the minimum gap between two items analyzed by Gemini.
	GeminiSpacing Duration `json:"gemini_spacing"`
}

// SearchConfig controls the web search that feeds fusion mode.
type SearchConfig struct {
	MaxResults int `json:"max_results"`

	// Endpoint is the DuckDuckGo HTML endpoint. Empty uses the public one.
	Endpoint string `json:"endpoint,omitempty"`
}

// JournalConfig controls the optional SQLite audit journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// Duration is a time.Duration that reads and writes as a string ("4s").
type Duration struct {
	time.Duration
}

// MarshalJSON writes the duration in time.Duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "4s" style strings or integer nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		d.Duration = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

// Secrets mirrors the secrets.toml layout.
type Secrets struct {
	GeminiAPIKey   string `toml:"GEMINI_API_KEY"`
	DeepSeekAPIKey string `toml:"DEEPSEEK_API_KEY"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Proxy:  DefaultProxy,
		Locale: "Simplified Chinese",
		Models: ModelConfig{
			DeepSeek: ModelSettings{
				Endpoint:    "https://api.deepseek.com/chat/completions",
				Model:       "deepseek-chat",
				Temperature: 1.3,
			},
			Gemini: ModelSettings{
				Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/",
				Model:    "gemini-pro",
			},
		},
		Feeds: FeedConfig{
			PerSource: 3,
			Timeout:   Duration{10 * time.Second},
		},
		Analysis: AnalysisConfig{
			GeminiSpacing: Duration{4 * time.Second},
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Journal: JournalConfig{
			Enabled: false,
		},
		DataDir: defaultDataDir(),
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("WORTHIT_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".worthit")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.json")
}

// SecretsPath returns the path to the secrets file
func SecretsPath() string {
	return secretsPathIn(defaultDataDir())
}

// SecretsPath returns the secrets file for this config's data directory.
func (c *Config) SecretsPath() string {
	return secretsPathIn(c.DataDir)
}

func secretsPathIn(dataDir string) string {
	if p := os.Getenv("WORTHIT_SECRETS"); p != "" {
		return p
	}
	return filepath.Join(dataDir, "secrets.toml")
}

// Load reads config and secrets from disk, applies environment overrides,
// and resolves the primary engine. A missing config file yields defaults.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	secrets, err := LoadSecrets(cfg.SecretsPath())
	if err != nil {
		return nil, err
	}
	cfg.ApplySecrets(secrets)
	cfg.AutoPopulateFromEnv()
	cfg.ResolveEngine()
	return cfg, nil
}

// LoadFile reads a JSON config from path. Fields absent from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadSecrets reads the TOML secrets store. A missing file is not an error.
func LoadSecrets(path string) (Secrets, error) {
	var s Secrets
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read secrets: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse secrets %s: %w", path, err)
	}
	return s, nil
}

// ApplySecrets copies credentials into the model settings.
func (c *Config) ApplySecrets(s Secrets) {
	if key := strings.TrimSpace(s.DeepSeekAPIKey); key != "" {
		c.Models.DeepSeek.APIKey = key
	}
	if key := strings.TrimSpace(s.GeminiAPIKey); key != "" {
		c.Models.Gemini.APIKey = key
	}
}

// Save writes config to disk. Credentials are never written.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path. An engine picked from the credentials is
// not written, so it is resolved again on the next load.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	out := *c
	if out.engineDefaulted {
		out.Engine = ""
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// AutoPopulateFromEnv lets environment variables override file settings.
func (c *Config) AutoPopulateFromEnv() {
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		c.Models.DeepSeek.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Models.Gemini.APIKey = key
	}
	if v := os.Getenv("DEEPSEEK_MODEL"); v != "" {
		c.Models.DeepSeek.Model = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Models.Gemini.Model = v
	}
	if v := os.Getenv("WORTHIT_ENGINE"); v != "" {
		c.Engine = v
	}
	if v := os.Getenv("WORTHIT_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("WORTHIT_LOCALE"); v != "" {
		c.Locale = v
	}
}

// Configured reports whether a credential passes the presence check.
func Configured(key string) bool {
	return len(key) > minKeyLength
}

// HasDeepSeek reports whether the DeepSeek credential is present.
func (c *Config) HasDeepSeek() bool {
	return Configured(c.Models.DeepSeek.APIKey)
}

// HasGemini reports whether the Gemini credential is present.
func (c *Config) HasGemini() bool {
	return Configured(c.Models.Gemini.APIKey)
}

// ResolveEngine normalizes Engine. An unset or unknown value picks DeepSeek
// when it is configured and Gemini otherwise.
func (c *Config) ResolveEngine() {
	c.engineDefaulted = false
	switch strings.ToLower(strings.TrimSpace(c.Engine)) {
	case "deepseek":
		c.Engine = EngineDeepSeek
		return
	case "gemini":
		c.Engine = EngineGemini
		return
	}
	c.engineDefaulted = true
	if c.HasDeepSeek() {
		c.Engine = EngineDeepSeek
	} else {
		c.Engine = EngineGemini
	}
}

// ProxyURL returns the proxy to dial through, or "" for direct connections.
func (c *Config) ProxyURL() string {
	switch strings.ToLower(strings.TrimSpace(c.Proxy)) {
	case "", "none", "direct":
		return ""
	}
	return strings.TrimSpace(c.Proxy)
}

// JournalPath returns the journal database location.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.DataDir, "journal.db")
}

// EventLogPath returns the JSONL event log location.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// Redacted returns a copy safe to print: keys reduced to a presence marker.
func (c *Config) Redacted() map[string]any {
	mark := func(key string) string {
		if Configured(key) {
			return "set"
		}
		return "unset"
	}
	return map[string]any{
		"engine":           c.Engine,
		"proxy":            c.Proxy,
		"locale":           c.Locale,
		"deepseek_model":   c.Models.DeepSeek.Model,
		"deepseek_key":     mark(c.Models.DeepSeek.APIKey),
		"gemini_model":     c.Models.Gemini.Model,
		"gemini_key":       mark(c.Models.Gemini.APIKey),
		"feeds_per_source": c.Feeds.PerSource,
		"catalog_file":     c.Feeds.CatalogFile,
		"gemini_spacing":   c.Analysis.GeminiSpacing.String(),
		"search_results":   c.Search.MaxResults,
		"journal":          c.Journal.Enabled,
		"data_dir":         c.DataDir,
	}
}
