package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Proxy != DefaultProxy {
		t.Errorf("expected default proxy %q, got %q", DefaultProxy, cfg.Proxy)
	}
	if cfg.Feeds.PerSource != 3 {
		t.Errorf("expected 3 entries per source, got %d", cfg.Feeds.PerSource)
	}
	if cfg.Analysis.GeminiSpacing.Duration != 4*time.Second {
		t.Errorf("expected 4s Gemini spacing, got %v", cfg.Analysis.GeminiSpacing)
	}
	if cfg.Models.DeepSeek.Model != "deepseek-chat" {
		t.Errorf("unexpected DeepSeek model %q", cfg.Models.DeepSeek.Model)
	}
}

func TestConfiguredThreshold(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"short", false},
		{"0123456789", false}, // exactly 10 is not enough
		{"0123456789a", true},
		{"sk-0123456789abcdef", true},
	}
	for _, tt := range tests {
		if got := Configured(tt.key); got != tt.want {
			t.Errorf("Configured(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestResolveEngine(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		deepseek string
		want     string
	}{
		{"explicit gemini", "gemini", "sk-0123456789abcdef", EngineGemini},
		{"explicit deepseek", "DeepSeek", "", EngineDeepSeek},
		{"unset prefers deepseek when configured", "", "sk-0123456789abcdef", EngineDeepSeek},
		{"unset falls back to gemini", "", "", EngineGemini},
		{"unknown treated as unset", "claude", "", EngineGemini},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Engine = tt.engine
			cfg.Models.DeepSeek.APIKey = tt.deepseek
			cfg.ResolveEngine()
			if cfg.Engine != tt.want {
				t.Errorf("engine = %q, want %q", cfg.Engine, tt.want)
			}
		})
	}
}

func TestLoadSecretsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.toml")
	content := "GEMINI_API_KEY = \"AIza-gemini-test-key\"\nDEEPSEEK_API_KEY = \"sk-deepseek-test-key\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSecrets(path)
	if err != nil {
		t.Fatalf("LoadSecrets failed: %v", err)
	}
	if s.GeminiAPIKey != "AIza-gemini-test-key" {
		t.Errorf("unexpected Gemini key %q", s.GeminiAPIKey)
	}
	if s.DeepSeekAPIKey != "sk-deepseek-test-key" {
		t.Errorf("unexpected DeepSeek key %q", s.DeepSeekAPIKey)
	}

	cfg := DefaultConfig()
	cfg.ApplySecrets(s)
	if !cfg.HasDeepSeek() || !cfg.HasGemini() {
		t.Error("expected both backends configured after applying secrets")
	}
}

func TestLoadSecretsMissingFile(t *testing.T) {
	s, err := LoadSecrets(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing secrets should not error: %v", err)
	}
	if s.GeminiAPIKey != "" || s.DeepSeekAPIKey != "" {
		t.Error("expected empty secrets")
	}
}

func TestLoadFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"proxy": "none", "feeds": {"per_source": 5, "timeout": "3s"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ProxyURL() != "" {
		t.Errorf("proxy none should disable proxying, got %q", cfg.ProxyURL())
	}
	if cfg.Feeds.PerSource != 5 {
		t.Errorf("expected per_source 5, got %d", cfg.Feeds.PerSource)
	}
	if cfg.Feeds.Timeout.Duration != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.Feeds.Timeout)
	}
	if cfg.Locale != "Simplified Chinese" {
		t.Errorf("locale default lost: %q", cfg.Locale)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-from-environment")
	t.Setenv("WORTHIT_PROXY", "http://10.0.0.1:8080")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")

	cfg := DefaultConfig()
	cfg.AutoPopulateFromEnv()

	if cfg.Models.DeepSeek.APIKey != "sk-from-environment" {
		t.Errorf("env key not applied")
	}
	if cfg.ProxyURL() != "http://10.0.0.1:8080" {
		t.Errorf("unexpected proxy %q", cfg.ProxyURL())
	}
	if cfg.Models.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("unexpected Gemini model %q", cfg.Models.Gemini.Model)
	}
}

func TestRedactedHidesKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models.DeepSeek.APIKey = "sk-super-secret-value"

	red := cfg.Redacted()
	if red["deepseek_key"] != "set" {
		t.Errorf("expected presence marker, got %v", red["deepseek_key"])
	}
	for k, v := range red {
		if s, ok := v.(string); ok && s == cfg.Models.DeepSeek.APIKey {
			t.Errorf("key leaked under %q", k)
		}
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Models.Gemini.APIKey = "AIza-must-not-be-written"
	cfg.Search.MaxResults = 8
	cfg.Journal.Enabled = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "AIza-must-not-be-written") {
		t.Error("credentials must never be written to the config file")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Search.MaxResults != 8 || !loaded.Journal.Enabled {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
	if loaded.Analysis.GeminiSpacing.Duration != 4*time.Second {
		t.Errorf("spacing lost: %v", loaded.Analysis.GeminiSpacing)
	}
}

// isolateHome points the data directory at a temp dir and clears every
// environment override that affects engine resolution.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("WORTHIT_HOME", home)
	t.Setenv("WORTHIT_SECRETS", "")
	t.Setenv("WORTHIT_ENGINE", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadResolvesEngine(t *testing.T) {
	const (
		deepseekKey = "DEEPSEEK_API_KEY = \"sk-deepseek-test-key\"\n"
		geminiKey   = "GEMINI_API_KEY = \"AIza-gemini-test-key\"\n"
	)
	tests := []struct {
		name    string
		secrets string
		file    string
		env     string
		want    string
	}{
		{"no keys", "", "", "", EngineGemini},
		{"deepseek only", deepseekKey, "", "", EngineDeepSeek},
		{"gemini only", geminiKey, "", "", EngineGemini},
		{"both keys", deepseekKey + geminiKey, "", "", EngineDeepSeek},
		{"file picks gemini", deepseekKey + geminiKey, `{"engine": "gemini"}`, "", EngineGemini},
		{"file picks deepseek without key", geminiKey, `{"engine": "DeepSeek"}`, "", EngineDeepSeek},
		{"env overrides file", deepseekKey + geminiKey, `{"engine": "DeepSeek"}`, "Gemini", EngineGemini},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolateHome(t)
			if tt.secrets != "" {
				writeFile(t, filepath.Join(home, "secrets.toml"), tt.secrets)
			}
			if tt.file != "" {
				writeFile(t, filepath.Join(home, "config.json"), tt.file)
			}
			if tt.env != "" {
				t.Setenv("WORTHIT_ENGINE", tt.env)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Engine != tt.want {
				t.Errorf("engine = %q, want %q (deepseek=%v gemini=%v)",
					cfg.Engine, tt.want, cfg.HasDeepSeek(), cfg.HasGemini())
			}
		})
	}
}

func TestSaveKeepsOnlyChosenEngine(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, filepath.Join(home, "secrets.toml"), "GEMINI_API_KEY = \"AIza-gemini-test-key\"\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"engine"`) {
		t.Errorf("resolved default engine should not be written:\n%s", data)
	}

	// A DeepSeek key added later must win on the next load.
	writeFile(t, filepath.Join(home, "secrets.toml"),
		"GEMINI_API_KEY = \"AIza-gemini-test-key\"\nDEEPSEEK_API_KEY = \"sk-deepseek-test-key\"\n")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.Engine != EngineDeepSeek {
		t.Errorf("engine = %q after adding a DeepSeek key", cfg.Engine)
	}

	cfg.Engine = "Gemini"
	cfg.ResolveEngine()
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err = os.ReadFile(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"engine": "Gemini"`) {
		t.Errorf("chosen engine should be written:\n%s", data)
	}
}

func TestLoadReadsSecretsFromDataDir(t *testing.T) {
	home := isolateHome(t)
	data := filepath.Join(t.TempDir(), "elsewhere")
	writeFile(t, filepath.Join(home, "config.json"), `{"data_dir": "`+filepath.ToSlash(data)+`"}`)
	writeFile(t, filepath.Join(data, "secrets.toml"), "GEMINI_API_KEY = \"AIza-moved-gemini-key\"\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Models.Gemini.APIKey != "AIza-moved-gemini-key" {
		t.Errorf("secrets not read from data_dir, key = %q", cfg.Models.Gemini.APIKey)
	}
	if cfg.SecretsPath() != filepath.Join(data, "secrets.toml") {
		t.Errorf("unexpected secrets path %q", cfg.SecretsPath())
	}

	override := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv("WORTHIT_SECRETS", override)
	if cfg.SecretsPath() != override {
		t.Errorf("WORTHIT_SECRETS should win, got %q", cfg.SecretsPath())
	}
}

func TestDefaultConfigLeavesEngineUnresolved(t *testing.T) {
	if e := DefaultConfig().Engine; e != "" {
		t.Errorf("default engine should be resolved at load time, got %q", e)
	}
}
