package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abelbrown/worthit/internal/config"
)

const testKey = "sk-test-0123456789"

func TestDeepSeekRequestShape(t *testing.T) {
	var auth string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"model": "deepseek-chat", "choices": [{"message": {"content": "hello from deepseek"}}]}`))
	}))
	defer srv.Close()

	ms := config.DefaultConfig().Models.DeepSeek
	ms.Endpoint = srv.URL
	ms.APIKey = testKey
	b := NewBackend(DeepSeek, NewHTTPProvider(DeepSeekConfig(ms), srv.Client()))

	got := b.Call(context.Background(), "ping")
	if got != "hello from deepseek" {
		t.Errorf("Call = %q", got)
	}
	if auth != "Bearer "+testKey {
		t.Errorf("unexpected auth header %q", auth)
	}
	if body["model"] != "deepseek-chat" {
		t.Errorf("model = %v", body["model"])
	}
	if body["temperature"] != 1.3 {
		t.Errorf("temperature = %v", body["temperature"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected a single user message, got %v", body["messages"])
	}
	if m := msgs[0].(map[string]any); m["role"] != "user" || m["content"] != "ping" {
		t.Errorf("unexpected message %v", m)
	}
}

func TestGeminiRequestShape(t *testing.T) {
	var path, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "hello "}, {"text": "from gemini"}]}}]}`))
	}))
	defer srv.Close()

	ms := config.DefaultConfig().Models.Gemini
	ms.Endpoint = srv.URL
	ms.APIKey = testKey
	b := NewBackend(Gemini, NewHTTPProvider(GeminiConfig(ms), srv.Client()))

	if got := b.Call(context.Background(), "ping"); got != "hello from gemini" {
		t.Errorf("Call = %q", got)
	}
	if path != "/gemini-pro:generateContent" {
		t.Errorf("unexpected path %q", path)
	}
	if key != testKey {
		t.Errorf("api key header not sent")
	}
}

func TestBackendErrorsBecomeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "quota"}`))
	}))
	defer srv.Close()

	ms := config.DefaultConfig().Models.Gemini
	ms.Endpoint = srv.URL
	ms.APIKey = testKey
	b := NewBackend(Gemini, NewHTTPProvider(GeminiConfig(ms), srv.Client()))

	got := b.Call(context.Background(), "ping")
	if !strings.HasPrefix(got, "Gemini Error: ") || !strings.Contains(got, "429") {
		t.Errorf("unexpected error text %q", got)
	}
}

func TestGeminiBlockedResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
	}))
	defer srv.Close()

	ms := config.DefaultConfig().Models.Gemini
	ms.Endpoint = srv.URL
	ms.APIKey = testKey
	got := NewBackend(Gemini, NewHTTPProvider(GeminiConfig(ms), srv.Client())).Call(context.Background(), "ping")
	if !strings.Contains(got, "SAFETY") {
		t.Errorf("expected block reason in %q", got)
	}
}

func TestUnconfiguredBackendNeverDials(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	ms := config.DefaultConfig().Models.DeepSeek
	ms.Endpoint = srv.URL
	ms.APIKey = "short" // below the presence threshold
	b := NewBackend(DeepSeek, NewHTTPProvider(DeepSeekConfig(ms), srv.Client()))

	if got := b.Call(context.Background(), "ping"); got != "DeepSeek not configured" {
		t.Errorf("Call = %q", got)
	}
	if hit {
		t.Error("unconfigured backend made a request")
	}
}

func TestEnginesDispatch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models.DeepSeek.APIKey = testKey
	e := NewEngines(cfg, nil)

	if !e.Configured(DeepSeek) || e.Configured(Gemini) {
		t.Error("unexpected readiness")
	}
	if got := e.Ready(); len(got) != 1 || got[0] != DeepSeek {
		t.Errorf("Ready = %v", got)
	}
	if got := e.Single(context.Background(), "x", Gemini); got != "Gemini not configured" {
		t.Errorf("Single = %q", got)
	}
	if e.Backend("anything") != e.Gemini {
		t.Error("non-DeepSeek names dispatch to Gemini")
	}
}

func TestParseEngineName(t *testing.T) {
	if n, err := ParseEngineName("deepseek"); err != nil || n != DeepSeek {
		t.Errorf("got %v, %v", n, err)
	}
	if n, err := ParseEngineName("GEMINI"); err != nil || n != Gemini {
		t.Errorf("got %v, %v", n, err)
	}
	if _, err := ParseEngineName("gpt"); err == nil {
		t.Error("expected error")
	}
}
