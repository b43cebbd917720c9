package brain

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/abelbrown/worthit/internal/config"
)

// Provider configurations

// DeepSeekConfig builds an OpenAI-compatible chat completions config.
func DeepSeekConfig(ms config.ModelSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:          string(DeepSeek),
		Endpoint:      ms.Endpoint,
		APIKey:        ms.APIKey,
		Model:         ms.Model,
		Temperature:   ms.Temperature,
		AuthHeader:    "Authorization",
		AuthPrefix:    "Bearer ",
		BuildBody:     buildDeepSeekBody,
		ParseResponse: parseDeepSeekResponse,
	}
}

// GeminiConfig builds a generateContent config. ms.Endpoint is the models
// base URL; the model name and method are appended.
func GeminiConfig(ms config.ModelSettings) *ProviderConfig {
	base := ms.Endpoint
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &ProviderConfig{
		Name:          string(Gemini),
		Endpoint:      base + ms.Model + ":generateContent",
		APIKey:        ms.APIKey,
		Model:         ms.Model,
		Temperature:   ms.Temperature,
		AuthHeader:    "x-goog-api-key",
		AuthPrefix:    "",
		BuildBody:     buildGeminiBody,
		ParseResponse: parseGeminiResponse,
	}
}

func buildDeepSeekBody(cfg *ProviderConfig, req Request) map[string]any {
	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})

	body := map[string]any{
		"model":    cfg.Model,
		"messages": messages,
	}
	if cfg.Temperature > 0 {
		body["temperature"] = cfg.Temperature
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	return body
}

func buildGeminiBody(cfg *ProviderConfig, req Request) map[string]any {
	contents := []map[string]any{
		{"role": "user", "parts": []map[string]string{{"text": req.UserPrompt}}},
	}

	body := map[string]any{
		"contents": contents,
	}

	gen := map[string]any{}
	if req.MaxTokens > 0 {
		gen["maxOutputTokens"] = req.MaxTokens
	}
	if cfg.Temperature > 0 {
		gen["temperature"] = cfg.Temperature
	}
	if len(gen) > 0 {
		body["generationConfig"] = gen
	}

	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}

	return body
}

func parseDeepSeekResponse(body []byte) (string, string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, resp.Model, nil
	}
	return "", resp.Model, nil
}

func parseGeminiResponse(body []byte) (string, string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
		ModelVersion string `json:"modelVersion"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		if resp.PromptFeedback.BlockReason != "" {
			return "", resp.ModelVersion, errors.New("response blocked: " + resp.PromptFeedback.BlockReason)
		}
		return "", resp.ModelVersion, errors.New("response has no candidates")
	}
	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, ""), resp.ModelVersion, nil
}
