package brain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Repair turns free-form model output into a JSON object. It strips code
// fences, isolates the outermost object, and repairs common syntax damage
// such as single quotes, unquoted keys, trailing commas or missing braces.
func Repair(raw string) (map[string]any, error) {
	payload := extractObject(stripCodeFence(raw))
	if payload == "" {
		return nil, errors.New("empty payload")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err == nil {
		return obj, nil
	}

	fixed, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return nil, fmt.Errorf("repair json: %w", err)
	}
	if err := json.Unmarshal([]byte(fixed), &obj); err != nil {
		return nil, fmt.Errorf("repaired payload is not an object: %w", err)
	}
	return obj, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}
	body := trimmed[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.Contains(body[:nl], "{") {
		body = body[nl+1:] // language tag line
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// extractObject returns the text from the first '{' through the last '}'.
// Output cut off before its closing brace is returned from '{' to the end.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return strings.TrimSpace(s)
	}
	if end := strings.LastIndexByte(s, '}'); end > start {
		return s[start : end+1]
	}
	return s[start:]
}
