// Package jsonutil extracts and decodes JSON from LLM responses that may
// be wrapped in markdown code fences or embedded in surrounding prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a ```json ... ``` or ``` ... ``` wrapper from text.
// Returns the content between the fences, or the original text when no
// fences are present.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// Extract returns the JSON object or array embedded in text: the first
// { or [ matched against the last corresponding } or ].
func Extract(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	start, closer := objIdx, "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}
	return text[:end+1], nil
}

// Decode strips markdown fences from a raw LLM response, extracts the
// JSON payload, and unmarshals it into T. This is the one path for
// parsing model output; a response that does not contain valid JSON is
// an error, never an empty value.
func Decode[T any](raw string) (T, error) {
	var zero T

	payload, err := Extract(StripFences(raw))
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var out T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		preview := payload
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return out, nil
}
