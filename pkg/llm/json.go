package llm

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON finds a JSON object or array in model output. It tries the
// whole text, then a ```json fence, then any ``` fence, then the trimmed text.
func ExtractJSON(text string) (data []byte, ok bool) {
	candidates := []string{text}

	if start := strings.Index(text, "```json"); start >= 0 {
		candidates = append(candidates, fenceBody(text[start+len("```json"):]))
	}

	if start := strings.Index(text, "```"); start >= 0 {
		body := fenceBody(text[start+3:])
		// Drop a language tag on the first line.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 && !startsJSON(body) {
			body = strings.TrimSpace(body[nl+1:])
		}
		candidates = append(candidates, body)
	}

	candidates = append(candidates, strings.TrimSpace(text))

	for _, candidate := range candidates {
		if startsJSON(candidate) && gjson.Valid(candidate) {
			data = []byte(candidate)
			ok = true
			return data, ok
		}
	}

	return data, ok
}

// ParseJSON returns the first JSON object found in text, or nil.
func ParseJSON(text string) (parsed map[string]interface{}) {
	data, ok := ExtractJSON(text)
	if !ok {
		return parsed
	}

	if err := json.Unmarshal(data, &parsed); err != nil {
		parsed = nil
	}
	return parsed
}

// StripCodeFence removes a surrounding ```lang fence if present.
func StripCodeFence(text, lang string) (cleaned string) {
	cleaned = strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```"+lang) {
		cleaned = fenceBody(cleaned[len("```"+lang):])
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = fenceBody(cleaned[3:])
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 && !strings.Contains(cleaned[:nl], "<") {
			cleaned = strings.TrimSpace(cleaned[nl+1:])
		}
	}

	return cleaned
}

// fenceBody returns the text up to the closing fence, trimmed.
func fenceBody(rest string) string {
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func startsJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
