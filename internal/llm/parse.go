package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"ReviewPulse/internal/domain"
)

const snippetLimit = 200

// ExtractJSONSnippet pulls the JSON payload out of a free-form model
// response. Models frequently wrap JSON in markdown fences even when told
// not to, and raw text may carry leading or trailing commentary, so the
// extraction order matters: a ```json fence wins, then any fence, then the
// first balanced {...} or [...] span, then the whole text as a last resort.
func ExtractJSONSnippet(response string) string {
	text := strings.TrimSpace(response)
	if text == "" {
		return ""
	}

	if idx := strings.Index(text, "```json"); idx >= 0 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end > 0 {
			return strings.TrimSpace(text[start : start+end])
		}
	}

	if idx := strings.Index(text, "```"); idx >= 0 {
		start := idx + len("```")
		if end := strings.Index(text[start:], "```"); end > 0 {
			return strings.TrimSpace(text[start : start+end])
		}
	}

	if span := balancedSpan(text); span != "" {
		return span
	}

	return text
}

// balancedSpan finds the first bracket-balanced object or array by depth
// tracking. Returns "" when no balanced span closes.
func balancedSpan(text string) string {
	start := -1
	depth := 0
	for i, ch := range text {
		switch ch {
		case '{', '[':
			if start < 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// ParseJSON decodes a model response with robust extraction, returning the
// decoded value or a ParseError carrying the offending snippet.
func ParseJSON(response string) (any, error) {
	snippet := ExtractJSONSnippet(response)
	if snippet == "" {
		return nil, &domain.ParseError{Snippet: "", Err: errors.New("empty model response")}
	}

	var value any
	if err := json.Unmarshal([]byte(snippet), &value); err != nil {
		return nil, &domain.ParseError{Snippet: truncate(snippet, snippetLimit), Err: err}
	}
	return value, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
