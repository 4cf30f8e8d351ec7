package llm

import (
	"errors"
	"strings"
	"testing"

	"ReviewPulse/internal/domain"
)

func TestExtractJSONSnippet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "json fence",
			response: "Here you go:\n```json\n{\"a\": 1}\n```\nDone.",
			want:     `{"a": 1}`,
		},
		{
			name:     "plain fence",
			response: "```\n[1, 2]\n```",
			want:     "[1, 2]",
		},
		{
			name:     "balanced span with prose",
			response: "The result is {\"a\": {\"b\": 2}} as requested",
			want:     `{"a": {"b": 2}}`,
		},
		{
			name:     "array span",
			response: "themes: [\"x\", \"y\"] found",
			want:     `["x", "y"]`,
		},
		{
			name:     "whole text fallback",
			response: "no json here",
			want:     "no json here",
		},
		{
			name:     "empty",
			response: "   ",
			want:     "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractJSONSnippet(tc.response); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	value, err := ParseJSON("```json\n{\"theme\": \"Performance\"}\n```")
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", value)
	}
	if obj["theme"] != "Performance" {
		t.Fatalf("unexpected payload: %v", obj)
	}
}

func TestParseJSONEmptyResponse(t *testing.T) {
	t.Parallel()

	_, err := ParseJSON("")
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseJSONInvalidPayloadCarriesSnippet(t *testing.T) {
	t.Parallel()

	_, err := ParseJSON("{not valid json at all")
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Snippet == "" {
		t.Fatalf("snippet missing from parse error")
	}

	long := "{" + strings.Repeat("x", 500)
	_, err = ParseJSON(long)
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if len(parseErr.Snippet) > snippetLimit+len("...") {
		t.Fatalf("snippet not truncated: %d chars", len(parseErr.Snippet))
	}
}
