// Package llm is the single point of contact with the text-generation
// backend: prompt submission with retry, robust JSON extraction, and
// token-budget helpers shared by theme extraction and synthesis.
package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// Config holds the generation parameters for every orchestrated call.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	MaxRetries  int
	Backoff     time.Duration
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.3,
		MaxTokens:   1000,
		MaxRetries:  3,
		Backoff:     time.Second,
	}
}

// Orchestrator wraps a ChatBackend with retry, backoff, and parsing.
type Orchestrator struct {
	backend ports.ChatBackend
	cfg     Config
	logger  *slog.Logger
}

// New validates the configuration before any call is made.
func New(backend ports.ChatBackend, cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	if backend == nil {
		return nil, &domain.ConfigError{Msg: "chat backend is required"}
	}
	if cfg.MaxRetries < 1 {
		return nil, &domain.ConfigError{Msg: "max retries must be at least 1"}
	}
	if cfg.Backoff < 0 {
		return nil, &domain.ConfigError{Msg: "backoff must not be negative"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{backend: backend, cfg: cfg, logger: logger}, nil
}

// CompleteJSON submits a prompt pair expecting a JSON response and returns
// the raw model text, trimmed. Backend failures are retried with
// exponential backoff; once retries are exhausted the last error is
// propagated as a BackendError so the call site decides fallback policy.
// A successful-but-empty response is returned as-is, never retried.
func (o *Orchestrator) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = o.cfg.MaxTokens
	}

	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			backoff := o.cfg.Backoff * (1 << (attempt - 2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", &domain.BackendError{Attempts: attempt - 1, Err: ctx.Err()}
			}
		}

		text, err := o.backend.Complete(ctx, ports.ChatRequest{
			System:      systemPrompt,
			User:        userPrompt,
			Model:       o.cfg.Model,
			Temperature: o.cfg.Temperature,
			MaxTokens:   maxTokens,
		})
		if err == nil {
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		o.logger.Warn("generation call failed",
			"attempt", attempt,
			"max_retries", o.cfg.MaxRetries,
			"error", err)
	}

	return "", &domain.BackendError{Attempts: o.cfg.MaxRetries, Err: lastErr}
}
