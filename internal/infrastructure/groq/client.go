// Package groq adapts the Groq OpenAI-compatible API to the chat backend port.
package groq

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

const defaultEndpoint = "https://api.groq.com/openai/v1"

// Client calls Groq chat completions with a local request rate cap.
type Client struct {
	api     *openai.Client
	limiter *rate.Limiter
}

var _ ports.ChatBackend = (*Client)(nil)

// NewClient builds a Groq-backed chat client. requestsPerMinute <= 0 disables
// the local rate cap.
func NewClient(apiKey, endpoint string, requestsPerMinute int) (*Client, error) {
	if apiKey == "" {
		return nil, &domain.ConfigError{Msg: "groq api key is required"}
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = defaultEndpoint
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}

	return &Client{api: openai.NewClientWithConfig(cfg), limiter: limiter}, nil
}

// Complete sends one chat completion request and returns the raw text of the
// first choice.
func (c *Client) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
