package ports

import (
	"context"
	"time"

	"ReviewPulse/internal/domain"
)

// ReviewSource pulls review records for an app over a date range.
type ReviewSource interface {
	Fetch(ctx context.Context, req FetchRequest) ([]domain.Review, error)
}

// FetchRequest carries everything a source needs for one extraction.
type FetchRequest struct {
	AppID            string
	StartDate        time.Time
	EndDate          time.Time
	SamplesPerRating int
	Options          map[string]string
}

// ChatBackend is the narrow generation contract the pipeline depends on:
// submit a prompt pair, get text back. Vendor SDKs stay behind it.
type ChatBackend interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ChatRequest is a single chat completion call.
type ChatRequest struct {
	System      string
	User        string
	Model       string
	Temperature float32
	MaxTokens   int
}

// ReviewRepository persists pipeline artifacts and enforces exact-duplicate
// uniqueness via review hashes.
type ReviewRepository interface {
	ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error)
	SaveReviews(ctx context.Context, appID string, reviews []domain.Review) error
	SaveThemes(ctx context.Context, appID string, batchStart time.Time, themes []domain.AggregatedTheme) error
	SavePulse(ctx context.Context, appID string, batchStart time.Time, pulse domain.Pulse) error
}

// Notifier delivers a finished pulse to a subscriber.
type Notifier interface {
	DeliverPulse(ctx context.Context, recipient string, appName string, pulse domain.Pulse) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
