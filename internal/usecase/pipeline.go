package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ReviewPulse/internal/cleaning"
	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
	"ReviewPulse/internal/source"
	"ReviewPulse/internal/synthesis"
	"ReviewPulse/internal/themes"
)

// Subscription describes one app whose reviews get summarized per run.
type Subscription struct {
	Name             string
	Store            string
	AppID            string
	Email            string
	Weeks            int
	ExcludeLastDays  int
	SamplesPerRating int
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Registry   *source.Registry
	Deduper    *cleaning.Deduper
	Themes     *themes.Extractor
	Synthesis  *synthesis.Engine
	Repository ports.ReviewRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the fetch-clean-analyze-deliver workflow.
type Pipeline struct {
	registry   *source.Registry
	deduper    *cleaning.Deduper
	themes     *themes.Extractor
	synthesis  *synthesis.Engine
	repository ports.ReviewRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:   deps.Registry,
		deduper:    deps.Deduper,
		themes:     deps.Themes,
		synthesis:  deps.Synthesis,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// ProcessSubscription runs the full workflow for one subscription. Analysis
// stages degrade rather than fail; an error only reports infrastructure
// problems (fetch, storage, delivery).
func (p *Pipeline) ProcessSubscription(ctx context.Context, sub Subscription, now time.Time) error {
	if p.registry == nil || p.themes == nil || p.synthesis == nil {
		return fmt.Errorf("pipeline is not fully wired")
	}

	start, end := batchWindow(now, sub.Weeks, sub.ExcludeLastDays)
	logger := p.logger.With("app", sub.Name, "start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))

	extractor, err := p.registry.Resolve(sub.Store)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", sub.Name, err)
	}

	fetched, err := extractor.Fetch(ctx, ports.FetchRequest{
		AppID:            sub.AppID,
		StartDate:        start,
		EndDate:          end,
		SamplesPerRating: sub.SamplesPerRating,
	})
	if err != nil {
		return fmt.Errorf("fetch reviews for %s: %w", sub.Name, err)
	}
	logger.Info("fetched reviews", "count", len(fetched))

	cleaned, redacted := p.cleanReviews(fetched)
	logger.Info("cleaned reviews", "kept", len(cleaned), "redacted", redacted)

	if p.deduper != nil {
		before := len(cleaned)
		cleaned = p.deduper.Deduplicate(cleaned)
		logger.Info("deduplicated reviews", "kept", len(cleaned), "dropped", before-len(cleaned))
	}

	cleaned, err = p.skipStored(ctx, cleaned)
	if err != nil {
		return fmt.Errorf("check stored reviews for %s: %w", sub.Name, err)
	}

	aggregated := p.themes.Process(ctx, cleaned, start, end)
	logger.Info("extracted themes", "count", len(aggregated))

	pulse := p.synthesis.Synthesize(ctx, aggregated, sub.Name)
	logger.Info("synthesized pulse", "title", pulse.Title, "words", pulse.WordCount())

	if p.repository != nil {
		if err := p.repository.SaveReviews(ctx, sub.AppID, cleaned); err != nil {
			return fmt.Errorf("save reviews for %s: %w", sub.Name, err)
		}
		if err := p.repository.SaveThemes(ctx, sub.AppID, start, aggregated); err != nil {
			return fmt.Errorf("save themes for %s: %w", sub.Name, err)
		}
		if err := p.repository.SavePulse(ctx, sub.AppID, start, pulse); err != nil {
			return fmt.Errorf("save pulse for %s: %w", sub.Name, err)
		}
	}

	if p.notifier != nil && sub.Email != "" {
		if err := p.notifier.DeliverPulse(ctx, sub.Email, sub.Name, pulse); err != nil {
			return fmt.Errorf("deliver pulse for %s: %w", sub.Name, err)
		}
		logger.Info("delivered pulse", "recipient", sub.Email)
	}

	return nil
}

// cleanReviews scrubs each review body and drops reviews whose cleaned body
// is empty. The second return is how many reviews had PII redacted.
func (p *Pipeline) cleanReviews(reviews []domain.Review) ([]domain.Review, int) {
	var kept []domain.Review
	redacted := 0

	for _, review := range reviews {
		text, hadPII := cleaning.CleanAndScrub(review.Text)
		if hadPII {
			redacted++
		}
		if text == "" {
			continue
		}
		kept = append(kept, review.WithText(text))
	}

	return kept, redacted
}

// skipStored removes reviews whose hashes are already persisted so reruns do
// not reprocess the same content.
func (p *Pipeline) skipStored(ctx context.Context, reviews []domain.Review) ([]domain.Review, error) {
	if p.repository == nil || len(reviews) == 0 {
		return reviews, nil
	}

	hashes := make([]string, len(reviews))
	for i, review := range reviews {
		hashes[i] = review.Hash()
	}

	existing, err := p.repository.ExistingHashes(ctx, hashes)
	if err != nil {
		return nil, err
	}

	var fresh []domain.Review
	for _, review := range reviews {
		if existing[review.Hash()] {
			continue
		}
		fresh = append(fresh, review)
	}

	return fresh, nil
}

// batchWindow derives the analysis range: the end backs off excludeLastDays
// from now (recent reviews are often still being edited), the start reaches
// back the requested number of weeks.
func batchWindow(now time.Time, weeks, excludeLastDays int) (time.Time, time.Time) {
	if weeks <= 0 {
		weeks = 1
	}
	if excludeLastDays < 0 {
		excludeLastDays = 0
	}

	end := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -excludeLastDays)
	start := end.AddDate(0, 0, -7*weeks)
	return start, end
}
