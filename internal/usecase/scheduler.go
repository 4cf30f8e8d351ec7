package usecase

import (
	"context"
	"log/slog"
	"time"

	"ReviewPulse/internal/ports"
)

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver        ports.Scheduler
	pipeline      *Pipeline
	subscriptions []Subscription
	logger        *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, subscriptions []Subscription, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		driver:        driver,
		pipeline:      pipeline,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Start registers the recurring job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.RunAll(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// RunAll processes every subscription once. A failed subscription is logged
// and does not block the others.
func (s *Scheduler) RunAll(ctx context.Context, trigger time.Time) {
	for _, sub := range s.subscriptions {
		if err := s.pipeline.ProcessSubscription(ctx, sub, trigger); err != nil {
			s.logger.Error("subscription run failed", "app", sub.Name, "error", err)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
