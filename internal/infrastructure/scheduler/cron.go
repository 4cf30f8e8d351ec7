// Package scheduler drives recurring pipeline runs from a cron expression.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ReviewPulse/internal/ports"
)

// CronScheduler runs jobs on a standard five-field cron expression.
type CronScheduler struct {
	spec     string
	location *time.Location
	runner   *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler; a nil location means UTC.
func NewCronScheduler(spec string, location *time.Location) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location}
}

// Start registers the job and begins the cron loop. The job also stops when
// the context is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.runner != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.location))
	if _, err := runner.AddFunc(c.spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now().In(c.location))
	}); err != nil {
		return fmt.Errorf("register cron job %q: %w", c.spec, err)
	}

	c.runner = runner
	runner.Start()

	go func() {
		<-ctx.Done()
		runner.Stop()
	}()

	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.runner == nil {
		return nil
	}

	stopCtx := c.runner.Stop()
	c.runner = nil

	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
