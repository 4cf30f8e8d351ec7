// Package app wires configuration into the runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"ReviewPulse/internal/cleaning"
	"ReviewPulse/internal/config"
	"ReviewPulse/internal/infrastructure/email"
	"ReviewPulse/internal/infrastructure/groq"
	"ReviewPulse/internal/infrastructure/playstore"
	"ReviewPulse/internal/infrastructure/scheduler"
	"ReviewPulse/internal/infrastructure/storage"
	"ReviewPulse/internal/llm"
	"ReviewPulse/internal/logging"
	"ReviewPulse/internal/ports"
	"ReviewPulse/internal/source"
	"ReviewPulse/internal/synthesis"
	"ReviewPulse/internal/themes"
	"ReviewPulse/internal/usecase"
)

// Local cap below the Groq free-tier request limit.
const groqRequestsPerMinute = 30

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := source.NewRegistry()
	registry.Register(playstore.NewExtractor(nil))

	backend, err := groq.NewClient(cfg.LLM.APIKey, cfg.LLM.Endpoint, groqRequestsPerMinute)
	if err != nil {
		return nil, fmt.Errorf("groq client: %w", err)
	}

	orch, err := llm.New(backend, llm.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxRetries:  cfg.LLM.MaxRetries,
		Backoff:     time.Duration(cfg.LLM.BackoffSeconds * float64(time.Second)),
	}, baseLogger.With("component", "llm"))
	if err != nil {
		return nil, fmt.Errorf("llm orchestrator: %w", err)
	}

	themesCfg := themes.DefaultConfig()
	themesCfg.MaxPerWindow = cfg.Themes.MaxPerWindow
	themesCfg.MaxTotal = cfg.Themes.MaxTotal
	themesCfg.MaxReviewsPerWindow = cfg.Themes.MaxReviewsPerWindow
	themesCfg.PromptMaxTokens = cfg.LLM.MaxTokens

	extractor, err := themes.NewExtractor(orch, themesCfg, baseLogger.With("component", "themes"))
	if err != nil {
		return nil, fmt.Errorf("theme extractor: %w", err)
	}

	synthCfg := synthesis.DefaultConfig()
	synthCfg.MaxThemes = cfg.Synthesis.MaxThemes
	synthCfg.MaxQuotes = cfg.Synthesis.MaxQuotes
	synthCfg.MaxActions = cfg.Synthesis.MaxActions
	synthCfg.WordBudget = cfg.Synthesis.WordBudget

	engine, err := synthesis.NewEngine(orch, synthCfg, baseLogger.With("component", "synthesis"))
	if err != nil {
		return nil, fmt.Errorf("synthesis engine: %w", err)
	}

	deduper, err := cleaning.NewDeduper(cfg.Cleaning.DuplicateThreshold)
	if err != nil {
		return nil, fmt.Errorf("deduper: %w", err)
	}

	var db *sql.DB
	var repository ports.ReviewRepository
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Email.Host != "" && cfg.Email.Username != "" {
		notifier = email.NewNotifier(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
		)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:   registry,
		Deduper:    deduper,
		Themes:     extractor,
		Synthesis:  engine,
		Repository: repository,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	subscriptions, err := buildSubscriptions(cfg.Subscriptions)
	if err != nil {
		return nil, err
	}

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, subscriptions, baseLogger.With("component", "scheduler"))

	return &Application{cfg: cfg, logger: baseLogger, scheduler: sched, db: db}, nil
}

// RunOnce processes every subscription immediately.
func (a *Application) RunOnce(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	a.scheduler.RunAll(ctx, now)
	return nil
}

// Serve starts the cron loop and blocks until the context is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func buildSubscriptions(configs []config.SubscriptionConfig) ([]usecase.Subscription, error) {
	var subscriptions []usecase.Subscription
	for _, sub := range configs {
		store := sub.Store
		if store == "" {
			store = "playstore"
		}

		appID, err := playstore.ParseAppID(sub.URL)
		if err != nil {
			return nil, fmt.Errorf("subscription %s: %w", sub.Name, err)
		}

		subscriptions = append(subscriptions, usecase.Subscription{
			Name:             sub.Name,
			Store:            store,
			AppID:            appID,
			Email:            sub.Email,
			Weeks:            sub.Weeks,
			ExcludeLastDays:  sub.ExcludeLastDays,
			SamplesPerRating: sub.SamplesPerRating,
		})
	}
	return subscriptions, nil
}
