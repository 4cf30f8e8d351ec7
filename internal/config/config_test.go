package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REVIEWPULSE_CONFIG", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_MODEL", "")

	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Fatalf("default logging level: %q", cfg.Logging.Level)
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Fatalf("default model: %q", cfg.LLM.Model)
	}
	if cfg.Cleaning.DuplicateThreshold != 90 {
		t.Fatalf("default duplicate threshold: %d", cfg.Cleaning.DuplicateThreshold)
	}
	if cfg.Scheduler.CronExpression != "0 8 * * 1" {
		t.Fatalf("default cron: %q", cfg.Scheduler.CronExpression)
	}
	if cfg.Synthesis.WordBudget != 250 {
		t.Fatalf("default word budget: %d", cfg.Synthesis.WordBudget)
	}
	if cfg.Scheduler.Location() == nil {
		t.Fatal("location must never be nil")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
logging:
  level: debug
llm:
  model: llama-3.3-70b-versatile
  maxRetries: 5
cleaning:
  duplicateThreshold: 85
subscriptions:
  - name: SampleApp
    url: https://play.google.com/store/apps/details?id=com.example.app
    email: owner@example.com
    weeks: 2
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("REVIEWPULSE_CONFIG", path)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("DATABASE_DSN", "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file logging level not applied: %q", cfg.Logging.Level)
	}
	if cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("file model not applied: %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxRetries != 5 {
		t.Fatalf("file retries not applied: %d", cfg.LLM.MaxRetries)
	}
	if cfg.Cleaning.DuplicateThreshold != 85 {
		t.Fatalf("file threshold not applied: %d", cfg.Cleaning.DuplicateThreshold)
	}

	// Untouched sections keep defaults.
	if cfg.Synthesis.MaxThemes != 3 {
		t.Fatalf("default max themes lost: %d", cfg.Synthesis.MaxThemes)
	}

	if len(cfg.Subscriptions) != 1 {
		t.Fatalf("subscriptions not loaded: %d", len(cfg.Subscriptions))
	}
	sub := cfg.Subscriptions[0]
	if sub.Name != "SampleApp" || sub.Weeks != 2 || sub.Email != "owner@example.com" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REVIEWPULSE_CONFIG", "")
	t.Setenv("DATABASE_DSN", "postgres://env/override")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_MODEL", "llama-guard-3-8b")
	t.Setenv("SMTP_USERNAME", "mailer@example.com")
	t.Setenv("SMTP_PASSWORD", "hunter2")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/override" {
		t.Fatalf("dsn override lost: %q", cfg.Database.DSN)
	}
	if cfg.LLM.APIKey != "gsk_test" {
		t.Fatalf("api key override lost")
	}
	if cfg.LLM.Model != "llama-guard-3-8b" {
		t.Fatalf("model override lost: %q", cfg.LLM.Model)
	}
	if cfg.Email.Username != "mailer@example.com" || cfg.Email.Password != "hunter2" {
		t.Fatalf("smtp overrides lost")
	}
}

func TestLoadBadTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scheduler:\n  timezone: Not/AZone\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("REVIEWPULSE_CONFIG", path)

	cfg := Load()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", cfg.Scheduler.Location())
	}
}
