// Package synthesis turns aggregated themes into a bounded executive pulse.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/llm"
)

const systemPrompt = "You are a helpful assistant that creates executive summaries. Always respond with valid JSON only."

// Config bounds the synthesized pulse.
type Config struct {
	MaxThemes       int
	MaxQuotes       int
	MaxActions      int
	WordBudget      int
	PromptMaxTokens int
}

// DefaultConfig matches the production limits.
func DefaultConfig() Config {
	return Config{
		MaxThemes:       3,
		MaxQuotes:       3,
		MaxActions:      3,
		WordBudget:      250,
		PromptMaxTokens: 1000,
	}
}

// Engine synthesizes the weekly pulse from aggregated themes.
type Engine struct {
	orch   *llm.Orchestrator
	cfg    Config
	logger *slog.Logger
}

// NewEngine wires the shared orchestrator.
func NewEngine(orch *llm.Orchestrator, cfg Config, logger *slog.Logger) (*Engine, error) {
	if orch == nil {
		return nil, &domain.ConfigError{Msg: "orchestrator is required"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{orch: orch, cfg: cfg, logger: logger}, nil
}

// Synthesize produces one pulse per run. An empty theme list returns a
// fixed placeholder without calling the model; generation or parse failures
// fall back to a deterministic pulse built straight from the themes. Either
// way the caller gets a usable pulse, never an error.
func (e *Engine) Synthesize(ctx context.Context, themes []domain.AggregatedTheme, appName string) domain.Pulse {
	if len(themes) == 0 {
		e.logger.Warn("no themes provided for synthesis")
		return domain.Pulse{
			Title:    "No Themes Identified",
			Overview: "No significant themes were identified from the reviews.",
		}
	}

	top := selectTop(themes, e.cfg.MaxThemes)

	raw, err := e.orch.CompleteJSON(ctx, systemPrompt, e.buildPrompt(top, appName), e.cfg.PromptMaxTokens)
	if err != nil {
		e.logger.Warn("pulse generation failed, using fallback", "error", err)
		return e.fallbackPulse(top)
	}

	pulse, err := e.parsePulse(raw)
	if err != nil {
		e.logger.Warn("pulse response unparseable, using fallback", "error", err)
		return e.fallbackPulse(top)
	}

	pulse = e.enforceBudget(pulse)
	e.logger.Info("synthesized pulse", "title", pulse.Title, "words", pulse.WordCount())
	return pulse
}

// selectTop ranks themes by frequency, then key-point count, then quote
// count, all descending, and keeps the first max.
func selectTop(themes []domain.AggregatedTheme, max int) []domain.AggregatedTheme {
	ranked := make([]domain.AggregatedTheme, len(themes))
	copy(ranked, themes)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if len(a.KeyPoints) != len(b.KeyPoints) {
			return len(a.KeyPoints) > len(b.KeyPoints)
		}
		return len(a.CandidateQuotes) > len(b.CandidateQuotes)
	})

	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

func (e *Engine) buildPrompt(themes []domain.AggregatedTheme, appName string) string {
	var sections []string
	for i, theme := range themes {
		var b strings.Builder
		fmt.Fprintf(&b, "Theme %d: %s\n", i+1, theme.Theme)
		fmt.Fprintf(&b, "  Frequency: %d week(s)\n", theme.Frequency)
		if len(theme.KeyPoints) > 0 {
			fmt.Fprintf(&b, "  Key Points: %s\n", strings.Join(head(theme.KeyPoints, 3), ", "))
		}
		if len(theme.CandidateQuotes) > 0 {
			fmt.Fprintf(&b, "  Sample Quotes: %s\n", strings.Join(head(theme.CandidateQuotes, 2), ", "))
		}
		sections = append(sections, b.String())
	}

	appContext := ""
	if appName != "" {
		appContext = " for " + appName
	}

	return fmt.Sprintf(`You are creating a Weekly Product Pulse%s based on user reviews.

THEMES IDENTIFIED:
%s

TASK:
Create a concise, executive-friendly Weekly Product Pulse that synthesizes these themes.

REQUIREMENTS:
- Total output MUST be <= %d words
- Executive-friendly, neutral tone (no marketing language)
- Focus on actionable insights
- No PII (personal information already removed)
- Be factual and data-driven

OUTPUT FORMAT (JSON):
{
  "title": "Concise title (5-10 words)",
  "overview": "Brief overview (2-3 sentences, ~30-40 words)",
  "themes": [{"name": "Theme name", "summary": "Brief summary (1-2 sentences)"}],
  "quotes": ["Representative quote 1", "Quote 2", "Quote 3"],
  "actions": ["Actionable insight 1", "Action 2", "Action 3"]
}

CONSTRAINTS:
- Maximum %d themes (select most impactful)
- Maximum %d quotes (most representative)
- Maximum %d actions (most actionable)
- Total word count: <= %d words

Return ONLY valid JSON. No markdown, no explanations, just the JSON object.`,
		appContext, strings.Join(sections, "\n"),
		e.cfg.WordBudget, e.cfg.MaxThemes, e.cfg.MaxQuotes, e.cfg.MaxActions, e.cfg.WordBudget)
}

// parsePulse decodes the response and immediately re-applies the hard caps;
// models ignore count instructions often enough that trusting them is not
// an option.
func (e *Engine) parsePulse(raw string) (domain.Pulse, error) {
	value, err := llm.ParseJSON(raw)
	if err != nil {
		return domain.Pulse{}, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return domain.Pulse{}, err
	}

	var pulse domain.Pulse
	if err := json.Unmarshal(encoded, &pulse); err != nil {
		return domain.Pulse{}, &domain.ParseError{Snippet: truncateRunes(raw, 200), Err: err}
	}

	pulse.Themes = head(pulse.Themes, e.cfg.MaxThemes)
	pulse.Quotes = head(pulse.Quotes, e.cfg.MaxQuotes)
	pulse.Actions = head(pulse.Actions, e.cfg.MaxActions)
	return pulse, nil
}

// fallbackPulse builds a deterministic pulse straight from the top themes.
// This path never calls the model and never fails.
func (e *Engine) fallbackPulse(themes []domain.AggregatedTheme) domain.Pulse {
	if len(themes) == 0 {
		return domain.Pulse{
			Title:    "Weekly Product Pulse",
			Overview: "No themes identified this week.",
		}
	}

	var summaries []domain.ThemeSummary
	var quotes []string
	for _, theme := range head(themes, e.cfg.MaxThemes) {
		summary := "No summary available."
		if len(theme.KeyPoints) > 0 {
			summary = strings.Join(head(theme.KeyPoints, 2), ". ")
		}
		summaries = append(summaries, domain.ThemeSummary{Name: theme.Theme, Summary: summary})

		if len(theme.CandidateQuotes) > 0 && len(quotes) < e.cfg.MaxQuotes {
			quotes = append(quotes, theme.CandidateQuotes[0])
		}
	}

	return domain.Pulse{
		Title:    "Weekly Product Pulse",
		Overview: fmt.Sprintf("Identified %d key themes from user reviews.", len(themes)),
		Themes:   summaries,
		Quotes:   quotes,
		Actions:  []string{"Review theme details", "Prioritize improvements", "Monitor trends"},
	}
}

// head returns at most max leading elements.
func head[T any](values []T, max int) []T {
	if max >= 0 && len(values) > max {
		return values[:max]
	}
	return values
}
