// Package themes partitions reviews into calendar-week windows, asks the
// model for themes per window, and merges them across windows.
package themes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/llm"
)

const systemPrompt = "You are a helpful assistant that analyzes user reviews and identifies themes. Always respond with valid JSON only."

// Config bounds one extraction run.
type Config struct {
	MaxPerWindow        int
	MaxTotal            int
	MaxReviewsPerWindow int
	MaxKeyPoints        int
	MaxQuotes           int
	PromptMaxTokens     int
}

// DefaultConfig matches the production limits.
func DefaultConfig() Config {
	return Config{
		MaxPerWindow:        5,
		MaxTotal:            5,
		MaxReviewsPerWindow: 50,
		MaxKeyPoints:        4,
		MaxQuotes:           3,
		PromptMaxTokens:     2000,
	}
}

// Extractor identifies themes per week and aggregates them. It is
// state-free across calls except for the orchestrator dependency.
type Extractor struct {
	orch   *llm.Orchestrator
	cfg    Config
	logger *slog.Logger
}

// NewExtractor wires the shared orchestrator.
func NewExtractor(orch *llm.Orchestrator, cfg Config, logger *slog.Logger) (*Extractor, error) {
	if orch == nil {
		return nil, &domain.ConfigError{Msg: "orchestrator is required"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{orch: orch, cfg: cfg, logger: logger}, nil
}

// Process runs the full window pipeline: bucket reviews into ISO weeks,
// extract themes per window, and aggregate across windows. A failed window
// contributes zero themes instead of aborting the run.
func (e *Extractor) Process(ctx context.Context, reviews []domain.Review, start, end time.Time) []domain.AggregatedTheme {
	windows := bucketByWeek(reviews, start, end)
	e.logger.Info("bucketed reviews into windows", "reviews", len(reviews), "windows", len(windows))

	var all []domain.ThemeWindow
	for _, w := range windows {
		themes := e.extractWindow(ctx, w)
		all = append(all, themes...)
	}

	aggregated := Aggregate(all, e.cfg.MaxTotal)
	e.logger.Info("aggregated themes", "window_themes", len(all), "aggregated", len(aggregated))
	return aggregated
}

// window is one ISO calendar week of reviews, newest first.
type window struct {
	start   time.Time
	end     time.Time
	reviews []domain.Review
}

// bucketByWeek partitions reviews into ISO calendar weeks. Reviews outside
// [start, end] are excluded. Windows come back in ascending week order and
// each window's reviews are sorted by date descending.
func bucketByWeek(reviews []domain.Review, start, end time.Time) []window {
	buckets := map[string]*window{}

	for _, review := range reviews {
		day := review.Date
		if day.Before(start) || day.After(end) {
			continue
		}

		year, wk := day.ISOWeek()
		key := fmt.Sprintf("%04d-W%02d", year, wk)

		b, ok := buckets[key]
		if !ok {
			monday := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
			monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
			b = &window{start: monday, end: monday.AddDate(0, 0, 6)}
			buckets[key] = b
		}
		b.reviews = append(b.reviews, review)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	windows := make([]window, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		sort.SliceStable(b.reviews, func(i, j int) bool {
			return b.reviews[i].Date.After(b.reviews[j].Date)
		})
		windows = append(windows, *b)
	}
	return windows
}

// extractWindow asks the model for up to MaxPerWindow themes for one week.
// Backend and parse failures downgrade to an empty result with a warning;
// one bad window must not abort the run.
func (e *Extractor) extractWindow(ctx context.Context, w window) []domain.ThemeWindow {
	if len(w.reviews) == 0 {
		return nil
	}

	prompt := e.buildPrompt(w.reviews)

	response, err := e.orch.CompleteJSON(ctx, systemPrompt, prompt, e.cfg.PromptMaxTokens)
	if err != nil {
		e.logger.Warn("theme extraction failed for window",
			"week_start", w.start.Format("2006-01-02"), "error", err)
		return nil
	}

	themes, err := e.parseThemes(response, w.start, w.end)
	if err != nil {
		e.logger.Warn("theme response unparseable for window",
			"week_start", w.start.Format("2006-01-02"), "error", err)
		return nil
	}

	if len(themes) > e.cfg.MaxPerWindow {
		themes = themes[:e.cfg.MaxPerWindow]
	}

	e.logger.Debug("identified themes for window",
		"week_start", w.start.Format("2006-01-02"), "themes", len(themes))
	return themes
}

func (e *Extractor) buildPrompt(reviews []domain.Review) string {
	limit := e.cfg.MaxReviewsPerWindow
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}

	var lines []string
	for i, review := range reviews {
		lines = append(lines, fmt.Sprintf("Review %d (%d/5): %s", i+1, review.Rating, review.Text))
	}
	reviewsText := strings.Join(lines, "\n\n")

	return fmt.Sprintf(`You are analyzing %d app reviews to identify common themes.

REVIEWS:
%s

TASK:
Identify up to %d main themes from these reviews. For each theme:
1. Provide a concise theme name (2-4 words)
2. List 2-4 key points that summarize the theme
3. Select 2-3 representative quotes from the reviews

RULES:
- Keep everything concise and factual
- NO marketing language or fluff
- Focus on user experiences and feedback
- Themes should be specific and actionable
- Quotes must be exact from the reviews (or very close paraphrases)

OUTPUT FORMAT (JSON array):
[
  {"theme": "Theme name", "key_points": ["Point 1", "Point 2"], "candidate_quotes": ["Quote 1", "Quote 2"]}
]

Return ONLY valid JSON. No markdown, no explanations, just the JSON array.`,
		len(reviews), reviewsText, e.cfg.MaxPerWindow)
}

// parseThemes decodes the model payload tolerating the shapes models
// actually return: a bare array, an object wrapping the array under a key,
// or a single theme object.
func (e *Extractor) parseThemes(response string, weekStart, weekEnd time.Time) ([]domain.ThemeWindow, error) {
	value, err := llm.ParseJSON(response)
	if err != nil {
		return nil, err
	}

	var themes []domain.ThemeWindow
	for _, item := range normalizeThemeList(value) {
		name := strings.TrimSpace(stringField(item, "theme"))
		if name == "" {
			continue
		}

		points := stringList(item["key_points"])
		quotes := stringList(item["candidate_quotes"])
		if len(points) == 0 && len(quotes) == 0 {
			continue
		}

		if len(points) > e.cfg.MaxKeyPoints {
			points = points[:e.cfg.MaxKeyPoints]
		}
		if len(quotes) > e.cfg.MaxQuotes {
			quotes = quotes[:e.cfg.MaxQuotes]
		}

		themes = append(themes, domain.ThemeWindow{
			Theme:           name,
			KeyPoints:       points,
			CandidateQuotes: quotes,
			WeekStart:       weekStart,
			WeekEnd:         weekEnd,
		})
	}
	return themes, nil
}

// normalizeThemeList is the single place the duck-typed response shapes are
// folded into a flat object list: array first, then a wrapping key, then a
// single object, falling back to empty on total mismatch.
func normalizeThemeList(value any) []map[string]any {
	switch v := value.(type) {
	case []any:
		return objectList(v)
	case map[string]any:
		if _, ok := v["theme"]; ok {
			return []map[string]any{v}
		}
		if wrapped, ok := v["themes"].([]any); ok {
			return objectList(wrapped)
		}
		for _, inner := range v {
			if list, ok := inner.([]any); ok {
				return objectList(list)
			}
		}
	}
	return nil
}

func objectList(items []any) []map[string]any {
	var out []map[string]any
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// stringList accepts a JSON array of strings or a bare string.
func stringList(value any) []string {
	var out []string
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
