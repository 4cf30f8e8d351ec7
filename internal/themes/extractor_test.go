package themes

import (
	"context"
	"errors"
	"testing"
	"time"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/llm"
	"ReviewPulse/internal/ports"
)

// scriptedBackend replays canned responses, one per call.
type scriptedBackend struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedBackend) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	idx := s.calls
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func newTestExtractor(t *testing.T, backend ports.ChatBackend) *Extractor {
	t.Helper()

	cfg := llm.DefaultConfig()
	cfg.Backoff = time.Millisecond

	orch, err := llm.New(backend, cfg, nil)
	if err != nil {
		t.Fatalf("llm.New: %v", err)
	}

	extractor, err := NewExtractor(orch, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return extractor
}

func reviewOn(text string, date time.Time) domain.Review {
	return domain.Review{Rating: 3, Text: text, Date: date}
}

func TestBucketByWeek(t *testing.T) {
	t.Parallel()

	// 2026-03-02 is a Monday; 2026-03-09 starts the next ISO week.
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	reviews := []domain.Review{
		reviewOn("week one early", time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)),
		reviewOn("week one late", time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)),
		reviewOn("week two", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)),
		reviewOn("outside range", time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)),
	}

	windows := bucketByWeek(reviews, start, end)
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}

	first := windows[0]
	if !first.start.Equal(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first window start: %v", first.start)
	}
	if !first.end.Equal(time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first window end: %v", first.end)
	}
	if len(first.reviews) != 2 {
		t.Fatalf("first window reviews: %d", len(first.reviews))
	}
	if first.reviews[0].Text != "week one late" {
		t.Fatalf("window reviews not date-descending: %q first", first.reviews[0].Text)
	}

	second := windows[1]
	if !second.start.Equal(time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("second window start: %v", second.start)
	}
	if len(second.reviews) != 1 {
		t.Fatalf("second window reviews: %d", len(second.reviews))
	}
}

func TestProcessExtractsAndAggregates(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []string{
		`[{"theme": "Performance", "key_points": ["App is sluggish on launch"], "candidate_quotes": ["takes forever to open the app"]}]`,
	}}
	extractor := newTestExtractor(t, backend)

	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	reviews := []domain.Review{
		reviewOn("slow startup lately", start.AddDate(0, 0, 1)),
	}

	aggregated := extractor.Process(context.Background(), reviews, start, end)
	if len(aggregated) != 1 {
		t.Fatalf("expected 1 aggregated theme, got %d", len(aggregated))
	}
	theme := aggregated[0]
	if theme.Theme != "Performance" {
		t.Fatalf("unexpected theme name: %q", theme.Theme)
	}
	if theme.Frequency != 1 {
		t.Fatalf("unexpected frequency: %d", theme.Frequency)
	}
	if len(theme.KeyPoints) != 1 || len(theme.CandidateQuotes) != 1 {
		t.Fatalf("unexpected content: %+v", theme)
	}
	if backend.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", backend.calls)
	}
}

func TestProcessSurvivesFailedWindow(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{err: errors.New("backend down")}
	extractor := newTestExtractor(t, backend)

	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	reviews := []domain.Review{
		reviewOn("anything at all", start.AddDate(0, 0, 2)),
	}

	aggregated := extractor.Process(context.Background(), reviews, start, end)
	if len(aggregated) != 0 {
		t.Fatalf("expected no themes from failed window, got %d", len(aggregated))
	}
}

func TestParseThemesToleratesResponseShapes(t *testing.T) {
	t.Parallel()

	extractor := newTestExtractor(t, &scriptedBackend{responses: []string{"{}"}})
	weekStart := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 6)

	responses := []string{
		`[{"theme": "Sync", "key_points": ["data loss on sync"]}]`,
		`{"themes": [{"theme": "Sync", "key_points": ["data loss on sync"]}]}`,
		`{"theme": "Sync", "key_points": ["data loss on sync"]}`,
		"```json\n[{\"theme\": \"Sync\", \"key_points\": [\"data loss on sync\"]}]\n```",
	}

	for _, response := range responses {
		themes, err := extractor.parseThemes(response, weekStart, weekEnd)
		if err != nil {
			t.Fatalf("parseThemes(%q): %v", response, err)
		}
		if len(themes) != 1 {
			t.Fatalf("parseThemes(%q): expected 1 theme, got %d", response, len(themes))
		}
		if themes[0].Theme != "Sync" {
			t.Fatalf("unexpected theme: %q", themes[0].Theme)
		}
		if !themes[0].WeekStart.Equal(weekStart) {
			t.Fatalf("week start not stamped: %v", themes[0].WeekStart)
		}
	}
}

func TestParseThemesEnforcesCapsAndContent(t *testing.T) {
	t.Parallel()

	extractor := newTestExtractor(t, &scriptedBackend{responses: []string{"{}"}})
	weekStart := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	response := `[
		{"theme": "Crashes", "key_points": ["p1", "p2", "p3", "p4", "p5", "p6"], "candidate_quotes": ["q1", "q2", "q3", "q4"]},
		{"theme": "", "key_points": ["orphan point"]},
		{"theme": "Empty Theme"}
	]`

	themes, err := extractor.parseThemes(response, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("parseThemes: %v", err)
	}
	if len(themes) != 1 {
		t.Fatalf("expected only the populated theme, got %d", len(themes))
	}
	if len(themes[0].KeyPoints) != 4 {
		t.Fatalf("key points not capped: %d", len(themes[0].KeyPoints))
	}
	if len(themes[0].CandidateQuotes) != 3 {
		t.Fatalf("quotes not capped: %d", len(themes[0].CandidateQuotes))
	}
}
