package cleaning

import (
	"errors"
	"testing"
	"time"

	"ReviewPulse/internal/domain"
)

func makeReview(text string, day int) domain.Review {
	return domain.Review{
		Rating: 4,
		Text:   text,
		Date:   time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewDeduperValidatesThreshold(t *testing.T) {
	t.Parallel()

	for _, threshold := range []int{-1, 101} {
		_, err := NewDeduper(threshold)
		var cfgErr *domain.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("threshold %d: expected ConfigError, got %v", threshold, err)
		}
	}

	if _, err := NewDeduper(90); err != nil {
		t.Fatalf("valid threshold rejected: %v", err)
	}
}

func TestDeduplicateNearDuplicates(t *testing.T) {
	t.Parallel()

	deduper, err := NewDeduper(90)
	if err != nil {
		t.Fatalf("NewDeduper: %v", err)
	}

	reviews := []domain.Review{
		makeReview("Great app with many features!", 1),
		makeReview("Great app with many awesome features.", 2),
	}

	kept := deduper.Deduplicate(reviews)
	if len(kept) != 1 {
		t.Fatalf("expected 1 review kept, got %d", len(kept))
	}
	if kept[0].Text != reviews[0].Text {
		t.Fatalf("expected first occurrence kept, got %q", kept[0].Text)
	}
}

func TestDeduplicateKeepsDistinctReviews(t *testing.T) {
	t.Parallel()

	deduper, err := NewDeduper(90)
	if err != nil {
		t.Fatalf("NewDeduper: %v", err)
	}

	reviews := []domain.Review{
		makeReview("The battery drains far too quickly on standby.", 1),
		makeReview("Love the new dark mode, very easy on the eyes.", 2),
		makeReview("Checkout keeps failing with an unknown error.", 3),
	}

	kept := deduper.Deduplicate(reviews)
	if len(kept) != 3 {
		t.Fatalf("expected all 3 reviews kept, got %d", len(kept))
	}
}

func TestDeduplicateDropsEmptyCleanedText(t *testing.T) {
	t.Parallel()

	deduper, err := NewDeduper(90)
	if err != nil {
		t.Fatalf("NewDeduper: %v", err)
	}

	reviews := []domain.Review{
		makeReview("\U0001F604\U0001F604", 1),
		makeReview("Actually useful feedback here.", 2),
	}

	kept := deduper.Deduplicate(reviews)
	if len(kept) != 1 {
		t.Fatalf("expected 1 review kept, got %d", len(kept))
	}
	if kept[0].Text != reviews[1].Text {
		t.Fatalf("unexpected survivor: %q", kept[0].Text)
	}
}

func TestDeduplicateMonotoneInThreshold(t *testing.T) {
	t.Parallel()

	reviews := []domain.Review{
		makeReview("Great app with many features!", 1),
		makeReview("Great app with many awesome features.", 2),
		makeReview("The battery drains far too quickly on standby.", 3),
		makeReview("battery drains way too fast on standby", 4),
	}

	var previous int
	for _, threshold := range []int{50, 70, 90, 100} {
		deduper, err := NewDeduper(threshold)
		if err != nil {
			t.Fatalf("NewDeduper(%d): %v", threshold, err)
		}

		kept := len(deduper.Deduplicate(reviews))
		if kept > len(reviews) {
			t.Fatalf("threshold %d: dedupe grew the input to %d", threshold, kept)
		}
		if kept < previous {
			t.Fatalf("raising the threshold shrank output: %d then %d", previous, kept)
		}
		previous = kept
	}
}

func TestSimilarityIdenticalAndDisjoint(t *testing.T) {
	t.Parallel()

	if got := Similarity("great app", "great app"); got != 100 {
		t.Fatalf("identical texts scored %d", got)
	}
	if got := Similarity("battery drains overnight", "checkout button missing"); got >= 90 {
		t.Fatalf("disjoint texts scored %d, want below threshold", got)
	}
	if got := Similarity("", ""); got != 100 {
		t.Fatalf("empty texts scored %d", got)
	}
	if got := Similarity("something", ""); got != 0 {
		t.Fatalf("half-empty comparison scored %d", got)
	}
}

func TestSimilarityIgnoresWordOrder(t *testing.T) {
	t.Parallel()

	a := "the app is really great"
	b := "really great is the app"
	if got := Similarity(a, b); got != 100 {
		t.Fatalf("reordered words scored %d, want 100", got)
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	t.Parallel()

	a := "Great app with many features!"
	b := "Great app with many awesome features."
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatalf("similarity is not symmetric: %d vs %d", Similarity(a, b), Similarity(b, a))
	}
	if got := Similarity(a, b); got < 90 {
		t.Fatalf("near-duplicate pair scored %d, want >= 90", got)
	}
}
