package cleaning

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"ReviewPulse/internal/domain"
)

// DefaultDuplicateThreshold is the similarity score (0-100) at or above
// which a review counts as a near-duplicate of an earlier one.
const DefaultDuplicateThreshold = 90

var nonAlnumExpr = regexp.MustCompile(`[^a-z0-9]+`)

// Deduper suppresses near-duplicate reviews with fuzzy text matching.
type Deduper struct {
	threshold int
}

// NewDeduper validates the threshold before any work starts.
func NewDeduper(threshold int) (*Deduper, error) {
	if threshold < 0 || threshold > 100 {
		return nil, &domain.ConfigError{Msg: "duplicate threshold must be within 0-100"}
	}
	return &Deduper{threshold: threshold}, nil
}

// Deduplicate keeps the first occurrence of each text and drops later
// reviews whose similarity against any kept text reaches the threshold.
// Reviews whose cleaned text is empty are dropped unconditionally. The
// comparison is O(n^2) over the run, which stays bounded at the tens to
// low hundreds of reviews a run handles.
func (d *Deduper) Deduplicate(reviews []domain.Review) []domain.Review {
	unique := make([]domain.Review, 0, len(reviews))
	seen := make([]string, 0, len(reviews))

	for _, review := range reviews {
		text := strings.ToLower(Clean(review.Text))
		if text == "" {
			continue
		}

		duplicate := false
		for _, existing := range seen {
			if Similarity(text, existing) >= d.threshold {
				duplicate = true
				break
			}
		}

		if !duplicate {
			unique = append(unique, review)
			seen = append(seen, text)
		}
	}

	return unique
}

// Similarity scores two texts 0-100 using a token-set ratio: both texts are
// reduced to sorted alphanumeric word sets, and the best Levenshtein ratio
// across the set combinations wins. Word order and repeated phrasing do not
// lower the score; only genuinely new content does.
func Similarity(a, b string) int {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	both, onlyA, onlyB := splitTokenSets(ta, tb)

	base := strings.Join(both, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := editRatio(withA, withB)
	if base != "" {
		if r := editRatio(base, withA); r > best {
			best = r
		}
		if r := editRatio(base, withB); r > best {
			best = r
		}
	}
	return best
}

func tokens(text string) []string {
	cleaned := nonAlnumExpr.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func splitTokenSets(a, b []string) (both, onlyA, onlyB []string) {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	inA := make(map[string]struct{}, len(a))
	for _, t := range a {
		inA[t] = struct{}{}
	}

	for _, t := range a {
		if _, ok := inB[t]; ok {
			both = append(both, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range b {
		if _, ok := inA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	return both, onlyA, onlyB
}

func editRatio(a, b string) int {
	lensum := len([]rune(a)) + len([]rune(b))
	if lensum == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(float64(lensum-dist) / float64(lensum) * 100))
}
