package themes

import (
	"sort"
	"strings"

	"ReviewPulse/internal/domain"
)

const (
	maxAggregatedPoints = 5
	maxAggregatedQuotes = 5

	// Quotes shorter than this are too trivial to carry into a summary.
	minQuoteLength = 16

	minPointLength = 4
)

// Aggregate merges window-level themes by case-insensitive name. The most
// frequent literal spelling becomes the display name, key points and quotes
// are unioned and deduplicated, and frequency counts the distinct windows a
// theme appeared in. Grouping is commutative, so input order only affects
// which spelling wins a tie.
func Aggregate(windows []domain.ThemeWindow, maxTotal int) []domain.AggregatedTheme {
	type group struct {
		members []domain.ThemeWindow
	}

	groups := map[string]*group{}
	var order []string

	for _, w := range windows {
		key := strings.ToLower(strings.TrimSpace(w.Theme))
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, w)
	}

	aggregated := make([]domain.AggregatedTheme, 0, len(groups))
	for _, key := range order {
		g := groups[key]

		weeks := map[string]struct{}{}
		var points, quotes []string
		for _, m := range g.members {
			weeks[m.WeekStart.Format("2006-01-02")] = struct{}{}
			points = append(points, m.KeyPoints...)
			quotes = append(quotes, m.CandidateQuotes...)
		}

		aggregated = append(aggregated, domain.AggregatedTheme{
			Theme:           canonicalName(g.members),
			KeyPoints:       dedupeStrings(points, minPointLength, maxAggregatedPoints),
			CandidateQuotes: dedupeStrings(quotes, minQuoteLength, maxAggregatedQuotes),
			Frequency:       len(weeks),
		})
	}

	sort.SliceStable(aggregated, func(i, j int) bool {
		a, b := aggregated[i], aggregated[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if len(a.KeyPoints) != len(b.KeyPoints) {
			return len(a.KeyPoints) > len(b.KeyPoints)
		}
		return len(a.CandidateQuotes) > len(b.CandidateQuotes)
	})

	if maxTotal > 0 && len(aggregated) > maxTotal {
		aggregated = aggregated[:maxTotal]
	}
	return aggregated
}

// canonicalName picks the most frequent literal spelling inside a group;
// ties go to the earliest spelling seen.
func canonicalName(members []domain.ThemeWindow) string {
	counts := map[string]int{}
	var order []string
	for _, m := range members {
		if _, ok := counts[m.Theme]; !ok {
			order = append(order, m.Theme)
		}
		counts[m.Theme]++
	}

	best := ""
	bestCount := 0
	for _, name := range order {
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}

// dedupeStrings removes case-insensitive duplicates preserving first
// occurrence, drops entries at or below minLen runes, and caps the result.
func dedupeStrings(values []string, minLen, max int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		folded := strings.ToLower(v)
		if len([]rune(folded)) < minLen {
			continue
		}
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
