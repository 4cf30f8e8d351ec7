package domain

import "time"

// ThemeWindow is one theme surfaced inside one calendar-week window.
type ThemeWindow struct {
	Theme           string
	KeyPoints       []string
	CandidateQuotes []string
	WeekStart       time.Time
	WeekEnd         time.Time
}

// AggregatedTheme is a theme merged across windows. Frequency counts the
// distinct windows the theme appeared in.
type AggregatedTheme struct {
	Theme           string
	KeyPoints       []string
	CandidateQuotes []string
	Frequency       int
}
