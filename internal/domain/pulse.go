package domain

import "strings"

// ThemeSummary is one named theme inside a Pulse with a one/two-sentence summary.
type ThemeSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Pulse is the bounded executive summary produced once per processing run.
type Pulse struct {
	Title    string         `json:"title"`
	Overview string         `json:"overview"`
	Themes   []ThemeSummary `json:"themes"`
	Quotes   []string       `json:"quotes"`
	Actions  []string       `json:"actions"`
}

// WordCount sums the words across every text field of the pulse.
func (p Pulse) WordCount() int {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString(" ")
	b.WriteString(p.Overview)
	for _, t := range p.Themes {
		b.WriteString(" ")
		b.WriteString(t.Name)
		b.WriteString(" ")
		b.WriteString(t.Summary)
	}
	for _, q := range p.Quotes {
		b.WriteString(" ")
		b.WriteString(q)
	}
	for _, a := range p.Actions {
		b.WriteString(" ")
		b.WriteString(a)
	}
	return len(strings.Fields(b.String()))
}
