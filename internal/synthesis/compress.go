package synthesis

import (
	"strings"

	"ReviewPulse/internal/domain"
)

// Field caps for the two compression passes. The second pass is tighter
// across the board; there is no third pass, so a pulse can legitimately end
// a run still over budget (accepted soft limit).
const (
	pass1TitleChars    = 60
	pass1OverviewWords = 40
	pass1NameChars     = 30
	pass1SummaryWords  = 20
	pass1QuoteWords    = 15

	pass2TitleChars    = 50
	pass2OverviewWords = 30
	pass2NameChars     = 25
	pass2SummaryWords  = 15
	pass2QuoteWords    = 12
	pass2ActionWords   = 10
)

// enforceBudget applies staged compression only when the pulse exceeds the
// word budget. Each pass only ever shortens content.
func (e *Engine) enforceBudget(pulse domain.Pulse) domain.Pulse {
	words := pulse.WordCount()
	if words <= e.cfg.WordBudget {
		return pulse
	}

	e.logger.Info("pulse over budget, compressing", "words", words, "budget", e.cfg.WordBudget)
	compressed := e.compressPulse(pulse)

	if again := compressed.WordCount(); again > e.cfg.WordBudget {
		e.logger.Warn("pulse still over budget, compressing aggressively", "words", again)
		compressed = e.aggressiveCompress(compressed)
	}

	return compressed
}

// compressPulse is the first pass: trim the title, the overview, and each
// theme summary. Quotes are only shortened if the result is still over
// budget afterwards.
func (e *Engine) compressPulse(pulse domain.Pulse) domain.Pulse {
	compressed := domain.Pulse{
		Title:    truncateRunes(pulse.Title, pass1TitleChars),
		Overview: truncateWords(pulse.Overview, pass1OverviewWords),
		Quotes:   head(pulse.Quotes, e.cfg.MaxQuotes),
		Actions:  head(pulse.Actions, e.cfg.MaxActions),
	}

	for _, theme := range head(pulse.Themes, e.cfg.MaxThemes) {
		compressed.Themes = append(compressed.Themes, domain.ThemeSummary{
			Name:    truncateRunes(theme.Name, pass1NameChars),
			Summary: truncateWords(theme.Summary, pass1SummaryWords),
		})
	}

	if compressed.WordCount() > e.cfg.WordBudget {
		for i, quote := range compressed.Quotes {
			compressed.Quotes[i] = truncateWords(quote, pass1QuoteWords)
		}
	}

	return compressed
}

// aggressiveCompress is the second and final pass.
func (e *Engine) aggressiveCompress(pulse domain.Pulse) domain.Pulse {
	compressed := domain.Pulse{
		Title:    truncateRunes(pulse.Title, pass2TitleChars),
		Overview: truncateWords(pulse.Overview, pass2OverviewWords),
	}

	for _, theme := range head(pulse.Themes, e.cfg.MaxThemes) {
		compressed.Themes = append(compressed.Themes, domain.ThemeSummary{
			Name:    truncateRunes(theme.Name, pass2NameChars),
			Summary: truncateWords(theme.Summary, pass2SummaryWords),
		})
	}
	for _, quote := range head(pulse.Quotes, e.cfg.MaxQuotes) {
		compressed.Quotes = append(compressed.Quotes, truncateWords(quote, pass2QuoteWords))
	}
	for _, action := range head(pulse.Actions, e.cfg.MaxActions) {
		compressed.Actions = append(compressed.Actions, truncateWords(action, pass2ActionWords))
	}

	return compressed
}

// truncateWords cuts text at a word boundary and marks the cut with an
// ellipsis fused to the last word so the word count never grows.
func truncateWords(text string, target int) string {
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) <= target {
		return text
	}

	result := strings.Join(words[:target], " ")
	return strings.TrimRight(result, ".,;:") + "..."
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
