// Package cleaning provides text normalization, PII scrubbing, and fuzzy
// duplicate suppression for raw review text.
package cleaning

import (
	"html"
	"regexp"
	"strings"
)

// LinkPlaceholder replaces every URL-like substring during cleaning.
const LinkPlaceholder = "[link removed]"

var (
	htmlTagExpr = regexp.MustCompile(`<[^>]+>`)

	// Scheme-prefixed or bare known-TLD domains, optionally with a path.
	urlExpr = regexp.MustCompile(`(?i)\b((?:https?://|www\.)\S+|[A-Za-z0-9.-]+\.(?:com|net|org|io|ai|co|in|uk|de|fr|it|es|ru|cn|br|jp|kr)(?:/[^\s]*)?)`)

	// Symbols, modifier symbols, and surrogates cover emoji and decoration.
	symbolExpr = regexp.MustCompile(`[\p{So}\p{Sk}\p{Cs}]`)

	whitespaceExpr       = regexp.MustCompile(`\s+`)
	spaceBeforePunctExpr = regexp.MustCompile(`\s+([!?.,;:])`)
)

// Curly quotes and guillemets fold to their ASCII equivalents.
var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‚", "'",
	"‘", "'",
	"’", "'",
	"«", `"`,
	"»", `"`,
)

// Clean normalizes a piece of review text: decodes HTML entities, strips
// tags, replaces links with a placeholder, removes emoji/symbols, folds
// curly quotes to ASCII, and collapses whitespace. Deterministic and
// best-effort; malformed input never raises.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = html.UnescapeString(text)
	text = htmlTagExpr.ReplaceAllString(text, " ")
	text = urlExpr.ReplaceAllString(text, " "+LinkPlaceholder+" ")
	text = symbolExpr.ReplaceAllString(text, "")
	text = quoteReplacer.Replace(text)
	text = whitespaceExpr.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = spaceBeforePunctExpr.ReplaceAllString(text, "$1")

	return text
}
