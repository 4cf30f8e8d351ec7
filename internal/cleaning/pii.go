package cleaning

import (
	"regexp"
	"strings"

	"ReviewPulse/internal/domain"
)

const (
	emailReplacement = "[email removed]"
	phoneReplacement = "[phone removed]"
	idReplacement    = "[id removed]"
	userReplacement  = "the user"
)

var (
	emailExpr = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Digit runs with optional separators and an optional country code.
	phoneExpr = regexp.MustCompile(`(?:(?:\+|00)\d{1,3}[\s\-()]*)?(?:\d[\s\-()]*){7,12}`)

	// @handle, or an id/user/uid/handle prefix followed by a token.
	usernameExpr = regexp.MustCompile(`(@[A-Za-z0-9_]+)|\b(?i:id|user|uid|handle)[:\s]*[A-Za-z0-9_]{3,}\b`)

	// Capitalized word(s) right after a Name:/By marker.
	nameContextExpr = regexp.MustCompile(`(\b(?i:name|by)[:\s]+)([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
)

// DetectPII scans text read-only and reports every match the scrubber
// would redact. The scan runs against the raw text so patterns are not
// corrupted by earlier cleaning. Each matched span is masked before the
// next pattern runs, so one address never shows up twice (the domain of an
// email must not also count as a URL).
func DetectPII(text string) []domain.PiiFinding {
	if text == "" {
		return nil
	}

	var findings []domain.PiiFinding
	scan := func(expr *regexp.Regexp, kind domain.PiiKind) {
		for _, m := range expr.FindAllString(text, -1) {
			findings = append(findings, domain.PiiFinding{Kind: kind, Value: m})
		}
		text = expr.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(" ", len(m))
		})
	}

	scan(emailExpr, domain.PiiEmail)
	scan(urlExpr, domain.PiiURL)
	scan(phoneExpr, domain.PiiPhone)
	scan(usernameExpr, domain.PiiUsername)

	for _, m := range nameContextExpr.FindAllStringSubmatch(text, -1) {
		findings = append(findings, domain.PiiFinding{Kind: domain.PiiName, Value: m[2]})
	}

	return findings
}

// Redact rewrites text with every PII match substituted by a neutral
// placeholder, preserving the surrounding meaning.
func Redact(text string) string {
	if text == "" {
		return ""
	}

	text = emailExpr.ReplaceAllString(text, emailReplacement)
	text = urlExpr.ReplaceAllString(text, LinkPlaceholder)
	text = phoneExpr.ReplaceAllString(text, phoneReplacement)

	text = usernameExpr.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasPrefix(match, "@") {
			return userReplacement
		}
		return idReplacement
	})

	text = nameContextExpr.ReplaceAllString(text, "${1}"+userReplacement)

	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(text, " "))
}

// CleanAndScrub redacts PII on the raw text first, then runs the full
// cleaning pass on the redacted result. Redact-then-clean keeps cleaning
// from masking PII embedded in the same substring (a URL placeholder hiding
// a phone number, for example). The reported flag reflects detection on the
// raw input.
func CleanAndScrub(text string) (string, bool) {
	hadPII := len(DetectPII(text)) > 0
	return Clean(Redact(text)), hadPII
}
