// services/threat_filter.go
package services

import (
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxMessageLength  = 1000
	maxSymbolRatio    = 0.3
	maxSanitizedRunes = 100
)

// threatPattern pairs a detection category with its regular expression so
// every class can be evaluated (and unit-tested) uniformly.
type threatPattern struct {
	category string
	re       *regexp.Regexp
}

var threatPatterns = []threatPattern{
	{"code-execution", regexp.MustCompile(`(?i)(\beval\s*\(|\bexec\s*\(|\bsystem\s*\(|__import__|subprocess\.|child_process|require\s*\(\s*['"])`)},
	{"os-introspection", regexp.MustCompile(`(?i)(/etc/passwd|/etc/shadow|/proc/self|\bos\.system\b|\bcmd\.exe\b|\bpowershell\b|\bprocess\.env\b)`)},
	{"sql-mutation", regexp.MustCompile(`(?i)\b(drop\s+(table|database)|delete\s+from|insert\s+into|truncate\s+table|alter\s+table|update\s+\w+\s+set)\b`)},
	{"markup-injection", regexp.MustCompile(`(?i)(<\s*script|<\s*iframe|<\s*object|<\s*embed|javascript:|vbscript:|on\w+\s*=)`)},
	{"path-traversal", regexp.MustCompile(`\.\./|\.\.\\`)},
	{"prototype-tampering", regexp.MustCompile(`(?i)(__proto__|\bconstructor\s*\[|\bprototype\s*\[|Object\.defineProperty)`)},
}

// ThreatFilter rejects structurally hostile text before any business logic
// sees it. It is defense-in-depth: every consuming operation still does its
// own numeric and structural validation.
type ThreatFilter struct {
	sanitizer *bluemonday.Policy
}

func NewThreatFilter() *ThreatFilter {
	return &ThreatFilter{sanitizer: bluemonday.StrictPolicy()}
}

// Inspect returns ErrThreatDetected if the text matches any threat pattern,
// is longer than 1000 characters, or has a non-alphanumeric character ratio
// above 0.3. The matched category is logged, never echoed to the caller.
func (f *ThreatFilter) Inspect(text string) error {
	if len(text) > maxMessageLength {
		log.Printf("🚫 [FILTER] Rejected oversized message (%d bytes)", len(text))
		return fmt.Errorf("%w: message too long", ErrThreatDetected)
	}

	for _, p := range threatPatterns {
		if p.re.MatchString(text) {
			log.Printf("🚫 [FILTER] Rejected message matching %s pattern", p.category)
			return fmt.Errorf("%w: %s", ErrThreatDetected, p.category)
		}
	}

	if symbolRatio(text) > maxSymbolRatio {
		log.Printf("🚫 [FILTER] Rejected message with excessive symbol ratio")
		return fmt.Errorf("%w: obfuscated input", ErrThreatDetected)
	}

	return nil
}

// Sanitize cleans a free-text field for display persistence: trim, strip any
// HTML, drop angle brackets and quotes, cap at 100 characters. Never used on
// text that Inspect already rejected.
func (f *ThreatFilter) Sanitize(text string) string {
	out := strings.TrimSpace(text)
	out = f.sanitizer.Sanitize(out)
	out = html.UnescapeString(out)
	out = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "").Replace(out)

	runes := []rune(out)
	if len(runes) > maxSanitizedRunes {
		out = string(runes[:maxSanitizedRunes])
	}
	return strings.TrimSpace(out)
}

// symbolRatio is the share of runes that are neither alphanumeric nor
// whitespace — a cheap obfuscation heuristic.
func symbolRatio(text string) float64 {
	total, symbols := 0, 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}
