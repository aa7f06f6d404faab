// Package annotation turns free-text summarizer output into a typed annotation.
package annotation

import (
	"regexp"
	"strings"

	"NewsSignal/internal/domain"
)

var (
	tagExpr     = regexp.MustCompile(`(?i)\[\s*([^|\]]+?)\s*\|\s*([^|\]]+?)\s*\|\s*([^|\]]+?)\s*\|\s*([^|\]]+?)\s*\|\s*(BULL|BEAR|FLAT)\s*\]`)
	regionExpr  = regexp.MustCompile(`(?i)Region:[ \t]*(.*)`)
	keywordExpr = regexp.MustCompile(`(?i)Keyword:[ \t]*(.*)`)
	signalExpr  = regexp.MustCompile(`(?i)Signal:[ \t]*(BULL|BEAR|FLAT)`)
	fieldLine   = regexp.MustCompile(`(?i)(Region|Keyword|Signal):.*`)
	invalidExpr = regexp.MustCompile(`(?i)INVALID`)
)

// Parse extracts region, keyword and signal. The legacy bracket tag
// "[a | b | region | keyword | SIGNAL]" takes precedence over the line form
// "Region: ...", "Keyword: ...", "Signal: ...". Absent fields default to
// Unknown/Unknown/FLAT. Display is the text with the structured parts removed.
func Parse(text string) domain.Annotation {
	if m := tagExpr.FindStringSubmatch(text); m != nil {
		return domain.Annotation{
			Region:  orUnknown(m[3]),
			Keyword: orUnknown(m[4]),
			Signal:  domain.Signal(strings.ToUpper(m[5])),
			Display: strings.TrimSpace(strings.Replace(text, m[0], "", 1)),
		}
	}

	ann := domain.Annotation{
		Region:  domain.Unknown,
		Keyword: domain.Unknown,
		Signal:  domain.SignalFlat,
		Display: strings.TrimSpace(fieldLine.ReplaceAllString(text, "")),
	}
	if m := regionExpr.FindStringSubmatch(text); m != nil {
		ann.Region = orUnknown(m[1])
	}
	if m := keywordExpr.FindStringSubmatch(text); m != nil {
		ann.Keyword = orUnknown(m[1])
	}
	if m := signalExpr.FindStringSubmatch(text); m != nil {
		ann.Signal = domain.Signal(strings.ToUpper(m[1]))
	}
	return ann
}

// ParseResponse is Parse for fresh annotator output: an "INVALID" marker flags
// the article as off-topic, and without a Signal line any BULL mention yields
// BULL, otherwise any BEAR mention yields BEAR. BULL takes precedence wherever
// the two appear.
func ParseResponse(text string) domain.Annotation {
	ann := Parse(text)
	if invalidExpr.MatchString(text) {
		ann.Invalid = true
		return ann
	}
	if tagExpr.MatchString(text) || signalExpr.MatchString(text) {
		return ann
	}

	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, string(domain.SignalBull)):
		ann.Signal = domain.SignalBull
	case strings.Contains(upper, string(domain.SignalBear)):
		ann.Signal = domain.SignalBear
	}
	return ann
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return domain.Unknown
	}
	return v
}
