package sanitizer

import (
	"regexp"
	"sort"
)

// rule pairs a detector regex with the category/placeholder/confidence
// to apply when it matches. Rules are tried in order; when two matches
// start at the same offset, the earlier rule in this list wins.
type rule struct {
	category    string
	placeholder string
	confidence  float64
	pattern     *regexp.Regexp
}

// RegexSanitizer is the reference Sanitizer implementation: a fixed set
// of regex detectors covering the taxonomy named in spec.md §6 (secrets,
// emails, tokens) plus credit cards, SSNs, and PEM private key blocks.
// Not grounded on a shipped implementation (cortex-core only ships the
// trait); this is a standard regex-redaction taxonomy in the trait's
// idiom.
type RegexSanitizer struct {
	rules []rule
}

// NewRegexSanitizer returns a Sanitizer with the default rule set.
func NewRegexSanitizer() *RegexSanitizer {
	return &RegexSanitizer{rules: defaultRules()}
}

func defaultRules() []rule {
	return []rule{
		{
			category:    "private_key",
			placeholder: "[REDACTED:PRIVATE_KEY]",
			confidence:  0.99,
			pattern:     regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`),
		},
		{
			category:    "aws_access_key",
			placeholder: "[REDACTED:AWS_KEY]",
			confidence:  0.95,
			pattern:     regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		},
		{
			category:    "api_token",
			placeholder: "[REDACTED:API_TOKEN]",
			confidence:  0.9,
			pattern:     regexp.MustCompile(`\b(?:sk|pk|rk)-[A-Za-z0-9]{20,}\b`),
		},
		{
			category:    "bearer_token",
			placeholder: "[REDACTED:BEARER_TOKEN]",
			confidence:  0.9,
			pattern:     regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9\-_.=]{10,}`),
		},
		{
			category:    "key_value_secret",
			placeholder: "[REDACTED:SECRET]",
			confidence:  0.8,
			pattern:     regexp.MustCompile(`(?i)\b(api[_-]?key|secret|password|passwd|token)\b\s*[:=]\s*['"]?[A-Za-z0-9_\-]{12,}['"]?`),
		},
		{
			category:    "email",
			placeholder: "[REDACTED:EMAIL]",
			confidence:  0.85,
			pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		},
		{
			category:    "ssn",
			placeholder: "[REDACTED:SSN]",
			confidence:  0.8,
			pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		},
		{
			category:    "credit_card",
			placeholder: "[REDACTED:CREDIT_CARD]",
			confidence:  0.75,
			pattern:     regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`),
		},
	}
}

// match is one located hit in the source text, before overlap resolution.
type match struct {
	start, end  int
	category    string
	placeholder string
	confidence  float64
}

// Sanitize implements Sanitizer.
func (s *RegexSanitizer) Sanitize(text string) (SanitizedText, error) {
	var candidates []match
	for _, r := range s.rules {
		for _, loc := range r.pattern.FindAllStringIndex(text, -1) {
			candidates = append(candidates, match{
				start: loc[0], end: loc[1],
				category:    r.category,
				placeholder: r.placeholder,
				confidence:  r.confidence,
			})
		}
	}

	accepted := resolveOverlaps(candidates)

	var out []byte
	var redactions []Redaction
	cursor := 0
	for _, m := range accepted {
		out = append(out, text[cursor:m.start]...)
		placeholderStart := len(out)
		out = append(out, m.placeholder...)
		redactions = append(redactions, Redaction{
			Category:    m.category,
			Placeholder: m.placeholder,
			Start:       placeholderStart,
			End:         len(out),
			Confidence:  m.confidence,
		})
		cursor = m.end
	}
	out = append(out, text[cursor:]...)

	return SanitizedText{Text: string(out), Redactions: redactions}, nil
}

// resolveOverlaps sorts candidates by start offset (stable, so earlier
// rules win ties) and greedily keeps non-overlapping matches in that
// order, discarding any candidate that overlaps an already-accepted one.
func resolveOverlaps(candidates []match) []match {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].end > candidates[j].end
	})

	var accepted []match
	lastEnd := -1
	for _, m := range candidates {
		if m.start < lastEnd {
			continue
		}
		accepted = append(accepted, m)
		lastEnd = m.end
	}
	return accepted
}
