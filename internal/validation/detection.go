package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// temporalSupersessionThreshold is the similarity floor used when
// detect_all invokes the temporal-supersession strategy — ported
// directly from detection/mod.rs's hardcoded `0.3` argument.
const temporalSupersessionThreshold = 0.3

// detectAll runs the five detection strategies against a pair of
// memories in order of specificity and returns the first (strongest)
// match, or nil. Ported directly from contradiction/detection/mod.rs's
// detect_all.
func detectAll(a, b *coretypes.Memory, similarity *float64) *Contradiction {
	if c := detectAbsoluteStatement(a, b); c != nil {
		return c
	}
	if c := detectCrossPattern(a, b); c != nil {
		return c
	}
	if c := detectFeedback(a, b); c != nil {
		return c
	}
	if c := detectTemporalSupersession(a, b, similarity, temporalSupersessionThreshold); c != nil {
		return c
	}
	if c := detectSemantic(a, b, similarity); c != nil {
		return c
	}
	return nil
}

// detectAllExhaustive runs every strategy and collects all matches,
// rather than stopping at the first. Ported directly from
// contradiction/detection/mod.rs's detect_all_exhaustive.
func detectAllExhaustive(a, b *coretypes.Memory, similarity *float64) []Contradiction {
	var out []Contradiction
	if c := detectAbsoluteStatement(a, b); c != nil {
		out = append(out, *c)
	}
	if c := detectCrossPattern(a, b); c != nil {
		out = append(out, *c)
	}
	if c := detectFeedback(a, b); c != nil {
		out = append(out, *c)
	}
	if c := detectTemporalSupersession(a, b, similarity, temporalSupersessionThreshold); c != nil {
		out = append(out, *c)
	}
	if c := detectSemantic(a, b, similarity); c != nil {
		out = append(out, *c)
	}
	return out
}
