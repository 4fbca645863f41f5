package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// PatternIndex reports whether a linked pattern ID still exists in the
// corpus (e.g. as a non-archived code_pattern memory). No
// pattern_alignment.rs source shipped; built from spec.md §4.6's "linked
// patterns still exist and are consistent" description. Consistency
// (opposing sentiment about a shared pattern) is already covered by the
// contradiction dimension's cross-pattern strategy, so this dimension
// scores existence only.
type PatternIndex interface {
	PatternExists(patternID string) bool
}

func scorePatternAlignment(m *coretypes.Memory, idx PatternIndex) float64 {
	patterns := m.LinkedPatterns.Slice()
	if len(patterns) == 0 {
		return 1.0
	}

	var existing int
	for _, p := range patterns {
		if idx.PatternExists(p) {
			existing++
		}
	}
	return float64(existing) / float64(len(patterns))
}
