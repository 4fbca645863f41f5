package validation

import (
	"fmt"
	"strings"

	"github.com/mattepiu/cortex/internal/coretypes"
)

var absoluteAlways = []string{"always", "must", "every time"}
var absoluteNever = []string{"never", "must not", "none"}

func sharesTopic(a, b *coretypes.Memory) bool {
	for _, t := range a.Tags.Slice() {
		if b.Tags.Has(t) {
			return true
		}
	}
	return false
}

// detectAbsoluteStatement finds "always X" vs "never X" conflicts on the
// same topic (shared tags). Declared in contradiction/detection/mod.rs as
// the most-specific strategy, tried first; no absolute_statement.rs
// source shipped, so this is built from spec.md §4.6's one-line
// description ("'always X' vs 'never X'").
func detectAbsoluteStatement(a, b *coretypes.Memory) *Contradiction {
	if !sharesTopic(a, b) {
		return nil
	}

	aAlways := hasAny(a.Summary, absoluteAlways)
	aNever := hasAny(a.Summary, absoluteNever)
	bAlways := hasAny(b.Summary, absoluteAlways)
	bNever := hasAny(b.Summary, absoluteNever)

	if !((aAlways && bNever) || (aNever && bAlways)) {
		return nil
	}

	return &Contradiction{
		ContradictionType: ContradictionDirect,
		MemoryIDs:         []string{a.ID, b.ID},
		ConfidenceDelta:   -0.4,
		Description:       fmt.Sprintf("absolute-statement conflict: %q vs %q", strings.TrimSpace(a.Summary), strings.TrimSpace(b.Summary)),
		DetectedBy:        StrategyAbsoluteStatement,
	}
}
