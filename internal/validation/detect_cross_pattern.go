package validation

import (
	"fmt"
	"strings"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// sentimentIndicators are the shared positive/negative vocabularies used
// by both the cross-pattern and semantic detection strategies. Ported
// directly from contradiction/detection/cross_pattern.rs's
// POSITIVE_INDICATORS/NEGATIVE_INDICATORS.
var positiveIndicators = []string{
	"good", "recommended", "prefer", "use", "adopt", "enable",
	"best practice", "should", "correct", "proper", "ideal", "effective",
}

var negativeIndicators = []string{
	"bad", "avoid", "don't", "disable", "anti-pattern", "deprecated",
	"shouldn't", "incorrect", "improper", "harmful", "ineffective",
}

func hasAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// detectCrossPattern finds two memories linked to the same pattern with
// opposing sentiment about it. Ported directly from
// contradiction/detection/cross_pattern.rs's detect.
func detectCrossPattern(a, b *coretypes.Memory) *Contradiction {
	var shared []string
	for _, p := range a.LinkedPatterns.Slice() {
		if b.LinkedPatterns.Has(p) {
			shared = append(shared, p)
		}
	}
	if len(shared) == 0 {
		return nil
	}

	aPositive := hasAny(a.Summary, positiveIndicators)
	aNegative := hasAny(a.Summary, negativeIndicators)
	bPositive := hasAny(b.Summary, positiveIndicators)
	bNegative := hasAny(b.Summary, negativeIndicators)

	opposing := (aPositive && bNegative) || (aNegative && bPositive)
	if !opposing {
		return nil
	}

	return &Contradiction{
		ContradictionType: ContradictionDirect,
		MemoryIDs:         []string{a.ID, b.ID},
		ConfidenceDelta:   -0.3,
		Description: fmt.Sprintf("cross-pattern contradiction on [%s]: %q vs %q",
			strings.Join(shared, ", "), a.Summary, b.Summary),
		DetectedBy: StrategyCrossPattern,
	}
}
