package validation

import (
	"fmt"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// semanticSimilarityThreshold is the minimum embedding similarity before
// opposing sentiment is treated as a semantic contradiction rather than
// coincidental wording.
const semanticSimilarityThreshold = 0.75

// detectSemantic finds two memories whose embeddings are highly similar
// (near-duplicate topic) but whose text carries opposing sentiment —
// without requiring a shared linked pattern, unlike detectCrossPattern.
// Tried last since it is the least specific of the five strategies.
func detectSemantic(a, b *coretypes.Memory, similarity *float64) *Contradiction {
	if similarity == nil || *similarity < semanticSimilarityThreshold {
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
		ContradictionType: ContradictionSemantic,
		MemoryIDs:         []string{a.ID, b.ID},
		ConfidenceDelta:   -0.25,
		Description:       fmt.Sprintf("semantically similar (%.2f) memories with opposing sentiment: %q vs %q", *similarity, a.Summary, b.Summary),
		DetectedBy:        StrategySemantic,
	}
}
