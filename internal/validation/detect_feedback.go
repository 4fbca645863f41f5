package validation

import (
	"fmt"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// feedbackMarkers are the tags that mark a memory as recorded negative
// user feedback on a prior claim.
var feedbackMarkers = []string{"negative-feedback", "rejected", "corrected"}

func isNegativeFeedback(m *coretypes.Memory) bool {
	for _, marker := range feedbackMarkers {
		if m.Tags.Has(marker) {
			return true
		}
	}
	return false
}

// detectFeedback finds a memory marked as negative user feedback that
// shares a topic with an earlier memory asserting the opposite. No
// feedback.rs source shipped; built from spec.md §4.6's "explicit
// negative feedback vs content" description.
func detectFeedback(a, b *coretypes.Memory) *Contradiction {
	var feedback, target *coretypes.Memory
	switch {
	case isNegativeFeedback(a) && !isNegativeFeedback(b):
		feedback, target = a, b
	case isNegativeFeedback(b) && !isNegativeFeedback(a):
		feedback, target = b, a
	default:
		return nil
	}

	if !sharesTopic(feedback, target) {
		return nil
	}

	return &Contradiction{
		ContradictionType: ContradictionPartial,
		MemoryIDs:         []string{feedback.ID, target.ID},
		ConfidenceDelta:   -0.35,
		Description:       fmt.Sprintf("negative feedback %q contradicts %q", feedback.Summary, target.Summary),
		DetectedBy:        StrategyFeedback,
	}
}
