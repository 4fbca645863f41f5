package validation

import (
	"fmt"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// detectTemporalSupersession finds a newer memory on the same topic as
// an older one, considered a supersession candidate once the pair's
// embedding similarity clears threshold (mod.rs calls this with
// threshold 0.3 — looser than the cross-pattern/semantic strategies,
// since topic overlap alone is a weak signal and similarity narrows false
// positives). similarity is nil when no embedding comparison is
// available, in which case the topic-only signal is not enough to flag a
// contradiction.
func detectTemporalSupersession(a, b *coretypes.Memory, similarity *float64, threshold float64) *Contradiction {
	if !sharesTopic(a, b) {
		return nil
	}
	if similarity == nil || *similarity < threshold {
		return nil
	}
	if a.TransactionTime.Equal(b.TransactionTime) {
		return nil
	}

	older, newer := a, b
	if older.TransactionTime.After(newer.TransactionTime) {
		older, newer = newer, older
	}

	return &Contradiction{
		ContradictionType: ContradictionSupersession,
		MemoryIDs:         []string{older.ID, newer.ID},
		ConfidenceDelta:   -0.2,
		Description:       fmt.Sprintf("%q (newer) may supersede %q (older) on a shared topic", newer.Summary, older.Summary),
		DetectedBy:        StrategyTemporalSupersession,
	}
}
