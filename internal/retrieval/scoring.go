package retrieval

import (
	"math"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// SignalWeights holds the eight weighted signals named in spec.md §4.3.
// Per-intent overrides replace the whole struct, not individual fields,
// mirroring decay's half-life override decision (DESIGN.md Open
// Questions #1): a weight profile is a coherent unit, not independently
// tunable knobs.
type SignalWeights struct {
	Similarity     float64
	Recency        float64
	Importance     float64
	Confidence     float64
	IntentAffinity float64
	FileProximity  float64
	TagMatch       float64
	AccessFreq     float64
}

// DefaultSignalWeights is the baseline profile used when no per-intent
// override is configured.
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{
		Similarity:     0.25,
		Recency:        0.15,
		Importance:     0.15,
		Confidence:     0.15,
		IntentAffinity: 0.1,
		FileProximity:  0.1,
		TagMatch:       0.05,
		AccessFreq:     0.05,
	}
}

// PerIntentWeights overrides DefaultSignalWeights for specific intents.
// Grounded on spec.md §4.3 "Per-intent weight overrides are
// configurable"; IntentConstraint and IntentDecision lean harder on
// confidence since a wrong constraint or decision is costlier than a
// stale pattern suggestion.
func PerIntentWeights() map[Intent]SignalWeights {
	return map[Intent]SignalWeights{
		IntentConstraint: {
			Similarity: 0.2, Recency: 0.1, Importance: 0.15, Confidence: 0.25,
			IntentAffinity: 0.15, FileProximity: 0.1, TagMatch: 0.03, AccessFreq: 0.02,
		},
		IntentDecision: {
			Similarity: 0.2, Recency: 0.1, Importance: 0.2, Confidence: 0.25,
			IntentAffinity: 0.1, FileProximity: 0.05, TagMatch: 0.05, AccessFreq: 0.05,
		},
	}
}

// WeightsForIntent returns the configured override for intent, or
// DefaultSignalWeights if none exists.
func WeightsForIntent(intent Intent) SignalWeights {
	if w, ok := PerIntentWeights()[intent]; ok {
		return w
	}
	return DefaultSignalWeights()
}

// ScoreContext carries the query-time information the scorer needs
// beyond a bare memory record: the originating intent, queried tags, and
// files currently open/edited (for the active-file-proximity signal).
type ScoreContext struct {
	Intent      Intent
	QueryTags   []string
	ActiveFiles []string
	Now         time.Time
}

// Score computes the weighted multi-factor score for a memory, given its
// RRF-fused similarity (already in [0,1]-ish range from FuseRRF; the
// caller normalizes — see NormalizeRRF) and scoring context.
func Score(m *coretypes.Memory, similarity float64, ctx ScoreContext) float64 {
	w := WeightsForIntent(ctx.Intent)

	recency := recencyScore(m.LastAccessed, ctx.Now)
	importance := importanceScore(m.Importance)
	confidence := m.Confidence
	affinity := KindAffinityScore(ctx.Intent, m.Kind)
	proximity := fileProximityScore(m, ctx.ActiveFiles)
	tagMatch := tagMatchScore(m, ctx.QueryTags)
	accessFreq := accessFrequencyScore(m.AccessCount)

	return w.Similarity*similarity +
		w.Recency*recency +
		w.Importance*importance +
		w.Confidence*confidence +
		w.IntentAffinity*affinity +
		w.FileProximity*proximity +
		w.TagMatch*tagMatch +
		w.AccessFreq*accessFreq
}

// NormalizeRRF rescales RRF scores into [0,1] by dividing by the maximum
// observed score, so the similarity signal combines sanely with the
// other bounded signals.
func NormalizeRRF(hits []FusedHit) map[string]float64 {
	out := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return out
	}
	max := hits[0].Score
	for _, h := range hits {
		if h.Score > max {
			max = h.Score
		}
	}
	if max == 0 {
		for _, h := range hits {
			out[h.MemoryID] = 0
		}
		return out
	}
	for _, h := range hits {
		out[h.MemoryID] = h.Score / max
	}
	return out
}

func recencyScore(lastAccessed, now time.Time) float64 {
	if lastAccessed.IsZero() {
		return 0
	}
	hours := now.Sub(lastAccessed).Hours()
	if hours < 0 {
		hours = 0
	}
	const halfLifeHours = 7 * 24
	return math.Exp(-hours / halfLifeHours * math.Ln2)
}

func importanceScore(imp coretypes.Importance) float64 {
	switch imp {
	case coretypes.ImportanceCritical:
		return 1.0
	case coretypes.ImportanceHigh:
		return 0.75
	case coretypes.ImportanceNormal:
		return 0.5
	default:
		return 0.25
	}
}

func fileProximityScore(m *coretypes.Memory, activeFiles []string) float64 {
	if len(activeFiles) == 0 || len(m.LinkedFiles) == 0 {
		return 0
	}
	for _, f := range activeFiles {
		if m.LinkedFiles.Has(f) {
			return 1.0
		}
	}
	return 0
}

func tagMatchScore(m *coretypes.Memory, queryTags []string) float64 {
	if len(queryTags) == 0 {
		return 0
	}
	matches := 0
	for _, t := range queryTags {
		if m.Tags.Has(t) {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTags))
}

func accessFrequencyScore(accessCount int) float64 {
	if accessCount <= 0 {
		return 0
	}
	return math.Min(1.0, math.Log1p(float64(accessCount))/math.Log1p(100))
}
