package concurrency

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/storage"
)

// predictionStore is the narrow read surface every prediction strategy
// needs. Ported from the dyn IMemoryStorage trait object each strategy
// in cortex-prediction/src/strategies/*.rs takes, narrowed to the calls
// those files actually make.
type predictionStore interface {
	GetBulk(ids []string) ([]*coretypes.Memory, error)
	SearchFTS(query, namespace string, limit int) ([]storage.LexicalHit, error)
	QueryBy(f storage.QueryFilters) ([]*coretypes.Memory, error)
}

// PredictionCandidate is one strategy's guess at a memory the agent will
// need soon. Ported directly from cortex-prediction/src/strategies/
// mod.rs's PredictionCandidate.
type PredictionCandidate struct {
	MemoryID       string
	Confidence     float64
	SourceStrategy string
	Signals        []string
}

// multiStrategyBoost is added, capped at 1.0, when the same memory is
// predicted by more than one strategy. Ported directly from
// strategies/mod.rs's MULTI_STRATEGY_BOOST constant.
const multiStrategyBoost = 0.05

// Deduplicate merges candidates that name the same memory across
// strategies: the higher confidence wins (plus the boost), signals are
// unioned, and source_strategy records every contributing strategy.
// Ported directly from strategies/mod.rs's deduplicate.
func Deduplicate(candidates []PredictionCandidate) []PredictionCandidate {
	merged := make(map[string]*PredictionCandidate, len(candidates))
	order := make([]string, 0, len(candidates))

	for _, c := range candidates {
		c := c
		existing, ok := merged[c.MemoryID]
		if !ok {
			merged[c.MemoryID] = &c
			order = append(order, c.MemoryID)
			continue
		}
		boosted := existing.Confidence
		if c.Confidence > boosted {
			boosted = c.Confidence
		}
		boosted += multiStrategyBoost
		if boosted > 1.0 {
			boosted = 1.0
		}
		existing.Confidence = boosted
		existing.Signals = append(existing.Signals, c.Signals...)
		if !strings.Contains(existing.SourceStrategy, c.SourceStrategy) {
			existing.SourceStrategy = fmt.Sprintf("%s+%s", existing.SourceStrategy, c.SourceStrategy)
		}
	}

	result := make([]PredictionCandidate, 0, len(order))
	for _, id := range order {
		result = append(result, *merged[id])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Confidence > result[j].Confidence })
	return result
}

// FileBasedStrategy predicts memories linked to the active file's path,
// directory, or imports. Declared in strategies/mod.rs's pub use
// file_based::FileBasedStrategy; file_based.rs is not shipped in the
// retrieval pack, so this is built from spec.md §4.7's "file-based"
// strategy description, in pattern_based.rs's and behavioral.rs's
// shipped style (predict(signals, storage) -> candidates).
type FileBasedStrategy struct{}

// Predict returns candidates whose linked files overlap the active
// file's relevant paths.
func (FileBasedStrategy) Predict(signals FileSignals, store predictionStore) ([]PredictionCandidate, error) {
	var candidates []PredictionCandidate
	paths := signals.RelevantPaths()
	if len(paths) == 0 {
		return candidates, nil
	}

	for _, path := range paths {
		hits, err := store.SearchFTS(path, "", 10)
		if err != nil {
			return nil, err
		}
		confidence := 0.7
		if path == signals.ActiveFile {
			confidence = 0.8
		}
		for _, hit := range hits {
			if hasCandidate(candidates, hit.MemoryID) {
				continue
			}
			candidates = append(candidates, PredictionCandidate{
				MemoryID:       hit.MemoryID,
				Confidence:     confidence,
				SourceStrategy: "file_based",
				Signals:        []string{"linked_file:" + path},
			})
		}
	}
	return candidates, nil
}

// PatternBasedStrategy predicts code-pattern and code-constraint
// memories whose symbols overlap the active file's extracted symbols.
// Declared in strategies/mod.rs's pub use pattern_based::
// PatternBasedStrategy; pattern_based.rs is not shipped, so this is
// built from spec.md §4.7's "pattern-based" description the same way as
// FileBasedStrategy above.
type PatternBasedStrategy struct{}

// Predict returns code_pattern/code_constraint memories matching any of
// the active file's symbols.
func (PatternBasedStrategy) Predict(signals FileSignals, store predictionStore) ([]PredictionCandidate, error) {
	var candidates []PredictionCandidate
	for _, symbol := range signals.Symbols {
		for _, kind := range []coretypes.Kind{coretypes.KindCodePattern, coretypes.KindCodeConstraint} {
			memories, err := store.QueryBy(storage.QueryFilters{Kind: kind, Tags: []string{symbol}, Limit: 5})
			if err != nil {
				return nil, err
			}
			for _, m := range memories {
				if hasCandidate(candidates, m.ID) {
					continue
				}
				candidates = append(candidates, PredictionCandidate{
					MemoryID:       m.ID,
					Confidence:     0.65,
					SourceStrategy: "pattern_based",
					Signals:        []string{"symbol:" + symbol},
				})
			}
		}
	}
	return candidates, nil
}

// BehavioralStrategy predicts memories from recent queries, intents, and
// frequently accessed memories. Ported directly from
// cortex-prediction/src/strategies/behavioral.rs.
type BehavioralStrategy struct{}

// Predict runs the three behavioral sub-signals, in the same priority
// order as behavioral.rs: frequent access, then recent queries, then
// recent intents.
func (BehavioralStrategy) Predict(signals BehavioralSignals, store predictionStore) ([]PredictionCandidate, error) {
	var candidates []PredictionCandidate
	if !signals.HasSignals() {
		return candidates, nil
	}

	if len(signals.FrequentMemoryIDs) > 0 {
		memories, err := store.GetBulk(signals.FrequentMemoryIDs)
		if err != nil {
			return nil, err
		}
		for _, m := range memories {
			candidates = append(candidates, PredictionCandidate{
				MemoryID:       m.ID,
				Confidence:     0.8,
				SourceStrategy: "behavioral",
				Signals:        []string{"frequent_access"},
			})
		}
	}

	for _, query := range firstN(signals.RecentQueries, 5) {
		hits, err := store.SearchFTS(query, "", 10)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			if hasCandidate(candidates, hit.MemoryID) {
				continue
			}
			candidates = append(candidates, PredictionCandidate{
				MemoryID:       hit.MemoryID,
				Confidence:     0.6,
				SourceStrategy: "behavioral",
				Signals:        []string{"recent_query:" + query},
			})
		}
	}

	for _, intent := range firstN(signals.RecentIntents, 3) {
		hits, err := store.SearchFTS(intent, "", 5)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			if hasCandidate(candidates, hit.MemoryID) {
				continue
			}
			candidates = append(candidates, PredictionCandidate{
				MemoryID:       hit.MemoryID,
				Confidence:     0.5,
				SourceStrategy: "behavioral",
				Signals:        []string{"recent_intent:" + intent},
			})
		}
	}

	return candidates, nil
}

// TemporalStrategy predicts memories matching the current time-of-day
// bucket and recently/frequently accessed memories. Ported directly
// from cortex-prediction/src/strategies/temporal.rs.
type TemporalStrategy struct{}

// Predict tags the search with the current time bucket, then boosts
// memories accessed at least 5 times within the last 7 days.
func (TemporalStrategy) Predict(signals TemporalSignals, store predictionStore, now time.Time) ([]PredictionCandidate, error) {
	var candidates []PredictionCandidate

	bucket := signals.TimeBucket()
	tagged, err := store.QueryBy(storage.QueryFilters{Tags: []string{bucket}, Limit: 20})
	if err != nil {
		return nil, err
	}
	for _, m := range tagged {
		candidates = append(candidates, PredictionCandidate{
			MemoryID:       m.ID,
			Confidence:     0.5,
			SourceStrategy: "temporal",
			Signals:        []string{"time_bucket:" + bucket},
		})
	}

	normal := coretypes.ImportanceNormal
	frequent, err := store.QueryBy(storage.QueryFilters{MinImportance: &normal, Limit: 50})
	if err != nil {
		return nil, err
	}
	for _, m := range frequent {
		if !isTemporallyRelevant(m, now) || hasCandidate(candidates, m.ID) {
			continue
		}
		candidates = append(candidates, PredictionCandidate{
			MemoryID:       m.ID,
			Confidence:     0.4,
			SourceStrategy: "temporal",
			Signals:        []string{fmt.Sprintf("frequent_access:%d", m.AccessCount)},
		})
	}

	return candidates, nil
}

// isTemporallyRelevant matches temporal.rs's is_temporally_relevant:
// accessed at least 5 times, and within the last 7 days.
func isTemporallyRelevant(m *coretypes.Memory, now time.Time) bool {
	daysSinceAccess := now.Sub(m.LastAccessed).Hours() / 24
	return m.AccessCount >= 5 && daysSinceAccess <= 7
}

func hasCandidate(candidates []PredictionCandidate, memoryID string) bool {
	for _, c := range candidates {
		if c.MemoryID == memoryID {
			return true
		}
	}
	return false
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
