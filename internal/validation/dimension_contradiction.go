package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// scoreContradiction derives the contradiction dimension score for one
// memory from the contradictions that name it: 1.0 minus the severity of
// its worst contradiction, then lifted by ConsensusBoost if the memory
// belongs to a consensus group (spec.md §4.6's "consensus members ...
// resist single contradictions").
func scoreContradiction(memoryID string, contradictions []Contradiction, groups []ConsensusGroup) float64 {
	worst := 0.0
	for _, c := range contradictions {
		for _, id := range c.MemoryIDs {
			if id != memoryID {
				continue
			}
			severity := c.ConfidenceDelta
			if severity < 0 {
				severity = -severity
			}
			if severity > worst {
				worst = severity
			}
		}
	}

	score := clamp01(1.0 - worst)
	if ResistsContradiction(memoryID, groups) {
		score = clamp01(score + ConsensusBoost)
	}
	return score
}

// applyConsensusBoosts raises the stored confidence of every memory in a
// consensus group by ConsensusBoost, per spec.md §4.6.
func applyConsensusBoosts(memories []*coretypes.Memory, groups []ConsensusGroup) {
	byID := make(map[string]*coretypes.Memory, len(memories))
	for _, m := range memories {
		byID[m.ID] = m
	}
	for _, g := range groups {
		for _, id := range g.MemoryIDs {
			if m, ok := byID[id]; ok {
				ApplyConfidenceDelta(m, g.Boost)
			}
		}
	}
}
