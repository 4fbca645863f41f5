package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// defaultPropagationMaxHops bounds how far a confidence adjustment
// travels outward along relationship edges before the signal is
// considered too attenuated to matter.
const defaultPropagationMaxHops = 3

// ConfidenceAdjustment is one outward-propagated confidence delta
// resulting from a detected contradiction. Declared in
// contradiction/mod.rs's use of `propagation::ConfidenceAdjustment`; no
// propagation.rs source shipped, built here from spec.md §4.6's
// "confidence adjustments flow outward along relationship edges,
// attenuated by edge strength and hop count" description.
type ConfidenceAdjustment struct {
	MemoryID string
	Delta    float64
	Hops     int
}

// Propagate walks outward from each memory named in memoryIDs along
// edges, attenuating the contradiction's confidence_delta by the
// traversed edge's Strength at every hop, up to maxHops (0 uses the
// package default). Visits each memory at most once so cycles in the
// relationship graph terminate the walk rather than looping forever.
func Propagate(memoryIDs []string, contradictionType ContradictionType, confidenceDelta float64, edges []coretypes.RelationshipEdge, maxHops int) []ConfidenceAdjustment {
	if maxHops <= 0 {
		maxHops = defaultPropagationMaxHops
	}

	byNode := make(map[string][]coretypes.RelationshipEdge)
	for _, e := range edges {
		byNode[e.Source] = append(byNode[e.Source], e)
		byNode[e.Target] = append(byNode[e.Target], e)
	}

	visited := make(map[string]bool)
	var out []ConfidenceAdjustment
	for _, id := range memoryIDs {
		visited[id] = true
	}

	type frontierItem struct {
		id    string
		delta float64
		hops  int
	}
	var frontier []frontierItem
	for _, id := range memoryIDs {
		frontier = append(frontier, frontierItem{id: id, delta: confidenceDelta, hops: 0})
	}

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if cur.hops >= maxHops {
			continue
		}
		for _, e := range byNode[cur.id] {
			next := e.Target
			if next == cur.id {
				next = e.Source
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			attenuated := cur.delta * e.Strength
			out = append(out, ConfidenceAdjustment{MemoryID: next, Delta: attenuated, Hops: cur.hops + 1})
			frontier = append(frontier, frontierItem{id: next, delta: attenuated, hops: cur.hops + 1})
		}
	}

	return out
}
