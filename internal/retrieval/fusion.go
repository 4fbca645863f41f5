package retrieval

import "sort"

// DefaultRRFK is the default Reciprocal Rank Fusion constant (spec.md
// §4.3), overridable via config.RetrievalConfig.RRFK.
const DefaultRRFK = 60

// RankedList is one retriever's output, best match first.
type RankedList []string

// FusedHit is one record's fused score after RRF.
type FusedHit struct {
	MemoryID string
	Score    float64
}

// FuseRRF combines any number of ranked lists by summing 1/(k+rank) per
// list a record appears in (1-based rank; a list a record is absent from
// contributes nothing). Output is sorted by score descending, ties
// broken by MemoryID for determinism. Grounded on spec.md §4.3's RRF
// definition.
func FuseRRF(lists []RankedList, k int) []FusedHit {
	if k <= 0 {
		k = DefaultRRFK
	}

	scores := make(map[string]float64)
	order := make([]string, 0)
	seen := make(map[string]bool)

	for _, list := range lists {
		for i, id := range list {
			rank := i + 1
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
			scores[id] += 1.0 / float64(k+rank)
		}
	}

	hits := make([]FusedHit, len(order))
	for i, id := range order {
		hits[i] = FusedHit{MemoryID: id, Score: scores[id]}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].MemoryID < hits[j].MemoryID
	})
	return hits
}
