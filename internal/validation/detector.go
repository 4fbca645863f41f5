package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// SimilarityFunc returns the embedding cosine similarity between two
// memory IDs, or nil if unavailable. Ported directly from
// contradiction/mod.rs's SimilarityFn type alias.
type SimilarityFunc func(aID, bID string) *float64

// Detector orchestrates the five detection strategies, confidence
// propagation, and consensus checks. Ported directly from
// contradiction/mod.rs's ContradictionDetector.
type Detector struct{}

// NewDetector returns a ready Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect runs all 5 detection strategies pairwise over memories. For
// large sets, callers should pre-filter to related memories (same kind,
// shared tags) first. Ported directly from mod.rs's detect.
func (d *Detector) Detect(memories []*coretypes.Memory, similarity SimilarityFunc) []Contradiction {
	var out []Contradiction
	for i := 0; i < len(memories); i++ {
		for j := i + 1; j < len(memories); j++ {
			a, b := memories[i], memories[j]
			var sim *float64
			if similarity != nil {
				sim = similarity(a.ID, b.ID)
			}
			if c := detectAll(a, b, sim); c != nil {
				out = append(out, *c)
			}
		}
	}
	return out
}

// DetectAndPropagate runs Detect and computes the resulting confidence
// propagation across edges. Ported directly from mod.rs's
// detect_and_propagate.
func (d *Detector) DetectAndPropagate(memories []*coretypes.Memory, edges []coretypes.RelationshipEdge, similarity SimilarityFunc) ([]Contradiction, []ConfidenceAdjustment) {
	contradictions := d.Detect(memories, similarity)

	var adjustments []ConfidenceAdjustment
	for _, c := range contradictions {
		adjustments = append(adjustments, Propagate(c.MemoryIDs, c.ContradictionType, c.ConfidenceDelta, edges, 0)...)
	}

	return contradictions, adjustments
}
