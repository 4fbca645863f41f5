package causal

import (
	"math"
	"strings"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// Strategy weights, grounded on inference/strategies/*.rs. temporalProximityWeight
// is not shipped in the retrieval pack; it is added here to round the
// composite's weights to 1.0.
const (
	explicitReferenceWeight = 0.4
	semanticSimilarityWeight = 0.3
	patternMatchingWeight   = 0.15
	temporalProximityWeight = 0.15

	// DefaultEdgeThreshold is the minimum composite score to suggest an edge.
	DefaultEdgeThreshold = 0.5
)

// InferenceResult is the outcome of scoring one candidate pair.
type InferenceResult struct {
	SourceID          string
	TargetID          string
	Strength          float64
	SuggestedRelation coretypes.CausalRelation
	AboveThreshold    bool
}

// Engine evaluates memory pairs for causal relationships.
type Engine struct {
	threshold float64
}

// NewEngine returns an inference Engine using DefaultEdgeThreshold.
func NewEngine() *Engine { return &Engine{threshold: DefaultEdgeThreshold} }

// NewEngineWithThreshold returns an inference Engine using a custom threshold.
func NewEngineWithThreshold(threshold float64) *Engine { return &Engine{threshold: threshold} }

// Threshold returns the current minimum score.
func (e *Engine) Threshold() float64 { return e.threshold }

// Infer scores one candidate pair and suggests a relation.
func (e *Engine) Infer(source, target *coretypes.Memory) InferenceResult {
	strength := compositeScore(source, target)
	return InferenceResult{
		SourceID:          source.ID,
		TargetID:          target.ID,
		Strength:          strength,
		SuggestedRelation: suggestRelation(source, target),
		AboveThreshold:    strength >= e.threshold,
	}
}

// InferBatch scores source against every candidate, returning only the
// results above threshold.
func (e *Engine) InferBatch(source *coretypes.Memory, candidates []*coretypes.Memory) []InferenceResult {
	var out []InferenceResult
	for _, c := range candidates {
		if c.ID == source.ID {
			continue
		}
		r := e.Infer(source, c)
		if r.AboveThreshold {
			out = append(out, r)
		}
	}
	return out
}

// compositeScore combines the four strategies by their fixed weights.
func compositeScore(source, target *coretypes.Memory) float64 {
	score := explicitReferenceWeight*explicitReferenceScore(source, target) +
		semanticSimilarityWeight*semanticSimilarityScore(source, target) +
		patternMatchingWeight*patternMatchingScore(source, target) +
		temporalProximityWeight*temporalProximityScore(source, target)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// explicitReferenceScore detects direct supersession links or "ref:<id>"
// tag conventions. Grounded on inference/strategies/explicit_reference.rs.
func explicitReferenceScore(source, target *coretypes.Memory) float64 {
	if source.Supersedes != nil && *source.Supersedes == target.ID {
		return 1.0
	}
	if source.SupersededBy != nil && *source.SupersededBy == target.ID {
		return 1.0
	}
	refTag := "ref:" + target.ID
	if source.Tags.Has(refTag) {
		return 0.8
	}
	shortID := target.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	for tag := range source.Tags {
		if strings.Contains(tag, shortID) {
			return 0.4
		}
	}
	return 0.0
}

// semanticSimilarityScore uses tag overlap, kind match, and content hash
// equality as a lightweight proxy for embedding similarity. Grounded on
// inference/strategies/semantic_similarity.rs.
func semanticSimilarityScore(source, target *coretypes.Memory) float64 {
	tagScore := jaccard(source.Tags, target.Tags)
	kindScore := 0.0
	if source.Kind == target.Kind {
		kindScore = 0.3
	}
	hashScore := 0.0
	if source.ContentHash != "" && source.ContentHash == target.ContentHash {
		hashScore = 1.0
	}
	score := tagScore*0.5 + kindScore*0.2 + hashScore*0.3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// patternMatchingScore rewards shared linked patterns, with a small boost
// for more than one shared pattern. Grounded on
// inference/strategies/pattern_matching.rs.
func patternMatchingScore(source, target *coretypes.Memory) float64 {
	if len(source.LinkedPatterns) == 0 || len(target.LinkedPatterns) == 0 {
		return 0.0
	}
	shared := 0
	for p := range source.LinkedPatterns {
		if target.LinkedPatterns.Has(p) {
			shared++
		}
	}
	union := coretypes.NewStringSet(source.LinkedPatterns.Slice()...)
	for p := range target.LinkedPatterns {
		union.Add(p)
	}
	total := len(union.Slice())
	if total == 0 {
		return 0.0
	}
	j := float64(shared) / float64(total)
	boost := 0.0
	if shared > 1 {
		boost = 0.1 * float64(shared-1)
	}
	score := j + boost
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// temporalProximityScore rewards memories created close together in time,
// decaying smoothly with the gap. Not present in the retrieval pack;
// added to round the composite weights to 1.0 using the same exponential
// shape the decay engine uses for temporal factors.
func temporalProximityScore(source, target *coretypes.Memory) float64 {
	delta := source.TransactionTime.Sub(target.TransactionTime)
	if delta < 0 {
		delta = -delta
	}
	hours := delta.Hours()
	return math.Exp(-hours / 24.0)
}

// jaccard computes the Jaccard similarity of two tag sets.
func jaccard(a, b coretypes.StringSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	inter := 0
	for t := range a {
		if b.Has(t) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// suggestRelation picks the most likely relation type from memory
// properties, grounded on inference/mod.rs's suggest_relation.
func suggestRelation(source, target *coretypes.Memory) coretypes.CausalRelation {
	if source.Supersedes != nil && *source.Supersedes == target.ID {
		return coretypes.RelationSupersedes
	}
	if source.TransactionTime.After(target.TransactionTime) {
		if source.Kind == target.Kind {
			return coretypes.RelationDerivedFrom
		}
		if source.TransactionTime.Sub(target.TransactionTime) < 5*time.Minute {
			return coretypes.RelationTriggeredBy
		}
	}
	return coretypes.RelationSupports
}
