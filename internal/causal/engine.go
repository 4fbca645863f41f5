package causal

import (
	"fmt"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// causalStore is the subset of storage.Store the causal engine depends
// on, kept narrow so this package never imports storage directly.
type causalStore interface {
	LoadCausalGraph() ([]*coretypes.CausalEdge, error)
	AddCausalEdge(e *coretypes.CausalEdge) error
	AddCausalEvidence(edgeID string, ev coretypes.Evidence) error
}

// Service is the causal subsystem's entry point: an in-memory Graph kept
// in sync with durable storage, an inference Engine, and the
// traversal/narrative operations layered on top.
type Service struct {
	store causalStore
	graph *Graph
	infer *Engine
}

// NewService loads the persisted causal graph and returns a ready
// Service. Grounded on how store.go's NewStore rehydrates schema state
// at startup.
func NewService(store causalStore) (*Service, error) {
	edges, err := store.LoadCausalGraph()
	if err != nil {
		return nil, err
	}
	return &Service{
		store: store,
		graph: LoadGraph(edges),
		infer: NewEngine(),
	}, nil
}

// Graph exposes the in-memory DAG for direct traversal/narrative calls.
func (s *Service) Graph() *Graph { return s.graph }

// InferenceEngine exposes the inference engine for custom threshold use.
func (s *Service) InferenceEngine() *Engine { return s.infer }

// AddEdge validates e against the in-memory graph (cycle check) before
// persisting it, then applies it to the in-memory graph. Keeping the
// cycle check in memory avoids a round trip through the recursive-CTE
// fallback for the common case.
func (s *Service) AddEdge(e *coretypes.CausalEdge) error {
	if s.graph.WouldCreateCycle(e.Source, e.Target) {
		return coretypes.NewCycleDetected(e.Source, e.Target)
	}
	if err := s.store.AddCausalEdge(e); err != nil {
		return err
	}
	return s.graph.AddEdge(e)
}

// AddEvidence persists new evidence for edgeID and appends it to the
// in-memory copy if present.
func (s *Service) AddEvidence(edgeID, sourceID, targetID string, ev coretypes.Evidence) error {
	if err := s.store.AddCausalEvidence(edgeID, ev); err != nil {
		return err
	}
	if e, ok := s.graph.Edge(sourceID, targetID); ok && e.ID == edgeID {
		e.Evidence = append(e.Evidence, ev)
	}
	return nil
}

// InferAndPersist scores source against candidates, persisting and
// applying every suggestion above threshold as an inferred edge. Edges
// that would create a cycle are skipped rather than erroring, since
// batch inference expects some candidates to be unsuitable.
func (s *Service) InferAndPersist(source *coretypes.Memory, candidates []*coretypes.Memory) ([]InferenceResult, error) {
	results := s.infer.InferBatch(source, candidates)
	accepted := make([]InferenceResult, 0, len(results))
	for _, r := range results {
		if s.graph.WouldCreateCycle(r.SourceID, r.TargetID) {
			continue
		}
		edge := &coretypes.CausalEdge{
			Source:   r.SourceID,
			Target:   r.TargetID,
			Relation: r.SuggestedRelation,
			Strength: r.Strength,
			Inferred: true,
		}
		if err := s.AddEdge(edge); err != nil {
			continue
		}
		accepted = append(accepted, r)
	}
	return accepted, nil
}

// Narrative composes a causal narrative for memoryID using summaries for
// display text.
func (s *Service) Narrative(memoryID string, summaries summaryLookup) Narrative {
	return BuildNarrative(s.graph, memoryID, summaries)
}

// CounterfactualImpact is the result of asking "what if this memory
// didn't exist?": the set of memories downstream of it, how deep the
// chain runs, and a plain-text summary. Grounded on spec.md §4.5's
// counterfactual/intervention analysis (no Rust source shipped).
type CounterfactualImpact struct {
	MemoryID      string
	Affected      []TraversalNode
	MaxDepth      int
	ImpactSummary string
}

// Counterfactual answers "what if memoryID didn't exist?" by tracing its
// forward effects: every downstream memory, transitively, weighted by
// path strength.
func (s *Service) Counterfactual(memoryID string, cfg TraversalConfig) CounterfactualImpact {
	result := s.graph.TraceEffects(memoryID, cfg)
	return CounterfactualImpact{
		MemoryID:      memoryID,
		Affected:      result.Nodes,
		MaxDepth:      result.MaxDepthReached,
		ImpactSummary: impactSummary(len(result.Nodes), result.MaxDepthReached),
	}
}

// InterventionImpact is the result of asking "if we change this, what
// breaks?": like Counterfactual, but weighted toward low-strength
// downstream edges, since a changed (not removed) memory is most likely
// to break things it weakly supports rather than things it strongly
// caused.
type InterventionImpact struct {
	MemoryID      string
	AtRisk        []TraversalNode
	MaxDepth      int
	ImpactSummary string
}

// Intervention answers "if we change this, what breaks?" by tracing
// forward effects with severity re-weighted toward the weakest links in
// each path, since those are what a content change is most likely to
// invalidate.
func (s *Service) Intervention(memoryID string, cfg TraversalConfig) InterventionImpact {
	result := s.graph.TraceEffects(memoryID, cfg)
	atRisk := make([]TraversalNode, len(result.Nodes))
	for i, n := range result.Nodes {
		severity := 1.0 - n.PathStrength
		atRisk[i] = TraversalNode{MemoryID: n.MemoryID, Depth: n.Depth, PathStrength: severity}
	}
	return InterventionImpact{
		MemoryID:      memoryID,
		AtRisk:        atRisk,
		MaxDepth:      result.MaxDepthReached,
		ImpactSummary: impactSummary(len(atRisk), result.MaxDepthReached),
	}
}

func impactSummary(affected, depth int) string {
	switch {
	case affected == 0:
		return "no downstream memories would be affected"
	case affected == 1:
		return "1 downstream memory would be affected"
	default:
		return fmt.Sprintf("%d downstream memories would be affected across up to %d hops", affected, depth)
	}
}
