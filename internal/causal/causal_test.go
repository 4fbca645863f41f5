package causal

import (
	"errors"
	"testing"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

func makeMemory(id string, kind coretypes.Kind, tags ...string) *coretypes.Memory {
	now := time.Now()
	return &coretypes.Memory{
		ID:              id,
		Kind:            kind,
		ContentHash:     "hash-" + id,
		Summary:         "summary of " + id,
		Confidence:      0.9,
		Importance:      coretypes.ImportanceNormal,
		TransactionTime: now,
		ValidTime:       now,
		LastAccessed:    now,
		Tags:            coretypes.NewStringSet(tags...),
		LinkedPatterns:  coretypes.NewStringSet(),
	}
}

func edge(source, target string, relation coretypes.CausalRelation, strength float64) *coretypes.CausalEdge {
	return &coretypes.CausalEdge{ID: source + "-" + target, Source: source, Target: target, Relation: relation, Strength: strength}
}

func TestGraph_RejectsSelfLoop(t *testing.T) {
	g := NewGraph()
	err := g.AddEdge(edge("a", "a", coretypes.RelationCaused, 0.9))
	if err == nil {
		t.Fatal("expected self-loop to be rejected")
	}
	var causalErr *coretypes.CausalError
	if !errors.As(err, &causalErr) {
		t.Fatalf("expected CausalError, got %T", err)
	}
}

func TestGraph_RejectsCycle(t *testing.T) {
	g := NewGraph()
	if err := g.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.9)); err != nil {
		t.Fatalf("unexpected error adding a->b: %v", err)
	}
	if err := g.AddEdge(edge("b", "c", coretypes.RelationCaused, 0.9)); err != nil {
		t.Fatalf("unexpected error adding b->c: %v", err)
	}
	if err := g.AddEdge(edge("c", "a", coretypes.RelationCaused, 0.9)); err == nil {
		t.Fatal("expected c->a to be rejected as a cycle")
	}
}

func TestGraph_AllowsDiamond(t *testing.T) {
	g := NewGraph()
	edges := []*coretypes.CausalEdge{
		edge("a", "b", coretypes.RelationCaused, 0.9),
		edge("a", "c", coretypes.RelationCaused, 0.9),
		edge("b", "d", coretypes.RelationCaused, 0.9),
		edge("c", "d", coretypes.RelationCaused, 0.9),
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("unexpected error adding diamond edge %s->%s: %v", e.Source, e.Target, err)
		}
	}
}

func TestGraph_PruneWeakEdges(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationSupports, 0.1))
	_ = g.AddEdge(edge("a", "c", coretypes.RelationSupports, 0.8))

	result := g.PruneWeakEdges(DefaultPruneStrength)
	if result.EdgesRemoved != 1 {
		t.Fatalf("expected 1 weak edge removed, got %d", result.EdgesRemoved)
	}
	if _, ok := g.Edge("a", "b"); ok {
		t.Fatal("expected weak edge a->b to be gone")
	}
	if _, ok := g.Edge("a", "c"); !ok {
		t.Fatal("expected strong edge a->c to survive")
	}
}

func TestGraph_PruneUnvalidatedInferred(t *testing.T) {
	g := NewGraph()
	strong := edge("a", "b", coretypes.RelationSupports, 0.9)
	strong.Inferred = true
	_ = g.AddEdge(strong)

	withEvidence := edge("a", "c", coretypes.RelationSupports, 0.9)
	withEvidence.Inferred = true
	withEvidence.Evidence = []coretypes.Evidence{{Description: "seen", Source: "test"}}
	_ = g.AddEdge(withEvidence)

	removed := g.PruneUnvalidatedInferred()
	if removed != 1 {
		t.Fatalf("expected 1 unvalidated inferred edge removed, got %d", removed)
	}
	if _, ok := g.Edge("a", "c"); !ok {
		t.Fatal("expected edge with evidence to survive")
	}
}

func TestGraph_PruneRemovesOrphans(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationSupports, 0.1))
	g.PruneWeakEdges(DefaultPruneStrength)
	if g.HasNode("a") || g.HasNode("b") {
		t.Fatal("expected both nodes to be removed as orphans once their only edge is pruned")
	}
}

func TestInference_ExplicitSupersession(t *testing.T) {
	target := makeMemory("target-1", coretypes.KindDecision)
	sourceID := "target-1"
	source := makeMemory("source-1", coretypes.KindDecision)
	source.Supersedes = &sourceID

	eng := NewEngine()
	result := eng.Infer(source, target)
	if result.Strength < 0.3 {
		t.Fatalf("expected strong explicit-reference score, got %v", result.Strength)
	}
	if result.SuggestedRelation != coretypes.RelationSupersedes {
		t.Fatalf("expected supersedes relation, got %v", result.SuggestedRelation)
	}
}

func TestInference_SemanticSimilarity(t *testing.T) {
	a := makeMemory("a", coretypes.KindInsight, "go", "concurrency")
	b := makeMemory("b", coretypes.KindInsight, "go", "concurrency")
	b.ContentHash = a.ContentHash

	eng := NewEngine()
	result := eng.Infer(a, b)
	if !result.AboveThreshold {
		t.Fatalf("expected identical-tag identical-hash pair to score above threshold, got %v", result.Strength)
	}
}

func TestInference_Unrelated(t *testing.T) {
	a := makeMemory("a", coretypes.KindInsight, "go")
	b := makeMemory("b", coretypes.KindEpisodic, "rust")
	b.TransactionTime = a.TransactionTime.Add(-90 * 24 * time.Hour)

	eng := NewEngine()
	result := eng.Infer(a, b)
	if result.AboveThreshold {
		t.Fatalf("expected unrelated pair to score below threshold, got %v", result.Strength)
	}
}

func TestInference_BatchExcludesSelf(t *testing.T) {
	a := makeMemory("a", coretypes.KindInsight, "go")
	eng := NewEngine()
	results := eng.InferBatch(a, []*coretypes.Memory{a})
	if len(results) != 0 {
		t.Fatalf("expected self to be excluded from batch inference, got %d results", len(results))
	}
}

func TestTraversal_TraceEffectsMultiplyStrength(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.8))
	_ = g.AddEdge(edge("b", "c", coretypes.RelationCaused, 0.5))

	result := g.TraceEffects("a", DefaultTraversalConfig())
	if len(result.Nodes) != 2 {
		t.Fatalf("expected 2 downstream nodes, got %d", len(result.Nodes))
	}
	var cNode *TraversalNode
	for i := range result.Nodes {
		if result.Nodes[i].MemoryID == "c" {
			cNode = &result.Nodes[i]
		}
	}
	if cNode == nil {
		t.Fatal("expected c to be reachable from a")
	}
	if cNode.Depth != 2 {
		t.Fatalf("expected c at depth 2, got %d", cNode.Depth)
	}
	wantStrength := 0.8 * 0.5
	if diff := cNode.PathStrength - wantStrength; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected path strength %v, got %v", wantStrength, cNode.PathStrength)
	}
}

func TestTraversal_TraceOriginsMirrorsEffects(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.8))

	effects := g.TraceEffects("a", DefaultTraversalConfig())
	origins := g.TraceOrigins("b", DefaultTraversalConfig())
	if len(effects.Nodes) != 1 || len(origins.Nodes) != 1 {
		t.Fatalf("expected symmetric single-hop results, got effects=%d origins=%d", len(effects.Nodes), len(origins.Nodes))
	}
	if origins.Nodes[0].MemoryID != "a" {
		t.Fatalf("expected origin of b to be a, got %s", origins.Nodes[0].MemoryID)
	}
}

func TestTraversal_Neighbors(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.8))
	_ = g.AddEdge(edge("c", "a", coretypes.RelationSupports, 0.6))

	result := g.Neighbors("a", DefaultTraversalConfig())
	if len(result.Nodes) != 2 {
		t.Fatalf("expected 2 direct neighbors (one in, one out), got %d", len(result.Nodes))
	}
}

func TestTraversal_Bidirectional(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.8))
	_ = g.AddEdge(edge("c", "a", coretypes.RelationSupports, 0.6))

	result := g.Bidirectional("a", DefaultTraversalConfig())
	ids := map[string]bool{}
	for _, n := range result.Nodes {
		ids[n.MemoryID] = true
	}
	if !ids["b"] || !ids["c"] {
		t.Fatalf("expected both origin and effect nodes present, got %v", result.Nodes)
	}
}

func TestTraversal_RespectsMaxDepthAndMinStrength(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.1))
	_ = g.AddEdge(edge("b", "c", coretypes.RelationCaused, 0.9))

	cfg := TraversalConfig{MaxDepth: 5, MaxNodes: 50, MinStrength: 0.2}
	result := g.TraceEffects("a", cfg)
	if len(result.Nodes) != 0 {
		t.Fatalf("expected weak first hop to block traversal entirely, got %v", result.Nodes)
	}
}

func TestChainConfidence(t *testing.T) {
	score := ChainConfidence([]float64{0.9, 0.9}, 1)
	want := 0.9 * 0.95
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %v, got %v", want, score)
	}
	if ChainConfidence(nil, 0) != 0.0 {
		t.Fatal("expected empty edge strengths to yield zero confidence")
	}
}

func TestConfidenceLevelFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  ConfidenceLevel
	}{
		{0.95, ConfidenceHigh},
		{0.6, ConfidenceMedium},
		{0.35, ConfidenceLow},
		{0.1, ConfidenceVeryLow},
	}
	for _, c := range cases {
		if got := ConfidenceLevelFromScore(c.score); got != c.want {
			t.Fatalf("score %v: expected %v, got %v", c.score, c.want, got)
		}
	}
}

func TestRenderTemplate(t *testing.T) {
	out := RenderTemplate(coretypes.RelationSupersedes, "New decision", "Old decision")
	if out != "New decision supersedes Old decision as a newer version." {
		t.Fatalf("unexpected rendering: %q", out)
	}
}

func TestBuildNarrative_GroupsBySections(t *testing.T) {
	g := NewGraph()
	_ = g.AddEdge(edge("origin", "target", coretypes.RelationCaused, 0.9))
	_ = g.AddEdge(edge("target", "effect", coretypes.RelationDerivedFrom, 0.7))

	summaries := func(id string) string { return "memory " + id }
	n := BuildNarrative(g, "target", summaries)

	if len(n.Sections) == 0 {
		t.Fatal("expected at least one section")
	}
	headers := map[string]bool{}
	for _, s := range n.Sections {
		headers[s.Header] = true
	}
	if !headers["Origins"] || !headers["Effects"] {
		t.Fatalf("expected Origins and Effects sections, got %v", headers)
	}
}

type fakeCausalStore struct {
	edges []*coretypes.CausalEdge
}

func (f *fakeCausalStore) LoadCausalGraph() ([]*coretypes.CausalEdge, error) {
	return f.edges, nil
}

func (f *fakeCausalStore) AddCausalEdge(e *coretypes.CausalEdge) error {
	if e.ID == "" {
		e.ID = e.Source + "-" + e.Target
	}
	f.edges = append(f.edges, e)
	return nil
}

func (f *fakeCausalStore) AddCausalEvidence(edgeID string, ev coretypes.Evidence) error {
	for _, e := range f.edges {
		if e.ID == edgeID {
			e.Evidence = append(e.Evidence, ev)
			return nil
		}
	}
	return coretypes.NewNotFound(edgeID)
}

func TestService_LoadsPersistedGraph(t *testing.T) {
	store := &fakeCausalStore{edges: []*coretypes.CausalEdge{edge("a", "b", coretypes.RelationCaused, 0.9)}}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Graph().HasNode("a") {
		t.Fatal("expected loaded edge to populate in-memory graph")
	}
}

func TestService_AddEdgePersistsAndAppliesToGraph(t *testing.T) {
	store := &fakeCausalStore{}
	svc, _ := NewService(store)
	if err := svc.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.edges) != 1 {
		t.Fatalf("expected edge persisted to store, got %d", len(store.edges))
	}
	if !svc.Graph().HasNode("a") {
		t.Fatal("expected edge applied to in-memory graph")
	}
}

func TestService_AddEdgeRejectsCycleWithoutPersisting(t *testing.T) {
	store := &fakeCausalStore{}
	svc, _ := NewService(store)
	_ = svc.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.9))
	err := svc.AddEdge(edge("b", "a", coretypes.RelationCaused, 0.9))
	if err == nil {
		t.Fatal("expected cycle to be rejected")
	}
	if len(store.edges) != 1 {
		t.Fatalf("expected cyclic edge to never reach storage, got %d persisted edges", len(store.edges))
	}
}

func TestService_Counterfactual(t *testing.T) {
	store := &fakeCausalStore{}
	svc, _ := NewService(store)
	_ = svc.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.9))
	_ = svc.AddEdge(edge("b", "c", coretypes.RelationCaused, 0.8))

	impact := svc.Counterfactual("a", DefaultTraversalConfig())
	if len(impact.Affected) != 2 {
		t.Fatalf("expected 2 affected memories, got %d", len(impact.Affected))
	}
	if impact.MaxDepth != 2 {
		t.Fatalf("expected max depth 2, got %d", impact.MaxDepth)
	}
}

func TestService_Intervention(t *testing.T) {
	store := &fakeCausalStore{}
	svc, _ := NewService(store)
	_ = svc.AddEdge(edge("a", "b", coretypes.RelationCaused, 0.9))

	impact := svc.Intervention("a", DefaultTraversalConfig())
	if len(impact.AtRisk) != 1 {
		t.Fatalf("expected 1 at-risk memory, got %d", len(impact.AtRisk))
	}
	wantSeverity := 1.0 - 0.9
	if diff := impact.AtRisk[0].PathStrength - wantSeverity; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected severity %v, got %v", wantSeverity, impact.AtRisk[0].PathStrength)
	}
}

func TestService_InferAndPersist(t *testing.T) {
	store := &fakeCausalStore{}
	svc, _ := NewService(store)

	supersededID := "target"
	source := makeMemory("source", coretypes.KindDecision)
	source.Supersedes = &supersededID
	target := makeMemory("target", coretypes.KindDecision)

	results, err := svc.InferAndPersist(source, []*coretypes.Memory{target})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 accepted inference, got %d", len(results))
	}
	if !svc.Graph().HasNode("source") {
		t.Fatal("expected inferred edge to be applied to graph")
	}
}
