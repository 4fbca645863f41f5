package consolidation

import (
	"context"
	"testing"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/storage"
)

func TestCosineSimilarity_IdenticalVectors(t *testing.T) {
	v := []float32{1, 2, 3}
	sim := CosineSimilarity(v, v)
	if sim < 0.999 || sim > 1.001 {
		t.Fatalf("expected similarity ~1.0, got %v", sim)
	}
}

func TestCosineSimilarity_OrthogonalVectors(t *testing.T) {
	sim := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if sim > 1e-9 || sim < -1e-9 {
		t.Fatalf("expected similarity ~0, got %v", sim)
	}
}

func TestCosineSimilarity_MismatchedLengths(t *testing.T) {
	if sim := CosineSimilarity([]float32{1}, []float32{1, 2}); sim != 0.0 {
		t.Fatalf("expected 0 for mismatched lengths, got %v", sim)
	}
}

func TestNoveltyAndOverlap(t *testing.T) {
	if !IsNovel(0.5) || IsNovel(0.9) {
		t.Fatal("novelty check failed")
	}
	if !IsOverlap(0.95) || IsOverlap(0.8) {
		t.Fatal("overlap check failed")
	}
}

func TestSplitSentences_Basic(t *testing.T) {
	sentences := SplitSentences("Hello world. This is a test. Final sentence.")
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	if s := SplitSentences(""); s != nil {
		t.Fatalf("expected nil for empty input, got %v", s)
	}
}

func TestSplitSentences_NoPunctuation(t *testing.T) {
	sentences := SplitSentences("this has no ending punctuation")
	if len(sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(sentences))
	}
}

func TestSplitSentences_QuestionAndExclamation(t *testing.T) {
	sentences := SplitSentences("Is this working? Yes it is! Great.")
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
}

func TestExtractKeyphrases_FindsDistinctiveTerm(t *testing.T) {
	docs := []string{
		"the retry backoff uses exponential jitter",
		"the retry backoff uses exponential jitter",
		"completely unrelated database migration notes",
	}
	kp := ExtractKeyphrases(docs, 5)
	if len(kp) == 0 {
		t.Fatal("expected at least one keyphrase")
	}
}

func TestTextRankSummarize_ReturnsRequestedCount(t *testing.T) {
	sentences := []string{
		"We use exponential backoff for retries.",
		"The backoff jitter avoids thundering herd.",
		"Migrations run in a single transaction.",
		"Completely unrelated sentence about weather.",
	}
	ranked := TextRankSummarize(sentences, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked sentences, got %d", len(ranked))
	}
}

func TestTextRankSummarize_SingleSentence(t *testing.T) {
	ranked := TextRankSummarize([]string{"only one sentence here."}, 3)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked sentence, got %d", len(ranked))
	}
}

func TestDensityCluster_GroupsSimilarVectors(t *testing.T) {
	members := []ClusterMember{
		{ID: "a", Vector: []float32{1, 0, 0}},
		{ID: "b", Vector: []float32{0.99, 0.01, 0}},
		{ID: "c", Vector: []float32{0, 1, 0}},
	}
	clusters := DensityCluster(members, ClusterConfig{MinClusterSize: 2, SimilarityThreshold: 0.9})
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d: %+v", len(clusters), clusters)
	}
	if len(clusters[0].MemberIDs) != 2 {
		t.Fatalf("expected 2 members in cluster, got %d", len(clusters[0].MemberIDs))
	}
}

func TestDensityCluster_NoClusterBelowMinSize(t *testing.T) {
	members := []ClusterMember{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	}
	clusters := DensityCluster(members, ClusterConfig{MinClusterSize: 2, SimilarityThreshold: 0.9})
	if len(clusters) != 0 {
		t.Fatalf("expected no clusters for dissimilar pair, got %d", len(clusters))
	}
}

func TestAssessQuality_PassAndFail(t *testing.T) {
	targets := DefaultQualityTargets()
	good := Metrics{Precision: 0.9, CompressionRatio: 3.0, Lift: 1.5, Stability: 0.8}
	a := AssessQuality(good, targets)
	if !a.OverallPass {
		t.Fatalf("expected pass, got %+v", a)
	}

	bad := Metrics{Precision: 0.1, CompressionRatio: 1.0, Lift: 0.5, Stability: 0.1}
	b := AssessQuality(bad, targets)
	if b.OverallPass || len(b.Issues) != 4 {
		t.Fatalf("expected all 4 issues, got %+v", b)
	}
}

func TestDashboard_TracksSuccessRate(t *testing.T) {
	d := NewDashboard()
	targets := DefaultQualityTargets()
	d.RecordRun(Metrics{Precision: 0.9, CompressionRatio: 3, Lift: 1.5, Stability: 0.8}, AssessQuality(Metrics{Precision: 0.9, CompressionRatio: 3, Lift: 1.5, Stability: 0.8}, targets))
	if d.TotalRuns != 1 || d.SuccessfulRuns != 1 {
		t.Fatalf("expected 1/1 runs, got %+v", d)
	}
	if d.SuccessRate < 0.999 {
		t.Fatalf("expected success rate ~1.0, got %v", d.SuccessRate)
	}
}

func TestAutoTune_NudgesThresholdsWhenSuccessRateLow(t *testing.T) {
	d := NewDashboard()
	bad := AssessQuality(Metrics{}, DefaultQualityTargets())
	for i := 0; i < 5; i++ {
		d.RecordRun(Metrics{}, bad)
	}
	before := d.Thresholds.SimilarityThreshold
	adjustments := AutoTune(d)
	if len(adjustments) == 0 {
		t.Fatal("expected tuning adjustments for a failing run streak")
	}
	if d.Thresholds.SimilarityThreshold <= before {
		t.Fatalf("expected similarity_threshold to increase, got %v -> %v", before, d.Thresholds.SimilarityThreshold)
	}
}

func TestAutoTune_NoOpWhenSuccessRateHealthy(t *testing.T) {
	d := NewDashboard()
	good := AssessQuality(Metrics{Precision: 1, CompressionRatio: 5, Lift: 2, Stability: 1}, DefaultQualityTargets())
	for i := 0; i < 5; i++ {
		d.RecordRun(Metrics{}, good)
	}
	if adjustments := AutoTune(d); adjustments != nil {
		t.Fatalf("expected no adjustments, got %+v", adjustments)
	}
}

func TestThrottle_AllowsFirstRunThenBlocks(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MinInterval: time.Hour})
	now := time.Now()
	if !th.Allow(now) {
		t.Fatal("expected first run to be allowed")
	}
	th.MarkRun(now)
	if th.Allow(now.Add(time.Minute)) {
		t.Fatal("expected run to be blocked within the throttle interval")
	}
	if !th.Allow(now.Add(2 * time.Hour)) {
		t.Fatal("expected run to be allowed after the interval elapses")
	}
}

func TestEvaluateTriggers_MemoryPressure(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MinInterval: time.Hour})
	now := time.Now()
	run, reason := EvaluateTriggers(TriggerSignals{MemoryCount: 900, MemoryCapacity: 1000}, th, now)
	if !run || reason != TriggerMemoryPressure {
		t.Fatalf("expected memory pressure trigger, got run=%v reason=%v", run, reason)
	}
}

func TestEvaluateTriggers_ThrottledReturnsFalse(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MinInterval: time.Hour})
	now := time.Now()
	th.MarkRun(now)
	run, reason := EvaluateTriggers(TriggerSignals{MemoryCount: 999, MemoryCapacity: 1000}, th, now.Add(time.Minute))
	if run || reason != TriggerNone {
		t.Fatalf("expected throttled no-run, got run=%v reason=%v", run, reason)
	}
}

// fakeConsolidationStore implements consolidationStore for pipeline tests.
type fakeConsolidationStore struct {
	memories   map[string]*coretypes.Memory
	embeddings map[string][]float32
	created    []*coretypes.Memory
	archived   []string
}

func (f *fakeConsolidationStore) QueryBy(q storage.QueryFilters) ([]*coretypes.Memory, error) {
	var out []*coretypes.Memory
	for _, m := range f.memories {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeConsolidationStore) GetEmbedding(id string) ([]float32, error) {
	return f.embeddings[id], nil
}

func (f *fakeConsolidationStore) Create(m *coretypes.Memory) error {
	f.created = append(f.created, m)
	return nil
}

func (f *fakeConsolidationStore) Archive(id, actor, reason string) error {
	f.archived = append(f.archived, id)
	return nil
}

func (f *fakeConsolidationStore) GetStats() (*storage.Stats, error) {
	return &storage.Stats{MemoryCount: len(f.memories)}, nil
}

func TestPipeline_RunFormsAbstractFromCluster(t *testing.T) {
	old := time.Now().Add(-30 * 24 * time.Hour)
	m1 := &coretypes.Memory{ID: "m1", Kind: coretypes.KindTribal, Summary: "retries use exponential backoff.", TransactionTime: old, Confidence: 0.7, Tags: coretypes.NewStringSet("retry")}
	m2 := &coretypes.Memory{ID: "m2", Kind: coretypes.KindTribal, Summary: "backoff uses exponential jitter.", TransactionTime: old, Confidence: 0.6, Tags: coretypes.NewStringSet("retry")}

	store := &fakeConsolidationStore{
		memories: map[string]*coretypes.Memory{"m1": m1, "m2": m2},
		embeddings: map[string][]float32{
			"m1": {1, 0, 0},
			"m2": {0.99, 0.01, 0},
		},
	}

	p := NewPipeline(store, nil, Config{MinClusterSize: 2, SimilarityThreshold: 0.9, SelectionMinAge: 24 * time.Hour})
	result, err := p.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClustersFormed != 1 {
		t.Fatalf("expected 1 cluster, got %d", result.ClustersFormed)
	}
	if len(result.AbstractsCreated) != 1 {
		t.Fatalf("expected 1 abstract created, got %d", len(result.AbstractsCreated))
	}
	if len(store.archived) != 2 {
		t.Fatalf("expected both sources archived, got %d", len(store.archived))
	}
}
