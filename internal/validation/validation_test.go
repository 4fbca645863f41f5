package validation

import (
	"testing"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/decay"
)

func memo(id, summary string, tags ...string) *coretypes.Memory {
	return &coretypes.Memory{
		ID:              id,
		Kind:            coretypes.KindTribal,
		Summary:         summary,
		Confidence:      0.8,
		TransactionTime: time.Now(),
		Tags:            coretypes.NewStringSet(tags...),
		LinkedFiles:     coretypes.NewStringSet(),
		LinkedFunctions: coretypes.NewStringSet(),
		LinkedPatterns:  coretypes.NewStringSet(),
	}
}

func TestDetectAbsoluteStatement(t *testing.T) {
	a := memo("a", "You should always use connection pooling here.", "db")
	b := memo("b", "You must never use connection pooling here.", "db")
	c := detectAbsoluteStatement(a, b)
	if c == nil {
		t.Fatal("expected an absolute-statement contradiction")
	}
	if c.DetectedBy != StrategyAbsoluteStatement {
		t.Fatalf("unexpected strategy: %v", c.DetectedBy)
	}
}

func TestDetectAbsoluteStatement_NoSharedTopic(t *testing.T) {
	a := memo("a", "Always retry on timeout.", "retry")
	b := memo("b", "Never block the UI thread.", "ui")
	if c := detectAbsoluteStatement(a, b); c != nil {
		t.Fatalf("expected no contradiction across unrelated topics, got %+v", c)
	}
}

func TestDetectCrossPattern(t *testing.T) {
	a := memo("a", "This pattern is a best practice, recommended for all services.")
	b := memo("b", "This pattern is an anti-pattern, avoid using it.")
	a.LinkedPatterns.Add("singleton")
	b.LinkedPatterns.Add("singleton")

	c := detectCrossPattern(a, b)
	if c == nil {
		t.Fatal("expected a cross-pattern contradiction")
	}
	if c.DetectedBy != StrategyCrossPattern {
		t.Fatalf("unexpected strategy: %v", c.DetectedBy)
	}
}

func TestDetectCrossPattern_NoSharedPattern(t *testing.T) {
	a := memo("a", "This is good practice.")
	b := memo("b", "This is bad practice.")
	a.LinkedPatterns.Add("singleton")
	b.LinkedPatterns.Add("factory")
	if c := detectCrossPattern(a, b); c != nil {
		t.Fatalf("expected no contradiction without a shared pattern, got %+v", c)
	}
}

func TestDetectFeedback(t *testing.T) {
	a := memo("a", "Use the retry-with-backoff approach.", "retry")
	b := memo("b", "This approach was rejected by the user.", "retry")
	b.Tags.Add("rejected")

	c := detectFeedback(a, b)
	if c == nil {
		t.Fatal("expected a feedback contradiction")
	}
	if c.DetectedBy != StrategyFeedback {
		t.Fatalf("unexpected strategy: %v", c.DetectedBy)
	}
}

func TestDetectTemporalSupersession(t *testing.T) {
	older := memo("old", "Use library X for HTTP calls.", "http")
	newer := memo("new", "Use library Y for HTTP calls.", "http")
	older.TransactionTime = time.Now().Add(-48 * time.Hour)
	newer.TransactionTime = time.Now()

	sim := 0.5
	c := detectTemporalSupersession(older, newer, &sim, 0.3)
	if c == nil {
		t.Fatal("expected a temporal supersession contradiction")
	}
	if c.MemoryIDs[0] != "old" || c.MemoryIDs[1] != "new" {
		t.Fatalf("expected [old, new] order, got %v", c.MemoryIDs)
	}
}

func TestDetectTemporalSupersession_BelowThreshold(t *testing.T) {
	older := memo("old", "Use library X.", "http")
	newer := memo("new", "Use library Y.", "http")
	newer.TransactionTime = older.TransactionTime.Add(time.Hour)
	sim := 0.1
	if c := detectTemporalSupersession(older, newer, &sim, 0.3); c != nil {
		t.Fatalf("expected no contradiction below threshold, got %+v", c)
	}
}

func TestDetectSemantic(t *testing.T) {
	a := memo("a", "This configuration is recommended.")
	b := memo("b", "This configuration is harmful.")
	sim := 0.9
	c := detectSemantic(a, b, &sim)
	if c == nil {
		t.Fatal("expected a semantic contradiction")
	}
}

func TestDetectSemantic_NilSimilarity(t *testing.T) {
	a := memo("a", "good")
	b := memo("b", "bad")
	if c := detectSemantic(a, b, nil); c != nil {
		t.Fatalf("expected no contradiction with nil similarity, got %+v", c)
	}
}

func TestDetectAll_PrefersMostSpecific(t *testing.T) {
	a := memo("a", "Always use the singleton pattern here.", "pattern")
	b := memo("b", "Never use the singleton pattern here.", "pattern")
	a.LinkedPatterns.Add("singleton")
	b.LinkedPatterns.Add("singleton")

	c := detectAll(a, b, nil)
	if c == nil || c.DetectedBy != StrategyAbsoluteStatement {
		t.Fatalf("expected absolute-statement to win as most specific, got %+v", c)
	}
}

func TestDetectConsensus(t *testing.T) {
	memories := []*coretypes.Memory{
		memo("1", "use retries", "retry"),
		memo("2", "use retries too", "retry"),
		memo("3", "retries are good", "retry"),
	}
	groups := DetectConsensus(memories)
	if len(groups) != 1 {
		t.Fatalf("expected 1 consensus group, got %d", len(groups))
	}
	if len(groups[0].MemoryIDs) != 3 {
		t.Fatalf("expected 3 members, got %d", len(groups[0].MemoryIDs))
	}
	if !IsInConsensus("1", groups) {
		t.Fatal("expected memory 1 to be in consensus")
	}
}

func TestDetectConsensus_BelowMinSize(t *testing.T) {
	memories := []*coretypes.Memory{
		memo("1", "a", "x"),
		memo("2", "b", "x"),
	}
	if groups := DetectConsensus(memories); len(groups) != 0 {
		t.Fatalf("expected no consensus below min size, got %d", len(groups))
	}
}

func TestDetectConsensus_SkipsArchived(t *testing.T) {
	memories := []*coretypes.Memory{
		memo("1", "a", "x"),
		memo("2", "b", "x"),
		memo("3", "c", "x"),
	}
	memories[2].Archived = true
	if groups := DetectConsensus(memories); len(groups) != 0 {
		t.Fatalf("expected archived memory excluded from consensus, got %d groups", len(groups))
	}
}

func TestPropagate_AttenuatesByStrengthAndHops(t *testing.T) {
	edges := []coretypes.RelationshipEdge{
		{Source: "a", Target: "b", Strength: 0.5},
		{Source: "b", Target: "c", Strength: 0.5},
	}
	adjustments := Propagate([]string{"a"}, ContradictionDirect, -0.4, edges, 3)
	if len(adjustments) != 2 {
		t.Fatalf("expected 2 adjustments, got %d: %+v", len(adjustments), adjustments)
	}
	if adjustments[0].MemoryID != "b" || adjustments[0].Hops != 1 {
		t.Fatalf("unexpected first hop: %+v", adjustments[0])
	}
	if adjustments[1].MemoryID != "c" || adjustments[1].Hops != 2 {
		t.Fatalf("unexpected second hop: %+v", adjustments[1])
	}
	if adjustments[1].Delta >= adjustments[0].Delta {
		t.Fatalf("expected second-hop delta to be more attenuated (closer to 0): %v vs %v", adjustments[1].Delta, adjustments[0].Delta)
	}
}

func TestPropagate_StopsAtMaxHops(t *testing.T) {
	edges := []coretypes.RelationshipEdge{
		{Source: "a", Target: "b", Strength: 0.9},
		{Source: "b", Target: "c", Strength: 0.9},
		{Source: "c", Target: "d", Strength: 0.9},
	}
	adjustments := Propagate([]string{"a"}, ContradictionDirect, -0.5, edges, 1)
	if len(adjustments) != 1 {
		t.Fatalf("expected propagation to stop after 1 hop, got %d", len(adjustments))
	}
}

type fakeFiles struct {
	missing map[string]bool
}

func (f fakeFiles) Exists(path string) bool       { return !f.missing[path] }
func (f fakeFiles) ContentHash(path string) (string, error) { return "deadbeef", nil }

func TestScoreCitation_NoLinkedFiles(t *testing.T) {
	m := memo("a", "no files")
	if r := scoreCitation(m, fakeFiles{}); r.Score != 1.0 {
		t.Fatalf("expected 1.0 with no linked files, got %v", r.Score)
	}
}

func TestScoreCitation_MissingFile(t *testing.T) {
	m := memo("a", "has files")
	m.LinkedFiles.Add("src/main.go")
	m.LinkedFiles.Add("src/gone.go")

	r := scoreCitation(m, fakeFiles{missing: map[string]bool{"src/gone.go": true}})
	if r.Score != 0.5 {
		t.Fatalf("expected 0.5, got %v", r.Score)
	}
	if len(r.MissingFiles) != 1 || r.MissingFiles[0] != "src/gone.go" {
		t.Fatalf("unexpected missing files: %v", r.MissingFiles)
	}
}

func TestScoreTemporal_Expired(t *testing.T) {
	m := memo("a", "stale")
	past := time.Now().Add(-time.Hour)
	m.ValidUntil = &past
	if s := scoreTemporal(m, decay.DefaultHalfLives(), time.Now()); s != 0.0 {
		t.Fatalf("expected 0 for expired memory, got %v", s)
	}
}

func TestScoreTemporal_FreshMemory(t *testing.T) {
	m := memo("a", "fresh")
	m.TransactionTime = time.Now()
	if s := scoreTemporal(m, decay.DefaultHalfLives(), time.Now()); s != 1.0 {
		t.Fatalf("expected 1.0 for a fresh memory, got %v", s)
	}
}

type fakePatterns struct {
	missing map[string]bool
}

func (f fakePatterns) PatternExists(id string) bool { return !f.missing[id] }

func TestScorePatternAlignment(t *testing.T) {
	m := memo("a", "uses pattern")
	m.LinkedPatterns.Add("p1")
	m.LinkedPatterns.Add("p2")

	s := scorePatternAlignment(m, fakePatterns{missing: map[string]bool{"p2": true}})
	if s != 0.5 {
		t.Fatalf("expected 0.5, got %v", s)
	}
}

func TestFlagForReview_NoFlagWhenHealthy(t *testing.T) {
	scores := DimensionScores{Citation: 1, Temporal: 1, Contradiction: 1, PatternAlignment: 1}
	if flag := FlagForReview("a", scores); flag != nil {
		t.Fatalf("expected no flag, got %+v", flag)
	}
}

func TestFlagForReview_HighSeverity(t *testing.T) {
	scores := DimensionScores{Citation: 0.1, Temporal: 1, Contradiction: 1, PatternAlignment: 1}
	flag := FlagForReview("a", scores)
	if flag == nil {
		t.Fatal("expected a flag")
	}
	if flag.Severity != ReviewHigh {
		t.Fatalf("expected high severity, got %v", flag.Severity)
	}
}

func TestAdjustConfidence_BlendsTowardScore(t *testing.T) {
	m := memo("a", "x")
	m.Confidence = 0.8
	AdjustConfidence(m, 0.2, 0.5)
	if m.Confidence < 0.49 || m.Confidence > 0.51 {
		t.Fatalf("expected blended confidence ~0.5, got %v", m.Confidence)
	}
}

func TestUpdateCitations_RewritesRenamedPaths(t *testing.T) {
	m := memo("a", "x")
	m.LinkedFiles.Add("old/path.go")
	n := UpdateCitations(m, map[string]string{"old/path.go": "new/path.go"})
	if n != 1 {
		t.Fatalf("expected 1 update, got %d", n)
	}
	if !m.LinkedFiles.Has("new/path.go") || m.LinkedFiles.Has("old/path.go") {
		t.Fatalf("expected rewritten link set, got %v", m.LinkedFiles.Slice())
	}
}

type fakeArchiver struct {
	archivedID     string
	archivedReason string
}

func (f *fakeArchiver) Archive(id, actor, reason string) error {
	f.archivedID = id
	f.archivedReason = reason
	return nil
}

func TestArchiveForValidationFailure(t *testing.T) {
	arc := &fakeArchiver{}
	if err := ArchiveForValidationFailure(arc, "mem-1", "critical contradiction"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arc.archivedID != "mem-1" || arc.archivedReason != "critical contradiction" {
		t.Fatalf("unexpected archiver state: %+v", arc)
	}
}

func TestCollectRefreshRequest(t *testing.T) {
	if r := CollectRefreshRequest("mem-1", false, false); r != nil {
		t.Fatalf("expected nil refresh request when nothing changed, got %+v", r)
	}
	r := CollectRefreshRequest("mem-1", true, false)
	if r == nil || r.MemoryID != "mem-1" {
		t.Fatalf("expected a refresh request, got %+v", r)
	}
}

func TestEngine_ValidatePassesCleanMemory(t *testing.T) {
	eng := NewEngine(DefaultConfig(), fakeFiles{}, fakePatterns{})
	m := memo("a", "a clean, uncontested memory", "solo-topic-xyz")
	result, adjustments := eng.Validate(m, []*coretypes.Memory{m}, nil, nil, time.Now())
	if !result.Passed {
		t.Fatalf("expected a clean memory to pass validation: %+v", result)
	}
	if len(adjustments) != 0 {
		t.Fatalf("expected no propagated adjustments, got %v", adjustments)
	}
}

func TestApplyConsensusBoosts(t *testing.T) {
	memories := []*coretypes.Memory{
		memo("1", "a", "x"),
		memo("2", "b", "x"),
		memo("3", "c", "x"),
	}
	for _, m := range memories {
		m.Confidence = 0.5
	}
	groups := DetectConsensus(memories)
	applyConsensusBoosts(memories, groups)
	for _, m := range memories {
		if m.Confidence < 0.69 || m.Confidence > 0.71 {
			t.Fatalf("expected confidence boosted to ~0.7, got %v for %s", m.Confidence, m.ID)
		}
	}
}

func TestEngine_ValidateFlagsContradiction(t *testing.T) {
	a := memo("a", "Always enable caching here.", "cache")
	b := memo("b", "Never enable caching here.", "cache")
	corpus := []*coretypes.Memory{a, b}

	eng := NewEngine(DefaultConfig(), fakeFiles{}, fakePatterns{})
	result, _ := eng.Validate(a, corpus, nil, nil, time.Now())
	if result.Dimensions.Contradiction >= 1.0 {
		t.Fatalf("expected contradiction dimension to be penalized, got %v", result.Dimensions.Contradiction)
	}
	if result.Passed {
		t.Fatalf("expected validation to fail for a contradicted memory: %+v", result)
	}
}
