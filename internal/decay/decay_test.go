package decay

import (
	"math"
	"testing"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

func TestTemporalFactor(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("InfiniteHalfLife", func(t *testing.T) {
		f := temporalFactor(0, now.Add(-365*24*time.Hour), now)
		if f != 1.0 {
			t.Errorf("expected 1.0 for infinite half-life, got %v", f)
		}
	})

	t.Run("OneHalfLifeElapsed", func(t *testing.T) {
		halfLife := 30 * 24 * time.Hour
		f := temporalFactor(halfLife, now.Add(-halfLife), now)
		if math.Abs(f-0.5) > 0.001 {
			t.Errorf("expected ~0.5 after one half-life, got %v", f)
		}
	})

	t.Run("NoElapsedTime", func(t *testing.T) {
		f := temporalFactor(30*24*time.Hour, now, now)
		if math.Abs(f-1.0) > 1e-9 {
			t.Errorf("expected 1.0 with no elapsed time, got %v", f)
		}
	})
}

func TestUsageFactor(t *testing.T) {
	cases := []struct {
		accessCount int
		wantMin     float64
		wantMax     float64
	}{
		{0, 1.0, 1.0},
		{9, 1.19, 1.21},
		{1_000_000, 1.5, 1.5},
	}
	for _, c := range cases {
		got := usageFactor(c.accessCount)
		if got < c.wantMin-0.01 || got > c.wantMax+0.01 {
			t.Errorf("usageFactor(%d) = %v, want in [%v,%v]", c.accessCount, got, c.wantMin, c.wantMax)
		}
	}
	if usageFactor(1_000_000) != 1.5 {
		t.Error("usage factor must cap at 1.5")
	}
}

func TestCitationFactor(t *testing.T) {
	if f := citationFactor(0.5, 0); f != 1.0 {
		t.Errorf("zero stale ratio should yield 1.0, got %v", f)
	}
	if f := citationFactor(0.5, 1.0); f != 0.5 {
		t.Errorf("full stale ratio at alpha 0.5 should yield 0.5, got %v", f)
	}
	if f := citationFactor(2.0, 1.0); f != 0 {
		t.Errorf("citation factor should floor at 0, got %v", f)
	}
}

func TestImportanceFactor(t *testing.T) {
	if importanceFactor(coretypes.ImportanceCritical) <= 1.0 {
		t.Error("critical importance must be > 1.0")
	}
	if importanceFactor(coretypes.ImportanceLow) >= 1.0 {
		t.Error("low importance must be < 1.0")
	}
}

func TestProcessBatch_PreservesOrderAndClamps(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []RecordInput{
		{MemoryID: "a", Kind: coretypes.KindEpisodic, Confidence: 1.0, LastAccessed: now.Add(-400 * 24 * time.Hour), AccessCount: 0},
		{MemoryID: "b", Kind: coretypes.KindCore, Confidence: 0.8, LastAccessed: now.Add(-10 * 365 * 24 * time.Hour), AccessCount: 1000},
		{MemoryID: "c", Kind: coretypes.KindDecision, Confidence: 0.5, LastAccessed: now, AccessCount: 5, Importance: coretypes.ImportanceCritical},
	}

	results := ProcessBatch(records, Context{Now: now})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].MemoryID != want {
			t.Errorf("order not preserved at index %d: got %s want %s", i, results[i].MemoryID, want)
		}
	}

	for _, r := range results {
		if r.DecayedConfidence < 0 || r.DecayedConfidence > 1 {
			t.Errorf("confidence out of [0,1] for %s: %v", r.MemoryID, r.DecayedConfidence)
		}
	}

	// b is Core (infinite half-life) with high usage — should resist decay
	// far more than a's rapidly-decaying episodic kind despite a's higher
	// starting confidence.
	if results[1].DecayedConfidence <= results[0].DecayedConfidence {
		t.Errorf("core memory should decay less than long-idle episodic memory: core=%v episodic=%v",
			results[1].DecayedConfidence, results[0].DecayedConfidence)
	}
}

func TestProcessBatch_ArchivalDecision(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []RecordInput{
		{MemoryID: "stale", Kind: coretypes.KindEpisodic, Confidence: 0.2, LastAccessed: now.Add(-365 * 24 * time.Hour), AccessCount: 0},
		{MemoryID: "fresh", Kind: coretypes.KindCore, Confidence: 0.9, LastAccessed: now, AccessCount: 10},
		{MemoryID: "already-archived", Kind: coretypes.KindEpisodic, Confidence: 0.01, LastAccessed: now.Add(-1000 * 24 * time.Hour), AccessCount: 0, Archived: true},
	}

	results := ProcessBatch(records, Context{Now: now})

	if results[0].Archival == nil {
		t.Error("expected archival decision for stale low-confidence memory")
	}
	if results[1].Archival != nil {
		t.Error("expected no archival decision for fresh high-confidence core memory")
	}
	if results[2].Archival != nil {
		t.Error("already-archived memories should not produce a new archival decision")
	}
}

func TestProcessBatch_StaleLinksAndActivePatterns(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []RecordInput{
		{MemoryID: "a", Kind: coretypes.KindCodePattern, Confidence: 1.0, LastAccessed: now, LinkedFiles: []string{"a.go", "b.go"}},
	}

	ctx := Context{
		Now: now,
		StaleLinks: func(input RecordInput) (int, int) {
			return 1, len(input.LinkedFiles)
		},
		ActivePatterns: func(input RecordInput) bool { return false },
	}

	results := ProcessBatch(records, ctx)
	b := results[0].Breakdown
	if b.Citation >= 1.0 {
		t.Errorf("expected citation factor penalized by stale links, got %v", b.Citation)
	}
	if b.Pattern != 1.0 {
		t.Errorf("expected no pattern boost when ActivePatterns returns false, got %v", b.Pattern)
	}
}

func TestDefaultHalfLives_CoreIsInfinite(t *testing.T) {
	hl := DefaultHalfLives()
	if hl[coretypes.KindCore] != 0 {
		t.Error("core half-life must be the infinite sentinel (0)")
	}
}

func TestHalfLives_WithOverrides(t *testing.T) {
	hl := DefaultHalfLives()
	overridden := hl.WithOverrides(map[coretypes.Kind]time.Duration{
		coretypes.KindEpisodic: 1 * time.Hour,
	})
	if overridden[coretypes.KindEpisodic] != 1*time.Hour {
		t.Errorf("expected override to replace episodic half-life, got %v", overridden[coretypes.KindEpisodic])
	}
	if overridden[coretypes.KindDecision] != hl[coretypes.KindDecision] {
		t.Error("non-overridden kinds should be unaffected")
	}
}

func TestFromMemory(t *testing.T) {
	m := &coretypes.Memory{
		ID:           "mem-1",
		Kind:         coretypes.KindSemantic,
		Confidence:   0.7,
		Importance:   coretypes.ImportanceHigh,
		LastAccessed: time.Now(),
		AccessCount:  3,
		LinkedFiles:  coretypes.NewStringSet("a.go"),
	}
	input := FromMemory(m)
	if input.MemoryID != m.ID || input.Kind != m.Kind || input.Confidence != m.Confidence {
		t.Error("FromMemory did not carry over core fields")
	}
	if len(input.LinkedFiles) != 1 || input.LinkedFiles[0] != "a.go" {
		t.Errorf("expected linked files to carry over, got %v", input.LinkedFiles)
	}
}
