package crdt

import (
	"testing"
	"time"
)

func TestGCounter_MergeConverges(t *testing.T) {
	a := NewGCounter()
	a.Add("agent-a", 3)
	b := NewGCounter()
	b.Add("agent-b", 5)

	a.Merge(b)
	b.Merge(a)

	if a.Value() != 8 || b.Value() != 8 {
		t.Fatalf("expected both replicas to converge to 8, got a=%d b=%d", a.Value(), b.Value())
	}
	if a.AgentValue("agent-a") != 3 || a.AgentValue("agent-b") != 5 {
		t.Fatalf("unexpected per-agent counts: %+v", a.counts)
	}
}

func TestGCounter_MergeIdempotent(t *testing.T) {
	a := NewGCounter()
	a.Add("agent-a", 4)
	b := a.Clone()
	b.Merge(a)
	if b.Value() != a.Value() {
		t.Fatalf("merging with self changed value: %d vs %d", b.Value(), a.Value())
	}
}

func TestGCounter_DeltaSince(t *testing.T) {
	a := NewGCounter()
	a.Add("agent-a", 10)
	b := NewGCounter()
	b.Add("agent-a", 4)

	delta := a.DeltaSince(b)
	if delta.Counts["agent-a"] != 10 {
		t.Fatalf("expected delta to carry agent-a's full count, got %+v", delta.Counts)
	}

	b.Merge(&GCounter{counts: delta.Counts})
	if b.Value() != 10 {
		t.Fatalf("applying delta did not converge: %d", b.Value())
	}
}

func TestLWWRegister_LaterTimestampWins(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewLWWRegister("first", base, "agent-a")
	r.Set("second", base.Add(time.Second), "agent-b")
	if r.Value() != "second" {
		t.Fatalf("expected later write to win, got %q", r.Value())
	}
	r.Set("stale", base, "agent-c")
	if r.Value() != "second" {
		t.Fatalf("expected earlier write to be rejected, got %q", r.Value())
	}
}

func TestLWWRegister_TieBrokenDeterministically(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewLWWRegister("from-a", ts, "agent-a")
	b := NewLWWRegister("from-z", ts, "agent-z")

	merged1 := a.Clone()
	merged1.Merge(b)
	merged2 := b.Clone()
	merged2.Merge(a)

	if merged1.Value() != merged2.Value() {
		t.Fatalf("merge not commutative on tie: %q vs %q", merged1.Value(), merged2.Value())
	}
	if merged1.Value() != "from-z" {
		t.Fatalf("expected lexicographically greater agent id to win tie, got %q", merged1.Value())
	}
}

func TestMaxRegister_Monotonic(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMaxRegister(0.5, ts)
	r.Set(0.3, ts.Add(time.Hour))
	if r.Value() != 0.5 {
		t.Fatalf("expected lower value write to be rejected, got %v", r.Value())
	}
	r.Set(0.9, ts.Add(time.Hour))
	if r.Value() != 0.9 {
		t.Fatalf("expected higher value write to raise register, got %v", r.Value())
	}
}

func TestMaxRegister_MergeConvergesToMax(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewMaxRegister(0.4, ts)
	b := NewMaxRegister(0.7, ts)

	merged1 := a.Clone()
	merged1.Merge(b)
	merged2 := b.Clone()
	merged2.Merge(a)

	if merged1.Value() != 0.7 || merged2.Value() != 0.7 {
		t.Fatalf("expected both merges to converge to 0.7, got %v and %v", merged1.Value(), merged2.Value())
	}
}

func TestORSet_AddWinsOverConcurrentRemove(t *testing.T) {
	a := NewORSet[string]("agent-a")
	tag := a.Add("file.go")

	b := a.Clone()
	b.agentID = "agent-b"

	// b removes what it observed (tag), concurrently a adds again with a fresh tag.
	removed := b.Remove("file.go")
	newTag := a.Add("file.go")
	_ = tag

	// a applies b's remove: only the originally-observed tag is cleared,
	// the concurrent re-add survives.
	a.ApplyRemove("file.go", removed)

	if !a.Contains("file.go") {
		t.Fatalf("expected concurrent add to survive observed-remove")
	}
	tags := a.elements["file.go"]
	if _, ok := tags[newTag]; !ok {
		t.Fatalf("expected surviving tag to be the concurrent add's tag")
	}
}

func TestORSet_MergeUnion(t *testing.T) {
	a := NewORSet[string]("agent-a")
	a.Add("one")
	b := NewORSet[string]("agent-b")
	b.Add("two")

	a.Merge(b)
	b.Merge(a)

	if !a.Contains("one") || !a.Contains("two") {
		t.Fatalf("expected union of both elements in a, got %v", a.Values())
	}
	if !b.Contains("one") || !b.Contains("two") {
		t.Fatalf("expected union of both elements in b, got %v", b.Values())
	}
}

func TestORSet_RemoveThenMergeStaysRemoved(t *testing.T) {
	a := NewORSet[string]("agent-a")
	a.Add("stale")
	b := a.Clone()

	a.Remove("stale")
	a.Merge(b)

	if a.Contains("stale") {
		t.Fatalf("expected removed element to stay removed after merging with a replica that only saw the add")
	}
}

func TestMVRegister_ConcurrentWritesBothSurvive(t *testing.T) {
	a := NewMVRegister[string]("agent-a")
	aTag := a.Set("from-a", nil)
	_ = aTag

	b := a.Clone()
	b.agentID = "agent-b"

	// Both replicas write concurrently without observing each other's write.
	a.Set("still-from-a-updated", a.ObservedTags())
	b.Set("from-b", b.ObservedTags())

	a.Merge(b)
	values := a.Values()
	if len(values) != 2 {
		t.Fatalf("expected 2 concurrent values to survive merge, got %d: %v", len(values), values)
	}
}

func TestMVRegister_SequentialWriteResolvesConflict(t *testing.T) {
	a := NewMVRegister[string]("agent-a")
	a.Set("v1", nil)
	b := a.Clone()
	b.agentID = "agent-b"

	a.Set("v2-from-a", a.ObservedTags())
	b.Set("v2-from-b", b.ObservedTags())
	a.Merge(b)

	if len(a.Values()) != 2 {
		t.Fatalf("expected concurrent writes to conflict, got %v", a.Values())
	}

	// A later write that observes both conflicting tags resolves the conflict.
	a.Set("resolved", a.ObservedTags())
	if got := a.Values(); len(got) != 1 || got[0] != "resolved" {
		t.Fatalf("expected conflict resolution write to leave a single value, got %v", got)
	}
}

func TestMVRegister_MergeIdempotentAndCommutative(t *testing.T) {
	a := NewMVRegister[string]("agent-a")
	a.Set("v1", nil)
	b := a.Clone()

	merged1 := a.Clone()
	merged1.Merge(b)
	merged2 := b.Clone()
	merged2.Merge(a)

	if len(merged1.Values()) != 1 || len(merged2.Values()) != 1 {
		t.Fatalf("expected merge of identical replicas to stay single-valued")
	}
}
