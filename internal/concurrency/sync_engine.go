package concurrency

import (
	"fmt"
	"sync"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// QueuedDelta is one delta sitting in an agent's outbound sync queue,
// tagged with the global sequence number it was enqueued under so
// draining preserves received order even across multiple memories.
type QueuedDelta struct {
	Seq   uint64
	Delta FieldDelta
}

// Engine is the per-process CRDT sync substrate: it holds the live merge
// state for every memory currently being concurrently edited and a
// per-target-agent outbound queue of deltas still waiting to be shipped
// to that agent. Grounded structurally on cortex-session/src/manager.rs's
// DashMap-backed registry, generalized from sessions to per-memory CRDT
// state plus delta queues (manager.rs itself only tracks session
// metadata; the delta-queue half is this package's own design, built
// from spec.md §4.7's "queue per target agent, drained in received
// order").
type Engine struct {
	mu     sync.Mutex
	states map[string]*memoryCRDTState
	queues map[string][]QueuedDelta
	seq    uint64
}

// NewEngine returns an empty sync engine.
func NewEngine() *Engine {
	return &Engine{
		states: make(map[string]*memoryCRDTState),
		queues: make(map[string][]QueuedDelta),
	}
}

// Seed registers a memory's durable snapshot as the starting point for
// future CRDT merges. Calling Seed again for an already-known memory id
// is a no-op: the live merge state, not the durable snapshot, is
// authoritative once concurrent edits have begun.
func (e *Engine) Seed(agentID string, m *coretypes.Memory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.states[m.ID]; ok {
		return
	}
	e.states[m.ID] = newMemoryCRDTState(agentID, m)
}

// Apply folds delta into its memory's merge state and fans it out to
// every target agent's outbound queue except the delta's own origin.
// A memory_created delta seeds state if this is the first time the
// engine has seen that memory id; any other delta kind for an unknown
// memory id is an error — field deltas only make sense once a
// memory_created delta has established a baseline.
func (e *Engine) Apply(delta FieldDelta, targetAgents []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, known := e.states[delta.MemoryID]
	if !known {
		if delta.Kind != DeltaMemoryCreated {
			return fmt.Errorf("concurrency: delta %s for unknown memory %s (send memory_created first)", delta.Kind, delta.MemoryID)
		}
		st = newMemoryCRDTState(delta.FullState.SourceAgent, delta.FullState)
		e.states[delta.MemoryID] = st
	} else {
		st.apply(delta)
	}

	e.seq++
	qd := QueuedDelta{Seq: e.seq, Delta: delta}
	for _, target := range targetAgents {
		if target == delta.AgentID {
			continue
		}
		e.queues[target] = append(e.queues[target], qd)
	}
	return nil
}

// Drain removes and returns every delta queued for agentID, oldest
// first, leaving its queue empty.
func (e *Engine) Drain(agentID string) []FieldDelta {
	e.mu.Lock()
	defer e.mu.Unlock()

	queued := e.queues[agentID]
	if len(queued) == 0 {
		return nil
	}
	delete(e.queues, agentID)

	out := make([]FieldDelta, len(queued))
	for i, qd := range queued {
		out[i] = qd.Delta
	}
	return out
}

// PendingCount reports how many deltas are queued for agentID, without
// draining them.
func (e *Engine) PendingCount(agentID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queues[agentID])
}

// Materialize projects a memory's current merge state onto base. Reports
// false if the engine has no merge state for memoryID (no deltas applied
// since the last seed, or the memory is unknown).
func (e *Engine) Materialize(memoryID string, base *coretypes.Memory) (*coretypes.Memory, bool) {
	e.mu.Lock()
	st, ok := e.states[memoryID]
	e.mu.Unlock()
	if !ok {
		return base, false
	}
	return st.materialize(base), true
}

// Forget drops a memory's merge state, e.g. after it has been archived
// and durably flushed. Queued deltas already fanned out to agents are
// left untouched.
func (e *Engine) Forget(memoryID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.states, memoryID)
}
