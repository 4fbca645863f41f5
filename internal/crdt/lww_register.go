package crdt

import "time"

// LWWRegister is a last-writer-wins register: the value with the latest
// timestamp wins on merge, with a deterministic tiebreaker (agent id, to
// keep merge commutative when two agents write at the exact same
// instant). Used for content/summary/importance/archived/namespace
// fields per spec.md §4.7's field_delta taxonomy.
//
// Grounded structurally on gcounter.go's value/merge/clone trio, applying
// the standard LWW-Register definition named in the teacher pack's
// cortex-crdt mod.rs (lww_register.rs is referenced there but not
// shipped in the retrieval pack).
type LWWRegister[T any] struct {
	value     T
	timestamp time.Time
	agentID   string
}

// NewLWWRegister returns a register seeded with an initial value.
func NewLWWRegister[T any](value T, timestamp time.Time, agentID string) *LWWRegister[T] {
	return &LWWRegister[T]{value: value, timestamp: timestamp, agentID: agentID}
}

// Value returns the current winning value.
func (r *LWWRegister[T]) Value() T { return r.value }

// Timestamp returns the winning write's timestamp.
func (r *LWWRegister[T]) Timestamp() time.Time { return r.timestamp }

// Set assigns a new value if (timestamp, agentID) wins over the current
// write under LWW-with-tiebreak ordering.
func (r *LWWRegister[T]) Set(value T, timestamp time.Time, agentID string) {
	if wins(timestamp, agentID, r.timestamp, r.agentID) {
		r.value = value
		r.timestamp = timestamp
		r.agentID = agentID
	}
}

// Merge combines other into r, keeping whichever write wins.
// Convergence guarantee: any merge order produces the same final value,
// since wins() is a total order over (timestamp, agentID).
func (r *LWWRegister[T]) Merge(other *LWWRegister[T]) {
	if wins(other.timestamp, other.agentID, r.timestamp, r.agentID) {
		r.value = other.value
		r.timestamp = other.timestamp
		r.agentID = other.agentID
	}
}

// wins reports whether (tsA, agentA) should win over (tsB, agentB):
// later timestamp wins; on an exact tie, the lexicographically greater
// agent id wins, so merge is commutative regardless of argument order.
func wins(tsA time.Time, agentA string, tsB time.Time, agentB string) bool {
	if tsA.After(tsB) {
		return true
	}
	if tsA.Before(tsB) {
		return false
	}
	return agentA > agentB
}

// Clone returns an independent copy.
func (r *LWWRegister[T]) Clone() *LWWRegister[T] {
	return &LWWRegister[T]{value: r.value, timestamp: r.timestamp, agentID: r.agentID}
}
