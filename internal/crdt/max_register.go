package crdt

import "time"

// MaxRegister holds the highest value ever written, with the timestamp
// of that write kept only for observability (max-wins does not need it
// for convergence, unlike LWW). Used for confidence boosts, where a
// later lower-confidence write should never undo an earlier higher one
// (spec.md §4.7's ConfidenceBoosted delta).
//
// Grounded structurally on gcounter.go; max-wins is the natural
// generalization of G-Counter's per-agent-max merge to a single scalar.
type MaxRegister struct {
	value     float64
	timestamp time.Time
}

// NewMaxRegister returns a register seeded at value.
func NewMaxRegister(value float64, timestamp time.Time) *MaxRegister {
	return &MaxRegister{value: value, timestamp: timestamp}
}

// Value returns the highest value ever written.
func (r *MaxRegister) Value() float64 { return r.value }

// Timestamp returns when the current maximum was written.
func (r *MaxRegister) Timestamp() time.Time { return r.timestamp }

// Set raises the register to value if it exceeds the current maximum.
func (r *MaxRegister) Set(value float64, timestamp time.Time) {
	if value > r.value {
		r.value = value
		r.timestamp = timestamp
	}
}

// Merge combines other into r, keeping the larger value.
// Convergence guarantee: idempotent, commutative, associative — merge is
// literally max(), which has all three properties over any total order.
func (r *MaxRegister) Merge(other *MaxRegister) {
	if other.value > r.value {
		r.value = other.value
		r.timestamp = other.timestamp
	}
}

// Clone returns an independent copy.
func (r *MaxRegister) Clone() *MaxRegister {
	return &MaxRegister{value: r.value, timestamp: r.timestamp}
}
