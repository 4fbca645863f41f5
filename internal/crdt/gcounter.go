package crdt

// GCounter is a grow-only counter: each agent maintains its own
// monotonically increasing count, merge takes the per-agent maximum, and
// the total value is the sum across agents. Used for access_count and
// similar fields that only ever increase (spec.md §4.7).
//
// Grounded on original_source/crates/cortex-crdt/src/primitives/gcounter.rs.
type GCounter struct {
	counts map[string]uint64
}

// NewGCounter returns an empty G-Counter.
func NewGCounter() *GCounter {
	return &GCounter{counts: make(map[string]uint64)}
}

// Increment bumps the given agent's counter by 1.
func (c *GCounter) Increment(agentID string) {
	c.counts[agentID]++
}

// Add bumps the given agent's counter by n.
func (c *GCounter) Add(agentID string, n uint64) {
	c.counts[agentID] += n
}

// Value returns the total across every agent.
func (c *GCounter) Value() uint64 {
	var total uint64
	for _, v := range c.counts {
		total += v
	}
	return total
}

// AgentValue returns one agent's individual count.
func (c *GCounter) AgentValue(agentID string) uint64 {
	return c.counts[agentID]
}

// Merge combines other into c by taking the per-agent maximum.
// Convergence guarantee: Value is monotonically increasing; no increment
// is ever lost. merge(A, B).Value() >= max(A.Value(), B.Value()).
func (c *GCounter) Merge(other *GCounter) {
	for agentID, otherVal := range other.counts {
		if otherVal > c.counts[agentID] {
			c.counts[agentID] = otherVal
		}
	}
}

// GCounterDelta carries the entries where the sender is ahead of the
// receiver, for delta sync over the delta_queue table.
type GCounterDelta struct {
	Counts map[string]uint64
}

// DeltaSince returns the entries where c is ahead of other.
func (c *GCounter) DeltaSince(other *GCounter) GCounterDelta {
	delta := GCounterDelta{Counts: make(map[string]uint64)}
	for agentID, selfVal := range c.counts {
		if selfVal > other.AgentValue(agentID) {
			delta.Counts[agentID] = selfVal
		}
	}
	return delta
}

// Clone returns an independent copy.
func (c *GCounter) Clone() *GCounter {
	out := NewGCounter()
	for k, v := range c.counts {
		out.counts[k] = v
	}
	return out
}
