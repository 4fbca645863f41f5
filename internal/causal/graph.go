package causal

import (
	"sync"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// DefaultPruneStrength is the minimum edge strength below which an edge is
// considered weak and eligible for pruning.
const DefaultPruneStrength = 0.2

// node holds one memory's adjacency lists, keyed by the id of the memory
// on the other end of the edge.
type node struct {
	memoryID string
	out      map[string]*coretypes.CausalEdge
	in       map[string]*coretypes.CausalEdge
}

// Graph is an in-memory directed acyclic graph of CausalEdges, safe for
// concurrent use. Edges are keyed by (source, target); at most one edge
// exists between any ordered pair.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// LoadGraph rebuilds a Graph from a flat edge list, as returned by
// storage.LoadCausalGraph at startup. Edges that would introduce a cycle
// are skipped rather than rejected outright, since storage already
// accepted them in some earlier, possibly-since-pruned state.
func LoadGraph(edges []*coretypes.CausalEdge) *Graph {
	g := NewGraph()
	for _, e := range edges {
		g.ensureNode(e.Source)
		g.ensureNode(e.Target)
		if g.wouldCreateCycle(e.Source, e.Target) {
			continue
		}
		g.insertEdge(e)
	}
	return g
}

func (g *Graph) ensureNode(id string) *node {
	n, ok := g.nodes[id]
	if !ok {
		n = &node{memoryID: id, out: make(map[string]*coretypes.CausalEdge), in: make(map[string]*coretypes.CausalEdge)}
		g.nodes[id] = n
	}
	return n
}

func (g *Graph) insertEdge(e *coretypes.CausalEdge) {
	src := g.ensureNode(e.Source)
	tgt := g.ensureNode(e.Target)
	src.out[e.Target] = e
	tgt.in[e.Source] = e
}

// AddEdge inserts e into the graph, rejecting it with ErrCycle if it
// would create a cycle (self-loops always count as a cycle). Mirrors
// dag_enforcement.would_create_cycle: a DFS reachability check from
// target back to source, done before the edge exists.
func (g *Graph) AddEdge(e *coretypes.CausalEdge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wouldCreateCycle(e.Source, e.Target) {
		return coretypes.NewCycleDetected(e.Source, e.Target)
	}
	g.insertEdge(e)
	return nil
}

// wouldCreateCycle reports whether an edge source->target would create a
// cycle. Caller must hold g.mu (read or write).
func (g *Graph) wouldCreateCycle(source, target string) bool {
	if source == target {
		return true
	}
	return g.hasPath(target, source)
}

// hasPath is a DFS reachability check: can to be reached from from by
// following outgoing edges? Caller must hold g.mu.
func (g *Graph) hasPath(from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur == to {
			return true
		}
		n, ok := g.nodes[cur]
		if !ok {
			continue
		}
		for next := range n.out {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// WouldCreateCycle is the exported, lock-safe form of wouldCreateCycle,
// for callers (e.g. inference) that want to check before building an edge.
func (g *Graph) WouldCreateCycle(source, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.wouldCreateCycle(source, target)
}

// Edge returns the edge from source to target, if any.
func (g *Graph) Edge(source, target string) (*coretypes.CausalEdge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[source]
	if !ok {
		return nil, false
	}
	e, ok := n.out[target]
	return e, ok
}

// Outgoing returns every edge leading out of memoryID.
func (g *Graph) Outgoing(memoryID string) []*coretypes.CausalEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[memoryID]
	if !ok {
		return nil
	}
	out := make([]*coretypes.CausalEdge, 0, len(n.out))
	for _, e := range n.out {
		out = append(out, e)
	}
	return out
}

// Incoming returns every edge leading into memoryID.
func (g *Graph) Incoming(memoryID string) []*coretypes.CausalEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[memoryID]
	if !ok {
		return nil
	}
	in := make([]*coretypes.CausalEdge, 0, len(n.in))
	for _, e := range n.in {
		in = append(in, e)
	}
	return in
}

// HasNode reports whether memoryID has any edge in the graph.
func (g *Graph) HasNode(memoryID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[memoryID]
	return ok
}

// PruneResult reports what a pruning pass removed.
type PruneResult struct {
	EdgesRemoved int
	NodesRemoved int
}

// PruneWeakEdges removes every edge with strength below minStrength, then
// removes any node left with no incoming or outgoing edges.
func (g *Graph) PruneWeakEdges(minStrength float64) PruneResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for _, n := range g.nodes {
		for tgt, e := range n.out {
			if e.Strength < minStrength {
				delete(n.out, tgt)
				if other, ok := g.nodes[tgt]; ok {
					delete(other.in, n.memoryID)
				}
				removed++
			}
		}
	}
	return PruneResult{EdgesRemoved: removed, NodesRemoved: g.removeOrphans()}
}

// PruneUnvalidatedInferred removes inferred edges that never accumulated
// any evidence.
func (g *Graph) PruneUnvalidatedInferred() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for _, n := range g.nodes {
		for tgt, e := range n.out {
			if e.Inferred && len(e.Evidence) == 0 {
				delete(n.out, tgt)
				if other, ok := g.nodes[tgt]; ok {
					delete(other.in, n.memoryID)
				}
				removed++
			}
		}
	}
	return removed
}

// removeOrphans deletes nodes with no remaining edges. Caller must hold
// g.mu for writing.
func (g *Graph) removeOrphans() int {
	removed := 0
	for id, n := range g.nodes {
		if len(n.out) == 0 && len(n.in) == 0 {
			delete(g.nodes, id)
			removed++
		}
	}
	return removed
}

// FullCleanup runs PruneWeakEdges followed by PruneUnvalidatedInferred, a
// second orphan sweep, and returns the combined counts.
func (g *Graph) FullCleanup(minStrength float64) PruneResult {
	weak := g.PruneWeakEdges(minStrength)
	g.mu.Lock()
	unvalidated := 0
	for _, n := range g.nodes {
		for tgt, e := range n.out {
			if e.Inferred && len(e.Evidence) == 0 {
				delete(n.out, tgt)
				if other, ok := g.nodes[tgt]; ok {
					delete(other.in, n.memoryID)
				}
				unvalidated++
			}
		}
	}
	extraOrphans := g.removeOrphans()
	g.mu.Unlock()

	return PruneResult{
		EdgesRemoved: weak.EdgesRemoved + unvalidated,
		NodesRemoved: weak.NodesRemoved + extraOrphans,
	}
}
