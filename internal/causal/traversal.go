package causal

// TraversalConfig bounds a graph walk. Grounded on the TraversalConfig
// referenced throughout traversal/{neighbors,trace_effects,
// trace_origins,bidirectional}.rs (its own definition is not shipped in
// the retrieval pack; fields are inferred from how every walk uses them).
type TraversalConfig struct {
	MaxDepth    int
	MaxNodes    int
	MinStrength float64
}

// DefaultTraversalConfig returns reasonable bounds for interactive queries.
func DefaultTraversalConfig() TraversalConfig {
	return TraversalConfig{MaxDepth: 5, MaxNodes: 50, MinStrength: 0.0}
}

// TraversalNode is one memory reached during a walk.
type TraversalNode struct {
	MemoryID     string
	Depth        int
	PathStrength float64
}

// TraversalResult is the outcome of one walk from an origin memory.
type TraversalResult struct {
	OriginID        string
	Nodes           []TraversalNode
	MaxDepthReached int
}

// Neighbors returns the direct (depth=1) neighbors of memoryID, both
// incoming and outgoing, deduplicated. Grounded on traversal/neighbors.rs.
func (g *Graph) Neighbors(memoryID string, cfg TraversalConfig) TraversalResult {
	result := TraversalResult{OriginID: memoryID}
	if !g.HasNode(memoryID) {
		return result
	}

	seen := make(map[string]bool)
	for _, e := range g.Outgoing(memoryID) {
		if len(result.Nodes) >= cfg.MaxNodes {
			break
		}
		if e.Strength < cfg.MinStrength || seen[e.Target] {
			continue
		}
		seen[e.Target] = true
		result.Nodes = append(result.Nodes, TraversalNode{MemoryID: e.Target, Depth: 1, PathStrength: e.Strength})
		result.MaxDepthReached = 1
	}
	for _, e := range g.Incoming(memoryID) {
		if len(result.Nodes) >= cfg.MaxNodes {
			break
		}
		if e.Strength < cfg.MinStrength || seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		result.Nodes = append(result.Nodes, TraversalNode{MemoryID: e.Source, Depth: 1, PathStrength: e.Strength})
		result.MaxDepthReached = 1
	}
	return result
}

// bfsStep is one entry in the traversal queue: the node, its depth, and
// the accumulated path strength (product of edge strengths) to reach it.
type bfsStep struct {
	id       string
	depth    int
	strength float64
}

// TraceEffects walks forward from memoryID along outgoing edges — "what
// did this cause?" — accumulating path strength as the product of edge
// strengths along the way. Grounded on traversal/trace_effects.rs.
func (g *Graph) TraceEffects(memoryID string, cfg TraversalConfig) TraversalResult {
	return g.traceDirection(memoryID, cfg, g.outgoingEnds, func(e *edgeEnd) (string, float64) {
		return e.other, e.strength
	})
}

// TraceOrigins walks backward from memoryID along incoming edges —
// "what caused this?" — the mirror image of TraceEffects. Grounded on
// the (unshipped) trace_origins.rs counterpart named in traversal/mod.rs.
func (g *Graph) TraceOrigins(memoryID string, cfg TraversalConfig) TraversalResult {
	return g.traceDirection(memoryID, cfg, g.incomingEnds, func(e *edgeEnd) (string, float64) {
		return e.other, e.strength
	})
}

// edgeEnd is a direction-neutral view of one edge end: the memory id on
// the other side, and the edge's strength.
type edgeEnd struct {
	other    string
	strength float64
}

func (g *Graph) outgoingEnds(memoryID string) []edgeEnd {
	edges := g.Outgoing(memoryID)
	ends := make([]edgeEnd, len(edges))
	for i, e := range edges {
		ends[i] = edgeEnd{other: e.Target, strength: e.Strength}
	}
	return ends
}

func (g *Graph) incomingEnds(memoryID string) []edgeEnd {
	edges := g.Incoming(memoryID)
	ends := make([]edgeEnd, len(edges))
	for i, e := range edges {
		ends[i] = edgeEnd{other: e.Source, strength: e.Strength}
	}
	return ends
}

// traceDirection runs a strength-weighted BFS in one direction. adjacency
// returns the edge-ends reachable from a given node; unwrap extracts the
// (neighbor id, edge strength) pair from one such end.
func (g *Graph) traceDirection(memoryID string, cfg TraversalConfig, adjacency func(string) []edgeEnd, unwrap func(*edgeEnd) (string, float64)) TraversalResult {
	result := TraversalResult{OriginID: memoryID}
	if !g.HasNode(memoryID) {
		return result
	}

	visited := map[string]bool{memoryID: true}
	queue := []bfsStep{{id: memoryID, depth: 0, strength: 1.0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= cfg.MaxDepth || len(result.Nodes) >= cfg.MaxNodes {
			break
		}
		for _, end := range adjacency(cur.id) {
			if len(result.Nodes) >= cfg.MaxNodes {
				break
			}
			other, strength := unwrap(&end)
			if visited[other] || strength < cfg.MinStrength {
				continue
			}
			visited[other] = true
			newStrength := cur.strength * strength
			newDepth := cur.depth + 1
			if newDepth > result.MaxDepthReached {
				result.MaxDepthReached = newDepth
			}
			result.Nodes = append(result.Nodes, TraversalNode{MemoryID: other, Depth: newDepth, PathStrength: newStrength})
			if len(result.Nodes) < cfg.MaxNodes {
				queue = append(queue, bfsStep{id: other, depth: newDepth, strength: newStrength})
			}
		}
	}
	return result
}

// Bidirectional returns the union of TraceOrigins and TraceEffects,
// deduplicated by memory id (first occurrence wins). Grounded on
// traversal/bidirectional.rs.
func (g *Graph) Bidirectional(memoryID string, cfg TraversalConfig) TraversalResult {
	origins := g.TraceOrigins(memoryID, cfg)
	effects := g.TraceEffects(memoryID, cfg)

	seen := make(map[string]bool)
	var nodes []TraversalNode
	maxDepth := 0
	combined := append(append([]TraversalNode{}, origins.Nodes...), effects.Nodes...)
	for _, n := range combined {
		if seen[n.MemoryID] {
			continue
		}
		seen[n.MemoryID] = true
		nodes = append(nodes, n)
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	if len(nodes) > cfg.MaxNodes {
		nodes = nodes[:cfg.MaxNodes]
	}
	return TraversalResult{OriginID: memoryID, Nodes: nodes, MaxDepthReached: maxDepth}
}
