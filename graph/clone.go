package graph

// NodeMapper is invoked exactly once per cloned node, in ascending
// old-key order, before any edge mapper callback fires.
type NodeMapper func(oldKey, newKey uint64, userData any) error

// EdgeMapper is invoked exactly once per cloned edge, in ascending
// old-key order, after every node mapper callback has fired.
type EdgeMapper func(oldKey, newKey uint64, userData any) error

// Clone produces a structural copy of g: every node and edge is
// reinserted into a fresh Graph with the same payload-size/drop
// configuration, fresh keys assigned in the same order as the source's
// ascending old-key order (so the new graph's keys are monotonic from
// zero). nodeMapper and edgeMapper, if non-nil, are invoked once per
// cloned entity with (oldKey, newKey, userData); nodes are mapped
// entirely before edges.
//
// Complexity: O(V + E).
func (g *Graph) Clone(nodeMapper NodeMapper, edgeMapper EdgeMapper, userData any) (*Graph, error) {
	g.mu.RLock()
	nodeKeys := make([]uint64, 0, len(g.nodes))
	for k := range g.nodes {
		nodeKeys = append(nodeKeys, k)
	}
	sortUint64s(nodeKeys)
	edgeKeys := make([]uint64, 0, len(g.edges))
	for k := range g.edges {
		edgeKeys = append(edgeKeys, k)
	}
	sortUint64s(edgeKeys)

	nodePayloadEnabled := g.nodePayloadEnabled
	edgePayloadEnabled := g.edgePayloadEnabled
	nodeDrop := g.nodeDrop
	edgeDrop := g.edgeDrop
	g.mu.RUnlock()

	nodeSize, edgeSize := 0, 0
	if nodePayloadEnabled {
		nodeSize = 1
	}
	if edgePayloadEnabled {
		edgeSize = 1
	}
	out, err := New(nodeSize, edgeSize, nodeDrop, edgeDrop)
	if err != nil {
		return nil, err
	}

	remap := make(map[uint64]uint64, len(nodeKeys))
	g.mu.RLock()
	for _, oldKey := range nodeKeys {
		n := g.nodes[oldKey]
		newKey, aerr := out.AddNode(n.payload)
		if aerr != nil {
			g.mu.RUnlock()
			return nil, aerr
		}
		remap[oldKey] = newKey
		if nodeMapper != nil {
			if merr := nodeMapper(oldKey, newKey, userData); merr != nil {
				g.mu.RUnlock()
				return nil, merr
			}
		}
	}
	for _, oldKey := range edgeKeys {
		e := g.edges[oldKey]
		newKey, aerr := out.AddEdge(remap[e.src], remap[e.dst], e.payload, nil)
		if aerr != nil {
			g.mu.RUnlock()
			return nil, aerr
		}
		if edgeMapper != nil {
			if merr := edgeMapper(oldKey, newKey, userData); merr != nil {
				g.mu.RUnlock()
				return nil, merr
			}
		}
	}
	g.mu.RUnlock()

	return out, nil
}

// CloneReachableSubgraph performs a depth-first traversal from start over
// outgoing edges and returns a new Graph containing exactly the reachable
// nodes and the edges induced between them. A node-mapping table prevents
// double-visits; nodeMapper, if non-nil, fires once per mapped node in
// traversal order, and edgeMapper, if non-nil, fires once per induced edge
// in ascending old edge-key order, after every node has been mapped.
//
// Complexity: O(V + E) within the reachable component.
func (g *Graph) CloneReachableSubgraph(start uint64, nodeMapper NodeMapper, edgeMapper EdgeMapper, userData any) (*Graph, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[start]; !ok {
		return nil, errNotFoundf("graph: CloneReachableSubgraph: start node missing")
	}

	nodeSize, edgeSize := 0, 0
	if g.nodePayloadEnabled {
		nodeSize = 1
	}
	if g.edgePayloadEnabled {
		edgeSize = 1
	}
	out, err := New(nodeSize, edgeSize, g.nodeDrop, g.edgeDrop)
	if err != nil {
		return nil, err
	}

	remap := make(map[uint64]uint64)
	visited := make(map[uint64]bool)
	stack := []uint64{start}
	visited[start] = true

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := g.nodes[cur]
		newKey, aerr := out.AddNode(n.payload)
		if aerr != nil {
			return nil, aerr
		}
		remap[cur] = newKey
		if nodeMapper != nil {
			if merr := nodeMapper(cur, newKey, userData); merr != nil {
				return nil, merr
			}
		}

		nextKeys := make([]uint64, 0, len(n.adjacency))
		for dst := range n.adjacency {
			nextKeys = append(nextKeys, dst)
		}
		sortUint64s(nextKeys)
		for _, dst := range nextKeys {
			if !visited[dst] {
				visited[dst] = true
				stack = append(stack, dst)
			}
		}
	}

	edgeKeys := make([]uint64, 0, len(g.edges))
	for k := range g.edges {
		edgeKeys = append(edgeKeys, k)
	}
	sortUint64s(edgeKeys)
	for _, oldKey := range edgeKeys {
		e := g.edges[oldKey]
		newSrc, okSrc := remap[e.src]
		newDst, okDst := remap[e.dst]
		if !okSrc || !okDst {
			continue
		}
		newKey, aerr := out.AddEdge(newSrc, newDst, e.payload, nil)
		if aerr != nil {
			return nil, aerr
		}
		if edgeMapper != nil {
			if merr := edgeMapper(oldKey, newKey, userData); merr != nil {
				return nil, merr
			}
		}
	}

	return out, nil
}
