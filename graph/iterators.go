package graph

import "sort"

// Nodes returns every live node key in ascending order. Complexity: O(V log V).
func (g *Graph) Nodes() []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]uint64, 0, len(g.nodes))
	for k := range g.nodes {
		out = append(out, k)
	}
	sortUint64s(out)

	return out
}

// Edges returns every live edge key in ascending order. Complexity: O(E log E).
func (g *Graph) Edges() []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]uint64, 0, len(g.edges))
	for k := range g.edges {
		out = append(out, k)
	}
	sortUint64s(out)

	return out
}

// Externals returns nodes with an empty adjacency set in the requested
// direction: inward=false returns nodes with no outgoing edges (sinks),
// inward=true returns nodes with no incoming edges (sources). Ascending
// order. Complexity: O(V log V).
func (g *Graph) Externals(inward bool) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []uint64
	for k, n := range g.nodes {
		empty := len(n.adjacency) == 0
		if inward {
			empty = len(n.invAdjacency) == 0
		}
		if empty {
			out = append(out, k)
		}
	}
	sortUint64s(out)

	return out
}

// Neighbors returns the adjacent node keys of node, in the requested
// direction: inward=false returns outgoing neighbors, inward=true returns
// incoming neighbors. Ascending order. Complexity: O(d log d).
func (g *Graph) Neighbors(node uint64, inward bool) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	adj := n.adjacency
	if inward {
		adj = n.invAdjacency
	}
	out := make([]uint64, 0, len(adj))
	for k := range adj {
		out = append(out, k)
	}
	sortUint64s(out)

	return out
}

// NeighborEdges returns the edge keys incident to node in the requested
// direction, ascending order of the *neighbor* key (matching Neighbors'
// order). Complexity: O(d log d).
func (g *Graph) NeighborEdges(node uint64, inward bool) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	adj := n.adjacency
	if inward {
		adj = n.invAdjacency
	}
	neighborKeys := make([]uint64, 0, len(adj))
	for k := range adj {
		neighborKeys = append(neighborKeys, k)
	}
	sortUint64s(neighborKeys)

	out := make([]uint64, 0, len(neighborKeys))
	for _, nk := range neighborKeys {
		out = append(out, adj[nk])
	}

	return out
}

func sortUint64s(s []uint64) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
