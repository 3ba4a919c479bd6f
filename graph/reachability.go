package graph

import (
	"fmt"

	"github.com/fimoengine/fimo-std/ferr"
)

// PathExists reports whether b is reachable from a over outgoing edges.
// When a == b, it instead reports whether a lies on some cycle: it builds
// the set of nodes reachable from a (forward, a included) and then asks
// whether any member of that reachable set holds an edge back into a,
// i.e. whether a has an incoming edge whose source lies in its own
// forward-reachable set.
//
// Complexity: O(V + E).
func (g *Graph) PathExists(a, b uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[a]; !ok {
		return false
	}
	if _, ok := g.nodes[b]; !ok {
		return false
	}

	if a != b {
		return g.reachableLocked(a)[b]
	}

	reachable := g.reachableLocked(a)
	n := g.nodes[a]
	for src := range n.invAdjacency {
		if reachable[src] {
			return true
		}
	}

	return false
}

// reachableLocked returns the set of nodes reachable from start via
// outgoing edges, start included. Caller must hold g.mu (read or write).
func (g *Graph) reachableLocked(start uint64) map[uint64]bool {
	visited := map[uint64]bool{start: true}
	stack := []uint64{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dst := range g.nodes[cur].adjacency {
			if !visited[dst] {
				visited[dst] = true
				stack = append(stack, dst)
			}
		}
	}

	return visited
}

// dfsColor is the tri-colour marker used by IsCyclic and TopologicalSort.
type dfsColor uint8

const (
	white dfsColor = iota // undiscovered
	gray                  // discovered, still on the active path
	black                 // finished
)

// dfsFrame is one stack entry of an iterative DFS: the node being explored
// and an index into its (sorted) neighbor list marking how far exploration
// has progressed.
type dfsFrame struct {
	node  uint64
	nbrs  []uint64
	index int
}

// IsCyclic reports whether the graph contains a directed cycle, via an
// iterative depth-first search with a tri-colour marker set: a back-edge
// into a gray (discovered, not yet finished) node means a cycle.
//
// Complexity: O(V + E).
func (g *Graph) IsCyclic() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	color := make(map[uint64]dfsColor, len(g.nodes))
	nodeKeys := make([]uint64, 0, len(g.nodes))
	for k := range g.nodes {
		nodeKeys = append(nodeKeys, k)
	}
	sortUint64s(nodeKeys)

	outgoingOf := func(id uint64) []uint64 {
		nbrs := make([]uint64, 0, len(g.nodes[id].adjacency))
		for dst := range g.nodes[id].adjacency {
			nbrs = append(nbrs, dst)
		}
		sortUint64s(nbrs)

		return nbrs
	}

	for _, start := range nodeKeys {
		if color[start] != white {
			continue
		}
		stack := []*dfsFrame{{node: start, nbrs: outgoingOf(start)}}
		color[start] = gray
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.index >= len(top.nbrs) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			next := top.nbrs[top.index]
			top.index++
			switch color[next] {
			case white:
				color[next] = gray
				stack = append(stack, &dfsFrame{node: next, nbrs: outgoingOf(next)})
			case gray:
				return true
			case black:
				// already finished; no-op
			}
		}
	}

	return false
}

// TopologicalSort returns an owned sequence of every node key such that,
// for inward=false, every edge src->dst has src appear before dst; for
// inward=true, the sort is computed over the reverse direction (dst before
// src). It is a DFS-based total order using temporary (gray) and permanent
// (black) markers: encountering a gray node indicates a cycle, reported as
// ferr.ErrInvalid. The result is the reverse post-order of the traversal.
//
// Complexity: O(V + E).
func (g *Graph) TopologicalSort(inward bool) ([]uint64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	color := make(map[uint64]dfsColor, len(g.nodes))
	order := make([]uint64, 0, len(g.nodes))
	nodeKeys := make([]uint64, 0, len(g.nodes))
	for k := range g.nodes {
		nodeKeys = append(nodeKeys, k)
	}
	sortUint64s(nodeKeys)

	neighborsOf := func(id uint64) []uint64 {
		n := g.nodes[id]
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

	for _, start := range nodeKeys {
		if color[start] != white {
			continue
		}
		stack := []*dfsFrame{{node: start, nbrs: neighborsOf(start)}}
		color[start] = gray
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.index >= len(top.nbrs) {
				color[top.node] = black
				order = append(order, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			next := top.nbrs[top.index]
			top.index++
			switch color[next] {
			case white:
				color[next] = gray
				stack = append(stack, &dfsFrame{node: next, nbrs: neighborsOf(next)})
			case gray:
				return nil, fmt.Errorf("graph: TopologicalSort: cycle detected: %w", ferr.ErrInvalid)
			case black:
				// already ordered
			}
		}
	}

	// order currently holds post-order; reverse it in place for
	// topological order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}
