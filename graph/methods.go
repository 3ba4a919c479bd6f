package graph

import (
	"fmt"

	"github.com/fimoengine/fimo-std/ferr"
)

// AddNode inserts a new node, optionally carrying payload, and returns its
// key. A free-list key is reused first; otherwise the monotonic counter is
// advanced. Returns ferr.ErrInvalid if payload presence disagrees with the
// graph's configured node payload size, or ferr.ErrOutOfRange if the key
// space is exhausted.
//
// Complexity: O(1).
func (g *Graph) AddNode(payload any) (uint64, error) {
	if (payload != nil) != g.nodePayloadEnabled {
		return NoID, fmt.Errorf("graph: AddNode: payload presence mismatch: %w", ferr.ErrInvalid)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key, err := g.allocNodeKey()
	if err != nil {
		return NoID, err
	}
	g.nodes[key] = &node{
		key:          key,
		payload:      payload,
		adjacency:    make(map[uint64]uint64),
		invAdjacency: make(map[uint64]uint64),
	}

	return key, nil
}

// allocNodeKey pops a recycled key from the free-list, else advances the
// monotonic counter. Caller must hold g.mu.
func (g *Graph) allocNodeKey() (uint64, error) {
	if n := len(g.freeNodeKeys); n > 0 {
		key := g.freeNodeKeys[n-1]
		g.freeNodeKeys = g.freeNodeKeys[:n-1]
		return key, nil
	}
	if g.nextNodeKey == NoID {
		return NoID, fmt.Errorf("graph: node key space exhausted: %w", ferr.ErrOutOfRange)
	}
	key := g.nextNodeKey
	g.nextNodeKey++

	return key, nil
}

// allocEdgeKey mirrors allocNodeKey for edges. Caller must hold g.mu.
func (g *Graph) allocEdgeKey() (uint64, error) {
	if n := len(g.freeEdgeKeys); n > 0 {
		key := g.freeEdgeKeys[n-1]
		g.freeEdgeKeys = g.freeEdgeKeys[:n-1]
		return key, nil
	}
	if g.nextEdgeKey == NoID {
		return NoID, fmt.Errorf("graph: edge key space exhausted: %w", ferr.ErrOutOfRange)
	}
	key := g.nextEdgeKey
	g.nextEdgeKey++

	return key, nil
}

// AddEdge inserts an edge src->dst, or replaces the payload of the edge
// already connecting them. If oldSink is non-nil and an edge already
// existed, *oldSink receives the replaced payload; otherwise the replaced
// payload is released through the graph's edge drop callback (if any).
// Returns the edge's key (fresh or reused, per the replace case).
//
// Returns ferr.ErrInvalid if either endpoint is missing or payload
// presence disagrees with the graph's configured edge payload size.
//
// Complexity: O(1).
func (g *Graph) AddEdge(src, dst uint64, payload any, oldSink *any) (uint64, error) {
	return g.upsertEdge(src, dst, payload, oldSink, false)
}

// UpdateEdge behaves like AddEdge but only succeeds when the edge already
// exists; returns ferr.ErrNotFound otherwise.
//
// Complexity: O(1).
func (g *Graph) UpdateEdge(src, dst uint64, payload any, oldSink *any) (uint64, error) {
	return g.upsertEdge(src, dst, payload, oldSink, true)
}

func (g *Graph) upsertEdge(src, dst uint64, payload any, oldSink *any, requireExisting bool) (uint64, error) {
	if (payload != nil) != g.edgePayloadEnabled {
		return NoID, fmt.Errorf("graph: upsertEdge: payload presence mismatch: %w", ferr.ErrInvalid)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	srcNode, ok := g.nodes[src]
	if !ok {
		return NoID, fmt.Errorf("graph: upsertEdge: src node missing: %w", ferr.ErrInvalid)
	}
	dstNode, ok := g.nodes[dst]
	if !ok {
		return NoID, fmt.Errorf("graph: upsertEdge: dst node missing: %w", ferr.ErrInvalid)
	}

	pairKey := [2]uint64{src, dst}
	if existingKey, ok := g.edgeIndex[pairKey]; ok {
		existing := g.edges[existingKey]
		old := existing.payload
		existing.payload = payload
		if oldSink != nil {
			*oldSink = old
		} else if g.edgeDrop != nil {
			g.edgeDrop(old)
		}

		return existingKey, nil
	}

	if requireExisting {
		return NoID, fmt.Errorf("graph: UpdateEdge: edge not found: %w", ferr.ErrNotFound)
	}

	key, err := g.allocEdgeKey()
	if err != nil {
		return NoID, err
	}
	g.edges[key] = &edge{key: key, src: src, dst: dst, payload: payload}
	g.edgeIndex[pairKey] = key
	srcNode.adjacency[dst] = key
	dstNode.invAdjacency[src] = key

	return key, nil
}

// RemoveNode deletes the node and every edge incident to it (outgoing and
// incoming), returning the node's own payload. Incident edges are collected
// into a scratch slice before any mutation, preserving iterator safety, and
// their payloads are released through the edge drop callback.
//
// Returns ferr.ErrNotFound if the node does not exist.
//
// Complexity: O(deg(v)).
func (g *Graph) RemoveNode(key uint64) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[key]
	if !ok {
		return nil, fmt.Errorf("graph: RemoveNode: %w", ferr.ErrNotFound)
	}

	incident := make([]uint64, 0, len(n.adjacency)+len(n.invAdjacency))
	for _, eid := range n.adjacency {
		incident = append(incident, eid)
	}
	for _, eid := range n.invAdjacency {
		incident = append(incident, eid)
	}
	for _, eid := range incident {
		g.removeEdgeLocked(eid)
	}

	delete(g.nodes, key)
	g.freeNodeKeys = append(g.freeNodeKeys, key)

	return n.payload, nil
}

// RemoveEdge deletes the edge with the given key, returning its payload.
// Returns ferr.ErrNotFound if no such edge exists.
//
// Complexity: O(1).
func (g *Graph) RemoveEdge(key uint64) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.edges[key]
	if !ok {
		return nil, fmt.Errorf("graph: RemoveEdge: %w", ferr.ErrNotFound)
	}
	payload := e.payload
	g.removeEdgeLocked(key)

	return payload, nil
}

// removeEdgeLocked removes edge eid from the edge table, the (src,dst)
// index, and both endpoints' adjacency tables, releasing its payload
// through the edge drop callback. Caller must hold g.mu for writing, and
// eid must be a live edge key.
func (g *Graph) removeEdgeLocked(eid uint64) {
	e := g.edges[eid]
	delete(g.edges, eid)
	delete(g.edgeIndex, [2]uint64{e.src, e.dst})
	g.freeEdgeKeys = append(g.freeEdgeKeys, eid)

	if srcNode, ok := g.nodes[e.src]; ok {
		delete(srcNode.adjacency, e.dst)
	}
	if dstNode, ok := g.nodes[e.dst]; ok {
		delete(dstNode.invAdjacency, e.src)
	}
	if g.edgeDrop != nil {
		g.edgeDrop(e.payload)
	}
}

// ContainsEdge reports whether an edge src->dst exists. Complexity: O(1).
func (g *Graph) ContainsEdge(src, dst uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edgeIndex[[2]uint64{src, dst}]

	return ok
}

// FindEdge returns the key and payload of the edge src->dst, if any.
// Complexity: O(1).
func (g *Graph) FindEdge(src, dst uint64) (key uint64, payload any, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	eid, exists := g.edgeIndex[[2]uint64{src, dst}]
	if !exists {
		return NoID, nil, false
	}

	return eid, g.edges[eid].payload, true
}

// NodePayload returns the payload of node key, if it exists.
func (g *Graph) NodePayload(key uint64) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[key]
	if !ok {
		return nil, false
	}

	return n.payload, true
}

// HasNode reports whether key names a live node. Complexity: O(1).
func (g *Graph) HasNode(key uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[key]

	return ok
}

// Clear resets the graph to empty, releasing every live payload through the
// configured drop callbacks, and resets both free-lists and counters.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.edgeDrop != nil {
		for _, e := range g.edges {
			g.edgeDrop(e.payload)
		}
	}
	if g.nodeDrop != nil {
		for _, n := range g.nodes {
			g.nodeDrop(n.payload)
		}
	}
	g.nodes = make(map[uint64]*node)
	g.edges = make(map[uint64]*edge)
	g.edgeIndex = make(map[[2]uint64]uint64)
	g.nextNodeKey = 0
	g.nextEdgeKey = 0
	g.freeNodeKeys = nil
	g.freeEdgeKeys = nil
}

// FilterEdges removes every edge for which pred returns false, releasing
// removed payloads through the edge drop callback.
func (g *Graph) FilterEdges(pred func(src, dst uint64, payload any) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var doomed []uint64
	for eid, e := range g.edges {
		if !pred(e.src, e.dst, e.payload) {
			doomed = append(doomed, eid)
		}
	}
	for _, eid := range doomed {
		g.removeEdgeLocked(eid)
	}
}

// FilterNodes removes every node for which pred returns false, along with
// all edges incident to a removed node. Removed node and edge payloads are
// released through the configured drop callbacks. Doomed nodes are
// collected before any mutation, preserving iterator safety.
func (g *Graph) FilterNodes(pred func(key uint64, payload any) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var doomed []uint64
	for key, n := range g.nodes {
		if !pred(key, n.payload) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		n := g.nodes[key]
		incident := make([]uint64, 0, len(n.adjacency)+len(n.invAdjacency))
		for _, eid := range n.adjacency {
			incident = append(incident, eid)
		}
		for _, eid := range n.invAdjacency {
			incident = append(incident, eid)
		}
		for _, eid := range incident {
			g.removeEdgeLocked(eid)
		}
		delete(g.nodes, key)
		g.freeNodeKeys = append(g.freeNodeKeys, key)
		if g.nodeDrop != nil {
			g.nodeDrop(n.payload)
		}
	}
}

// Reverse swaps every edge's endpoints and every node's two adjacency
// tables in one pass. Edge keys, node keys, and payloads are preserved.
func (g *Graph) Reverse() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range g.edges {
		e.src, e.dst = e.dst, e.src
	}
	newIndex := make(map[[2]uint64]uint64, len(g.edgeIndex))
	for _, e := range g.edges {
		newIndex[[2]uint64{e.src, e.dst}] = e.key
	}
	g.edgeIndex = newIndex
	for _, n := range g.nodes {
		n.adjacency, n.invAdjacency = n.invAdjacency, n.adjacency
	}
}
