package graph

import (
	"fmt"
	"sync"

	"github.com/fimoengine/fimo-std/ferr"
)

// NoID is the reserved key meaning "no id". It is never assigned to a live
// node or edge.
const NoID uint64 = ^uint64(0)

// DropFunc releases a node or edge payload. It is invoked at most once per
// payload, when the owning node/edge is removed, replaced, or the graph is
// cleared/dropped.
type DropFunc func(payload any)

// node is the internal representation of a graph vertex.
//
// adjacency maps a destination key to the edge key connecting this node to
// it (outgoing); invAdjacency maps a source key to the edge key connecting
// that node to this one (incoming). Both are plain maps — ascending order
// is produced by sorting keys at iteration time, not by the storage itself,
// mirroring core.Graph's sort-on-read convention.
type node struct {
	key          uint64
	payload      any
	adjacency    map[uint64]uint64 // dst key -> edge key
	invAdjacency map[uint64]uint64 // src key -> edge key
}

// edge is the internal representation of a graph edge.
type edge struct {
	key     uint64
	src     uint64
	dst     uint64
	payload any
}

// Graph is a directed graph of stable 64-bit keyed nodes and edges.
//
// A Graph owns every node and edge payload it stores and calls the
// configured drop callback exactly once when a payload is discarded.
// Graph is guarded by a single RWMutex: node and edge mutations are
// cross-cutting (adding an edge touches both endpoints' adjacency tables)
// in a way that splitting locks, as core.Graph does for its independent
// vertex/edge tables, cannot safely preserve the bijectivity invariant
// (§8 property 1) without a careful two-phase locking protocol that buys
// little in a structure this size.
type Graph struct {
	mu sync.RWMutex

	nodePayloadEnabled bool
	edgePayloadEnabled bool
	nodeDrop           DropFunc
	edgeDrop           DropFunc

	nodes map[uint64]*node
	edges map[uint64]*edge

	// edgeIndex provides O(1) lookup of an edge key by its (src,dst) pair,
	// used by AddEdge/UpdateEdge/ContainsEdge/FindEdge without scanning
	// adjacency maps.
	edgeIndex map[[2]uint64]uint64

	nextNodeKey  uint64
	nextEdgeKey  uint64
	freeNodeKeys []uint64
	freeEdgeKeys []uint64
}

// New constructs an empty Graph.
//
// nodePayloadSize and edgePayloadSize are non-zero iff nodes/edges carry a
// payload; the corresponding drop callback MUST be non-nil in that case,
// and MUST be nil when the size is zero — a mismatch fails with
// ferr.ErrInvalid, mirroring lvlath/core's AddEdge rejecting a non-zero
// weight on an unweighted graph.
func New(nodePayloadSize, edgePayloadSize int, nodeDrop, edgeDrop DropFunc) (*Graph, error) {
	if (nodePayloadSize != 0) != (nodeDrop != nil) {
		return nil, fmt.Errorf("graph: New: node payload size/drop mismatch: %w", ferr.ErrInvalid)
	}
	if (edgePayloadSize != 0) != (edgeDrop != nil) {
		return nil, fmt.Errorf("graph: New: edge payload size/drop mismatch: %w", ferr.ErrInvalid)
	}

	return &Graph{
		nodePayloadEnabled: nodePayloadSize != 0,
		edgePayloadEnabled: edgePayloadSize != 0,
		nodeDrop:           nodeDrop,
		edgeDrop:           edgeDrop,
		nodes:              make(map[uint64]*node),
		edges:              make(map[uint64]*edge),
		edgeIndex:          make(map[[2]uint64]uint64),
	}, nil
}

// Stats is an O(V+E) read-only summary of a Graph's size and shape.
type Stats struct {
	NodeCount int
	EdgeCount int
	// SourceCount is the number of nodes with no incoming edges.
	SourceCount int
	// SinkCount is the number of nodes with no outgoing edges.
	SinkCount int
}

// Stats produces a snapshot summary of the graph's size. Complexity: O(V+E).
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := Stats{NodeCount: len(g.nodes), EdgeCount: len(g.edges)}
	for _, n := range g.nodes {
		if len(n.invAdjacency) == 0 {
			st.SourceCount++
		}
		if len(n.adjacency) == 0 {
			st.SinkCount++
		}
	}

	return st
}
