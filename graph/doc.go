// Package graph provides a thread-safe, ownership-carrying directed graph
// keyed by stable 64-bit identifiers.
//
// Unlike a typical weighted/numeric graph library, graph.Graph is a pure
// topology structure used to express dependency and reachability relations:
// nodes and edges carry an optional opaque payload (owned by the graph and
// released through a caller-supplied drop callback) rather than a weight.
// This is the building block the module registry (see package module) uses
// for its dependency graph, and that external callers may use directly for
// their own reachability queries.
//
// Keys are assigned from a monotonic counter with a free-list for recycled
// ids, exactly as lvlath/core generates textual edge ids from an atomic
// counter; here the counter is the id itself rather than a string suffix.
// The key NoID (2^64-1) is reserved and never assigned.
//
// An edge is uniquely identified by its (src,dst) pair: inserting a second
// edge for an existing pair replaces the payload rather than creating a
// parallel edge (graph.Graph is deliberately not a multigraph — contrast
// with lvlath/core's WithMultiEdges()).
//
// All ordered iteration (Nodes, Edges, Neighbors, ...) yields keys in
// ascending order, matching lvlath/core's own convention of sorting on
// read (core.Graph.Vertices/Edges) rather than maintaining an ordered map.
package graph
