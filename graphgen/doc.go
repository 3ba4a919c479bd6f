// Package graphgen provides deterministic topology constructors for
// graph.Graph, adapted from lvlath/builder's functional-constructor pattern:
// a Constructor is a closure over its parameters that mutates a freshly
// created graph.Graph, and Build resolves a slice of Constructors in order
// into one graph.
//
// graphgen builds reproducible fixture topologies (a dependency chain, a
// ring, a hub-and-spoke layout, a grid, a random sparse graph) without
// hand-rolling AddNode/AddEdge calls; only its own tests use it.
// It intentionally carries forward only the
// constructors with a structural-graph analogue; see DESIGN.md for the
// disposition of the builder constructors not carried forward (the
// signal/shape-specific ones: Chirp, OHLC, Pulse, Hexagram, Letters,
// PlatonicSolid, Bipartite, RandomRegular).
package graphgen
