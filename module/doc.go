// Package module implements the module registry: a table of loaded modules,
// their exported symbols and namespaces, a parameter store with visibility
// rules, and the dependency graph connecting them. It also implements the
// loading set (a transactional batch of modules committed atomically) and
// the safe unload protocol.
//
// The registry's own dependency graph is a graph.Graph: each module's live
// *Module record is held as its node payload, and a dependency edge A->B
// ("A depends on B") carries a bool payload recording whether the edge is static (declared in
// A's manifest) or dynamic (acquired at run time).
package module
