package graphgen

import (
	"fmt"
	"math/rand"

	"github.com/fimoengine/fimo-std/graph"
)

const (
	methodPath         = "Path"
	methodCycle        = "Cycle"
	methodComplete     = "Complete"
	methodStar         = "Star"
	methodWheel        = "Wheel"
	methodGrid         = "Grid"
	methodRandomSparse = "RandomSparse"

	minPathNodes     = 1
	minCycleNodes    = 3
	minCompleteNodes = 1
	minStarSpokes    = 1
	minWheelSpokes   = 3
	minGridDim       = 1

	probMin = 0.0
	probMax = 1.0
)

// addNodes inserts n payload-free nodes and returns their keys in ascending
// (insertion) order, for use as the index->key lookup every generator below
// builds its edges against.
func addNodes(g *graph.Graph, n int) ([]uint64, error) {
	keys := make([]uint64, n)
	for i := 0; i < n; i++ {
		key, err := g.AddNode(nil)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	return keys, nil
}

// Path returns a Constructor that builds a directed chain of n nodes,
// 0->1->2->...->(n-1).
func Path(n int) Constructor {
	return func(g *graph.Graph) error {
		if n < minPathNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodPath, n, minPathNodes, ErrTooFewNodes)
		}
		keys, err := addNodes(g, n)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodPath, err)
		}
		for i := 0; i+1 < n; i++ {
			if _, err := g.AddEdge(keys[i], keys[i+1], nil, nil); err != nil {
				return fmt.Errorf("%s: AddEdge(%d->%d): %w", methodPath, i, i+1, err)
			}
		}

		return nil
	}
}

// Cycle returns a Constructor that builds a directed ring of n nodes,
// 0->1->...->(n-1)->0.
func Cycle(n int) Constructor {
	return func(g *graph.Graph) error {
		if n < minCycleNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodCycle, n, minCycleNodes, ErrTooFewNodes)
		}
		keys, err := addNodes(g, n)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodCycle, err)
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			if _, err := g.AddEdge(keys[i], keys[j], nil, nil); err != nil {
				return fmt.Errorf("%s: AddEdge(%d->%d): %w", methodCycle, i, j, err)
			}
		}

		return nil
	}
}

// Complete returns a Constructor that builds a directed complete graph over
// n nodes: every ordered pair (i,j) with i!=j gets an edge.
func Complete(n int) Constructor {
	return func(g *graph.Graph) error {
		if n < minCompleteNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodComplete, n, minCompleteNodes, ErrTooFewNodes)
		}
		keys, err := addNodes(g, n)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodComplete, err)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				if _, err := g.AddEdge(keys[i], keys[j], nil, nil); err != nil {
					return fmt.Errorf("%s: AddEdge(%d->%d): %w", methodComplete, i, j, err)
				}
			}
		}

		return nil
	}
}

// Star returns a Constructor that builds one hub node with edges out to
// spokes satellite nodes (hub->spoke_0, hub->spoke_1, ...). The hub key is
// always the first node added (index 0).
func Star(spokes int) Constructor {
	return func(g *graph.Graph) error {
		if spokes < minStarSpokes {
			return fmt.Errorf("%s: spokes=%d < min=%d: %w", methodStar, spokes, minStarSpokes, ErrTooFewNodes)
		}
		keys, err := addNodes(g, spokes+1)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodStar, err)
		}
		hub := keys[0]
		for i := 1; i <= spokes; i++ {
			if _, err := g.AddEdge(hub, keys[i], nil, nil); err != nil {
				return fmt.Errorf("%s: AddEdge(hub->%d): %w", methodStar, i, err)
			}
		}

		return nil
	}
}

// Wheel returns a Constructor that builds a hub-and-rim graph: a hub with an
// edge to every rim node (node 0 is the hub), plus a Cycle over the spokes
// rim nodes.
func Wheel(spokes int) Constructor {
	return func(g *graph.Graph) error {
		if spokes < minWheelSpokes {
			return fmt.Errorf("%s: spokes=%d < min=%d: %w", methodWheel, spokes, minWheelSpokes, ErrTooFewNodes)
		}
		keys, err := addNodes(g, spokes+1)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodWheel, err)
		}
		hub := keys[0]
		rim := keys[1:]
		for i, rk := range rim {
			if _, err := g.AddEdge(hub, rk, nil, nil); err != nil {
				return fmt.Errorf("%s: AddEdge(hub->rim%d): %w", methodWheel, i, err)
			}
		}
		for i := 0; i < spokes; i++ {
			j := (i + 1) % spokes
			if _, err := g.AddEdge(rim[i], rim[j], nil, nil); err != nil {
				return fmt.Errorf("%s: AddEdge(rim%d->rim%d): %w", methodWheel, i, j, err)
			}
		}

		return nil
	}
}

// Grid returns a Constructor that builds a rows x cols lattice of nodes,
// addressed in row-major order, with edges from each cell to its right and
// down neighbors (a directed mesh, useful for fixture topologies wider and
// shallower than a plain chain).
func Grid(rows, cols int) Constructor {
	return func(g *graph.Graph) error {
		if rows < minGridDim || cols < minGridDim {
			return fmt.Errorf("%s: rows=%d cols=%d below min=%d: %w", methodGrid, rows, cols, minGridDim, ErrTooFewNodes)
		}
		keys, err := addNodes(g, rows*cols)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodGrid, err)
		}
		at := func(r, c int) uint64 { return keys[r*cols+c] }
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if c+1 < cols {
					if _, err := g.AddEdge(at(r, c), at(r, c+1), nil, nil); err != nil {
						return fmt.Errorf("%s: AddEdge(right of %d,%d): %w", methodGrid, r, c, err)
					}
				}
				if r+1 < rows {
					if _, err := g.AddEdge(at(r, c), at(r+1, c), nil, nil); err != nil {
						return fmt.Errorf("%s: AddEdge(down from %d,%d): %w", methodGrid, r, c, err)
					}
				}
			}
		}

		return nil
	}
}

// RandomSparse returns a Constructor that samples an Erdos-Renyi-like
// directed graph over n nodes, including each ordered pair (i,j), i!=j,
// independently with probability p. rng is required whenever 0<p<1; for
// p==0 or p==1 the outcome is deterministic and rng may be nil.
//
// Trial order is fixed (i asc, then j asc) so that, for a fixed rng seed,
// the resulting edge set is reproducible.
func RandomSparse(n int, p float64, rng *rand.Rand) Constructor {
	return func(g *graph.Graph) error {
		if n < minCompleteNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodRandomSparse, n, minCompleteNodes, ErrTooFewNodes)
		}
		if p < probMin || p > probMax {
			return fmt.Errorf("%s: p=%.6f not in [%.1f,%.1f]: %w", methodRandomSparse, p, probMin, probMax, ErrInvalidProbability)
		}
		if rng == nil && p > 0.0 && p < 1.0 {
			return fmt.Errorf("%s: %w", methodRandomSparse, ErrNeedRandSource)
		}

		keys, err := addNodes(g, n)
		if err != nil {
			return fmt.Errorf("%s: AddNode: %w", methodRandomSparse, err)
		}

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				include := p == 1.0
				if rng != nil && p > 0.0 && p < 1.0 {
					include = rng.Float64() <= p
				}
				if !include {
					continue
				}
				if _, err := g.AddEdge(keys[i], keys[j], nil, nil); err != nil {
					return fmt.Errorf("%s: AddEdge(%d->%d): %w", methodRandomSparse, i, j, err)
				}
			}
		}

		return nil
	}
}
