package graphgen

import (
	"fmt"

	"github.com/fimoengine/fimo-std/graph"
)

// Constructor mutates a freshly created graph.Graph, adding nodes and edges.
// It mirrors lvlath/builder's own Constructor, but closes over a
// graph.Graph rather than a weighted core.Graph.
type Constructor func(g *graph.Graph) error

// Build runs each Constructor in order against a single fresh, unweighted,
// payload-free topology graph and returns it. A Constructor's error is
// wrapped with its position in the slice and returned immediately; later
// constructors do not run.
func Build(constructors ...Constructor) (*graph.Graph, error) {
	g, err := graph.New(0, 0, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("graphgen: Build: %w", err)
	}

	for i, ctor := range constructors {
		if err := ctor(g); err != nil {
			return nil, fmt.Errorf("graphgen: Build: constructor %d: %w", i, err)
		}
	}

	return g, nil
}
