package graph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fimoengine/fimo-std/ferr"
	"github.com/fimoengine/fimo-std/graph"
)

func newPlainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(0, 0, nil, nil)
	require.NoError(t, err)

	return g
}

func newPayloadGraph(t *testing.T) (*graph.Graph, *[]any, *[]any) {
	t.Helper()
	var droppedNodes, droppedEdges []any
	g, err := graph.New(1, 1,
		func(p any) { droppedNodes = append(droppedNodes, p) },
		func(p any) { droppedEdges = append(droppedEdges, p) },
	)
	require.NoError(t, err)

	return g, &droppedNodes, &droppedEdges
}

func TestNew_RejectsMismatchedDropCallback(t *testing.T) {
	_, err := graph.New(1, 0, nil, nil)
	assert.ErrorIs(t, err, ferr.ErrInvalid)

	_, err = graph.New(0, 0, func(any) {}, nil)
	assert.ErrorIs(t, err, ferr.ErrInvalid)
}

// TestScenarioS1 reproduces spec scenario S1: add_node(A), add_node(B),
// add_edge(A,B,99), remove_node(A) leaves B with an empty inv_adjacency,
// collects A and the edge, and drops the edge payload exactly once.
func TestScenarioS1(t *testing.T) {
	g, _, droppedEdges := newPayloadGraph(t)

	a, err := g.AddNode(10)
	require.NoError(t, err)
	b, err := g.AddNode(20)
	require.NoError(t, err)
	_, err = g.AddEdge(a, b, 99, nil)
	require.NoError(t, err)

	payload, err := g.RemoveNode(a)
	require.NoError(t, err)
	assert.Equal(t, 10, payload)

	assert.False(t, g.HasNode(a))
	assert.True(t, g.HasNode(b))
	assert.Empty(t, g.Neighbors(b, true))
	assert.Equal(t, []any{int(99)}, *droppedEdges)
}

func TestAddEdge_ReplacesPayloadAndReusesKey(t *testing.T) {
	g, _, droppedEdges := newPayloadGraph(t)
	a, _ := g.AddNode("a")
	b, _ := g.AddNode("b")

	key1, err := g.AddEdge(a, b, "first", nil)
	require.NoError(t, err)

	var old any
	key2, err := g.AddEdge(a, b, "second", &old)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
	assert.Equal(t, "first", old)
	assert.Empty(t, *droppedEdges, "replaced payload went to the sink, not the drop callback")

	key3, err := g.AddEdge(a, b, "third", nil)
	require.NoError(t, err)
	assert.Equal(t, key1, key3)
	assert.Equal(t, []any{"second"}, *droppedEdges, "no sink this time, so the drop callback fires")
}

func TestUpdateEdge_RequiresExisting(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)

	_, err := g.UpdateEdge(a, b, nil, nil)
	assert.ErrorIs(t, err, ferr.ErrNotFound)

	_, err = g.AddEdge(a, b, nil, nil)
	require.NoError(t, err)
	_, err = g.UpdateEdge(a, b, nil, nil)
	assert.NoError(t, err)
}

func TestAddEdge_MissingEndpoint(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	_, err := g.AddEdge(a, graph.NoID, nil, nil)
	assert.ErrorIs(t, err, ferr.ErrInvalid)
}

func TestNodeKeyRecycling(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	_, err := g.RemoveNode(a)
	require.NoError(t, err)
	b, _ := g.AddNode(nil)
	assert.Equal(t, a, b, "freed keys are recycled before the counter advances")
}

// TestScenarioS2 reproduces spec scenario S2: on A->B->C->A, IsCyclic is
// true and TopologicalSort fails with ferr.ErrInvalid.
func TestScenarioS2(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	c, _ := g.AddNode(nil)
	_, err := g.AddEdge(a, b, nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(b, c, nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(c, a, nil, nil)
	require.NoError(t, err)

	assert.True(t, g.IsCyclic())
	_, err = g.TopologicalSort(false)
	assert.ErrorIs(t, err, ferr.ErrInvalid)
}

// TestScenarioS3 reproduces spec scenario S3: on A->B, A->C, B->D, C->D,
// TopologicalSort(inward=false) orders A before B and C, and both before D.
func TestScenarioS3(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	c, _ := g.AddNode(nil)
	d, _ := g.AddNode(nil)
	mustEdge := func(src, dst uint64) {
		_, err := g.AddEdge(src, dst, nil, nil)
		require.NoError(t, err)
	}
	mustEdge(a, b)
	mustEdge(a, c)
	mustEdge(b, d)
	mustEdge(c, d)

	assert.False(t, g.IsCyclic())
	order, err := g.TopologicalSort(false)
	require.NoError(t, err)

	pos := make(map[uint64]int, len(order))
	for i, k := range order {
		pos[k] = i
	}
	assert.Less(t, pos[a], pos[b])
	assert.Less(t, pos[a], pos[c])
	assert.Less(t, pos[b], pos[d])
	assert.Less(t, pos[c], pos[d])
}

func TestPathExists_SelfCycleDetection(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	c, _ := g.AddNode(nil)
	_, _ = g.AddEdge(a, b, nil, nil)
	_, _ = g.AddEdge(b, c, nil, nil)

	assert.False(t, g.PathExists(a, a), "acyclic a has no path back to itself")
	assert.True(t, g.PathExists(a, c))

	_, err := g.AddEdge(c, a, nil, nil)
	require.NoError(t, err)
	assert.True(t, g.PathExists(a, a), "a now lies on the cycle a->b->c->a")
}

func TestCloneReachableSubgraph_Closure(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	c, _ := g.AddNode(nil)
	isolated, _ := g.AddNode(nil)
	_, _ = g.AddEdge(a, b, nil, nil)
	_, _ = g.AddEdge(b, c, nil, nil)
	_ = isolated

	var mappedNodes, mappedEdges int
	sub, err := g.CloneReachableSubgraph(a,
		func(uint64, uint64, any) error { mappedNodes++; return nil },
		func(uint64, uint64, any) error { mappedEdges++; return nil },
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, 3, mappedNodes)
	assert.Equal(t, 2, mappedEdges)
	assert.Equal(t, 3, sub.Stats().NodeCount)
	assert.Equal(t, 2, sub.Stats().EdgeCount)
}

func TestClone_PreservesTopologyAndFiresMappersInAscendingOrder(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	_, _ = g.AddEdge(a, b, nil, nil)

	var seenNodes []uint64
	clone, err := g.Clone(
		func(old, _ uint64, _ any) error { seenNodes = append(seenNodes, old); return nil },
		nil, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []uint64{a, b}, seenNodes)
	assert.Equal(t, 2, clone.Stats().NodeCount)
	assert.Equal(t, 1, clone.Stats().EdgeCount)
}

func TestReverse_SwapsEndpointsAndAdjacency(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	_, _ = g.AddEdge(a, b, nil, nil)

	g.Reverse()
	assert.True(t, g.ContainsEdge(b, a))
	assert.False(t, g.ContainsEdge(a, b))
	assert.Equal(t, []uint64{a}, g.Neighbors(b, false))
}

func TestExternals(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	_, _ = g.AddEdge(a, b, nil, nil)

	assert.Equal(t, []uint64{a}, g.Externals(true), "a has no incoming edges")
	assert.Equal(t, []uint64{b}, g.Externals(false), "b has no outgoing edges")
}

func TestClear_ReleasesPayloadsAndResetsCounters(t *testing.T) {
	g, droppedNodes, droppedEdges := newPayloadGraph(t)
	a, _ := g.AddNode("nodeA")
	b, _ := g.AddNode("nodeB")
	_, _ = g.AddEdge(a, b, "edgeAB", nil)

	g.Clear()
	assert.ElementsMatch(t, []any{"nodeA", "nodeB"}, *droppedNodes)
	assert.Equal(t, []any{"edgeAB"}, *droppedEdges)

	na, err := g.AddNode("fresh")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), na, "counters reset to zero on Clear")
}

func TestFilterEdges(t *testing.T) {
	g := newPlainGraph(t)
	a, _ := g.AddNode(nil)
	b, _ := g.AddNode(nil)
	c, _ := g.AddNode(nil)
	_, _ = g.AddEdge(a, b, nil, nil)
	_, _ = g.AddEdge(a, c, nil, nil)

	g.FilterEdges(func(_, dst uint64, _ any) bool { return dst == b })
	assert.True(t, g.ContainsEdge(a, b))
	assert.False(t, g.ContainsEdge(a, c))
}

func TestFilterNodes_RemovesIncidentEdgesAndDropsPayloads(t *testing.T) {
	g, droppedNodes, droppedEdges := newPayloadGraph(t)
	a, _ := g.AddNode("keep")
	b, _ := g.AddNode("drop-b")
	c, _ := g.AddNode("drop-c")
	_, _ = g.AddEdge(a, b, "a->b", nil)
	_, _ = g.AddEdge(b, c, "b->c", nil)

	g.FilterNodes(func(key uint64, _ any) bool { return key == a })

	assert.True(t, g.HasNode(a))
	assert.False(t, g.HasNode(b))
	assert.False(t, g.HasNode(c))
	assert.Equal(t, 0, g.Stats().EdgeCount)
	assert.ElementsMatch(t, []any{"drop-b", "drop-c"}, *droppedNodes)
	assert.ElementsMatch(t, []any{"a->b", "b->c"}, *droppedEdges)
}

func TestRemoveEdge_NotFound(t *testing.T) {
	g := newPlainGraph(t)
	_, err := g.RemoveEdge(graph.NoID)
	assert.True(t, errors.Is(err, ferr.ErrNotFound))
}

func BenchmarkAddEdge(b *testing.B) {
	g, err := graph.New(0, 0, nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	const nodes = 1024
	keys := make([]uint64, nodes)
	for i := range keys {
		keys[i], _ = g.AddNode(nil)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := keys[i%nodes]
		dst := keys[(i+1)%nodes]
		if _, err := g.AddEdge(src, dst, nil, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPathExists(b *testing.B) {
	g, err := graph.New(0, 0, nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	const nodes = 256
	keys := make([]uint64, nodes)
	for i := range keys {
		keys[i], _ = g.AddNode(nil)
	}
	for i := 0; i+1 < nodes; i++ {
		_, _ = g.AddEdge(keys[i], keys[i+1], nil, nil)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !g.PathExists(keys[0], keys[nodes-1]) {
			b.Fatal("path must exist")
		}
	}
}
