package dag

import (
	"testing"

	"github.com/factstack-labs/factgraph/pkg/formula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) formula.FactKey {
	return formula.FactKey{Entity: "e", Fact: s}
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	g.AddNode(key("b"))
	g.AddNode(key("c"))

	assert.Equal(t, 3, g.NodeCount())

	require.NoError(t, g.AddEdge(key("a"), key("b")))
	require.NoError(t, g.AddEdge(key("b"), key("c")))
	assert.Equal(t, 2, g.EdgeCount())

	// Duplicate edges are ignored.
	require.NoError(t, g.AddEdge(key("a"), key("b")))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraph_AddEdge_MissingNode(t *testing.T) {
	g := New()
	g.AddNode(key("a"))

	assert.Error(t, g.AddEdge(key("a"), key("missing")))
	assert.Error(t, g.AddEdge(key("missing"), key("a")))
}

func TestGraph_AddEdge_SelfDependency(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	assert.Error(t, g.AddEdge(key("a"), key("a")))
}

func TestGraph_ParentsAndChildren(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	g.AddNode(key("b"))
	g.AddNode(key("c"))
	require.NoError(t, g.AddEdge(key("a"), key("b")))
	require.NoError(t, g.AddEdge(key("a"), key("c")))
	require.NoError(t, g.AddEdge(key("b"), key("c")))

	assert.Len(t, g.Parents(key("c")), 2)
	assert.Len(t, g.Children(key("a")), 2)
}

func TestGraph_HasCycle(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	g.AddNode(key("b"))
	g.AddNode(key("c"))
	require.NoError(t, g.AddEdge(key("a"), key("b")))
	require.NoError(t, g.AddEdge(key("b"), key("c")))

	hasCycle, _ := g.HasCycle()
	assert.False(t, hasCycle)

	require.NoError(t, g.AddEdge(key("c"), key("a")))
	hasCycle, path := g.HasCycle()
	require.True(t, hasCycle)

	// Path closes on itself and names every member of the cycle.
	require.GreaterOrEqual(t, len(path), 4)
	assert.Equal(t, path[0], path[len(path)-1])
	assert.Contains(t, path, key("a"))
	assert.Contains(t, path, key("b"))
	assert.Contains(t, path, key("c"))
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	g.AddNode(key("b"))
	g.AddNode(key("c"))
	require.NoError(t, g.AddEdge(key("a"), key("b")))
	require.NoError(t, g.AddEdge(key("b"), key("c")))

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[formula.FactKey]int)
	for i, k := range order {
		pos[k] = i
	}
	assert.Less(t, pos[key("a")], pos[key("b")])
	assert.Less(t, pos[key("b")], pos[key("c")])
}

func TestGraph_TopologicalSort_Cycle(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	g.AddNode(key("b"))
	require.NoError(t, g.AddEdge(key("a"), key("b")))
	require.NoError(t, g.AddEdge(key("b"), key("a")))

	_, err := g.TopologicalSort()
	assert.Error(t, err)
}

func TestGraph_ExecutionLevels(t *testing.T) {
	g := New()
	// a and b are leaves; c depends on both; d depends on c.
	for _, k := range []string{"a", "b", "c", "d"} {
		g.AddNode(key(k))
	}
	require.NoError(t, g.AddEdge(key("a"), key("c")))
	require.NoError(t, g.AddEdge(key("b"), key("c")))
	require.NoError(t, g.AddEdge(key("c"), key("d")))

	levels, err := g.ExecutionLevels()
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []formula.FactKey{key("a"), key("b")}, levels[0])
	assert.Equal(t, []formula.FactKey{key("c")}, levels[1])
	assert.Equal(t, []formula.FactKey{key("d")}, levels[2])
}

func TestGraph_Roots(t *testing.T) {
	g := New()
	g.AddNode(key("a"))
	g.AddNode(key("b"))
	require.NoError(t, g.AddEdge(key("a"), key("b")))

	assert.Equal(t, []formula.FactKey{key("a")}, g.Roots())
}
