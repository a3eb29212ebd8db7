package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/tasks"
)

func noop(id string) contracts.Runnable {
	return tasks.NewFuncTask(contracts.TaskID(id), func(context.Context, map[contracts.TaskID]any) (any, error) {
		return nil, nil
	})
}

// diamond builds A -> {B, C} -> D.
func diamond(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, id := range []string{"A", "B", "C", "D"} {
		g.AddNode(noop(id))
	}
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("A", "C"))
	require.NoError(t, g.AddEdge("B", "D"))
	require.NoError(t, g.AddEdge("C", "D"))
	return g
}

func TestAddNodeReplacesExisting(t *testing.T) {
	g := New()
	first := noop("A")
	second := noop("A")

	assert.False(t, g.AddNode(first))
	assert.True(t, g.AddNode(second))
	assert.Equal(t, 1, g.Len())
	assert.Same(t, second, g.Task("A"))
}

func TestAddEdgeUnknownNode(t *testing.T) {
	g := New()
	g.AddNode(noop("A"))

	err := g.AddEdge("A", "missing")
	require.ErrorIs(t, err, contracts.ErrUnknownNode)

	err = g.AddEdge("missing", "A")
	require.ErrorIs(t, err, contracts.ErrUnknownNode)
}

func TestLevelsDiamond(t *testing.T) {
	g := diamond(t)

	levels, err := g.Levels()
	require.NoError(t, err)

	want := [][]contracts.TaskID{{"A"}, {"B", "C"}, {"D"}}
	assert.Equal(t, want, levels)
}

func TestLevelsSingleNode(t *testing.T) {
	g := New()
	g.AddNode(noop("solo"))

	levels, err := g.Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]contracts.TaskID{{"solo"}}, levels)
}

func TestLevelsDisconnectedComponents(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "X", "Y"} {
		g.AddNode(noop(id))
	}
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("X", "Y"))

	levels, err := g.Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]contracts.TaskID{{"A", "X"}, {"B", "Y"}}, levels)
}

func TestLevelsCycle(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		g.AddNode(noop(id))
	}
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("B", "C"))
	require.NoError(t, g.AddEdge("C", "A"))

	_, err := g.Levels()
	require.ErrorIs(t, err, contracts.ErrCycle)
}

func TestLevelsCycleWithAcyclicPrefix(t *testing.T) {
	g := New()
	for _, id := range []string{"root", "A", "B"} {
		g.AddNode(noop(id))
	}
	require.NoError(t, g.AddEdge("root", "A"))
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("B", "A"))

	_, err := g.Levels()
	require.ErrorIs(t, err, contracts.ErrCycle)
}

func TestDownstreamClosure(t *testing.T) {
	g := diamond(t)

	down, err := g.DownstreamClosure("A")
	require.NoError(t, err)
	assert.Equal(t, map[contracts.TaskID]struct{}{"B": {}, "C": {}, "D": {}}, down)

	down, err = g.DownstreamClosure("B")
	require.NoError(t, err)
	assert.Equal(t, map[contracts.TaskID]struct{}{"D": {}}, down)

	down, err = g.DownstreamClosure("D")
	require.NoError(t, err)
	assert.Empty(t, down)
}

func TestUpstreamClosure(t *testing.T) {
	g := diamond(t)

	up, err := g.UpstreamClosure("D")
	require.NoError(t, err)
	assert.Equal(t, map[contracts.TaskID]struct{}{"A": {}, "B": {}, "C": {}}, up)

	up, err = g.UpstreamClosure("A")
	require.NoError(t, err)
	assert.Empty(t, up)
}

func TestClosureUnknownNode(t *testing.T) {
	g := diamond(t)

	_, err := g.DownstreamClosure("missing")
	require.ErrorIs(t, err, contracts.ErrUnknownNode)

	_, err = g.UpstreamClosure("missing")
	require.ErrorIs(t, err, contracts.ErrUnknownNode)
}

func TestClosuresAreInverse(t *testing.T) {
	g := diamond(t)

	// B is downstream of A iff A is upstream of B.
	for _, from := range g.TaskIDs() {
		down, err := g.DownstreamClosure(from)
		require.NoError(t, err)
		for to := range down {
			up, err := g.UpstreamClosure(to)
			require.NoError(t, err)
			assert.Contains(t, up, from)
		}
	}
}

func TestDirectUpstream(t *testing.T) {
	g := diamond(t)

	assert.Equal(t, []contracts.TaskID{"B", "C"}, g.DirectUpstream("D"))
	assert.Empty(t, g.DirectUpstream("A"))
}

func TestTaskIDsSorted(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(noop(id))
	}
	assert.Equal(t, []contracts.TaskID{"a", "b", "c"}, g.TaskIDs())
}

func TestDuplicateEdgeIsIdempotent(t *testing.T) {
	g := diamond(t)
	require.NoError(t, g.AddEdge("A", "B"))

	levels, err := g.Levels()
	require.NoError(t, err)
	assert.Len(t, levels, 3)
	assert.Equal(t, []contracts.TaskID{"A"}, g.DirectUpstream("B"))
}
