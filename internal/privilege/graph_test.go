package privilege

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func threeLevelNodes() []Node {
	return []Node{
		{Name: "exec"},
		{Name: "privileged", Parent: "exec", HasParent: true},
		{Name: "configure", Parent: "privileged", HasParent: true},
	}
}

func TestGraph_New_RejectsUnknownParent(t *testing.T) {
	t.Parallel()

	_, err := New([]Node{
		{Name: "configure", Parent: "privileged", HasParent: true},
	})
	require.Error(t, err)
}

func TestGraph_New_RejectsCycle(t *testing.T) {
	t.Parallel()

	_, err := New([]Node{
		{Name: "a", Parent: "b", HasParent: true},
		{Name: "b", Parent: "a", HasParent: true},
	})
	require.Error(t, err)
}

func TestGraph_Path_SameLevelIsEmptyNonNil(t *testing.T) {
	t.Parallel()

	g, err := New(threeLevelNodes())
	require.NoError(t, err)

	steps, err := g.Path("exec", "exec")
	require.NoError(t, err)
	require.NotNil(t, steps)
	require.Empty(t, steps)
}

func TestGraph_Path_StraightEscalation(t *testing.T) {
	t.Parallel()

	g, err := New(threeLevelNodes())
	require.NoError(t, err)

	steps, err := g.Path("exec", "configure")
	require.NoError(t, err)
	require.Equal(t, []Step{
		{From: "exec", To: "privileged", Up: true},
		{From: "privileged", To: "configure", Up: true},
	}, steps)
}

func TestGraph_Path_StraightDeescalation(t *testing.T) {
	t.Parallel()

	g, err := New(threeLevelNodes())
	require.NoError(t, err)

	steps, err := g.Path("configure", "exec")
	require.NoError(t, err)
	require.Equal(t, []Step{
		{From: "configure", To: "privileged", Up: false},
		{From: "privileged", To: "exec", Up: false},
	}, steps)
}

func TestGraph_Path_SiblingsGoThroughLowestCommonAncestor(t *testing.T) {
	t.Parallel()

	g, err := New([]Node{
		{Name: "exec"},
		{Name: "shell", Parent: "exec", HasParent: true},
		{Name: "configure", Parent: "exec", HasParent: true},
	})
	require.NoError(t, err)

	steps, err := g.Path("shell", "configure")
	require.NoError(t, err)
	require.Equal(t, []Step{
		{From: "shell", To: "exec", Up: false},
		{From: "exec", To: "configure", Up: true},
	}, steps)
}

func TestGraph_Path_UnknownLevelErrors(t *testing.T) {
	t.Parallel()

	g, err := New(threeLevelNodes())
	require.NoError(t, err)

	_, err = g.Path("nonexistent", "exec")
	require.Error(t, err)
}

func TestGraph_Path_IsMemoizedAcrossCalls(t *testing.T) {
	t.Parallel()

	g, err := New(threeLevelNodes())
	require.NoError(t, err)

	first, err := g.Path("exec", "configure")
	require.NoError(t, err)
	second, err := g.Path("exec", "configure")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGraph_Has(t *testing.T) {
	t.Parallel()

	g, err := New(threeLevelNodes())
	require.NoError(t, err)

	require.True(t, g.Has("configure"))
	require.False(t, g.Has("does-not-exist"))
}
