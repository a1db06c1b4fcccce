package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T) (*Forest, map[string]*Node) {
	t.Helper()
	f := NewForest()
	nodes := map[string]*Node{}
	for _, name := range []string{"root", "a", "a1", "a2", "b", "b1"} {
		nodes[name] = f.New(name)
	}
	nodes["root"].AddChild(nodes["a"])
	nodes["a"].AddChild(nodes["a1"])
	nodes["a"].AddChild(nodes["a2"])
	nodes["root"].AddChild(nodes["b"])
	nodes["b"].AddChild(nodes["b1"])
	return f, nodes
}

func owners(nodes []*Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n.Owner()
	}
	return out
}

func TestDescendants_PreOrder(t *testing.T) {
	_, n := build(t)

	assert.Equal(t, []any{"a", "a1", "a2", "b", "b1"}, owners(n["root"].Descendants()))
	assert.Equal(t, []any{"a", "b"}, owners(n["root"].Children()))
}

func TestDescendants_CountIdentity(t *testing.T) {
	_, n := build(t)

	for _, node := range n {
		sum := 0
		for _, c := range node.Children() {
			sum += 1 + len(c.Descendants())
		}
		assert.Equal(t, sum, len(node.Descendants()), "node %v", node.Owner())
	}
}

func TestAncestors_RootFirst(t *testing.T) {
	_, n := build(t)

	assert.Equal(t, []any{"root", "a"}, owners(n["a2"].Ancestors()))
	assert.Empty(t, n["root"].Ancestors())
	assert.Equal(t, n["root"], n["b1"].Root())
	assert.True(t, n["root"].IsAncestorOf(n["b1"]))
	assert.False(t, n["a"].IsAncestorOf(n["b1"]))
}

func TestAddChild_Idempotent(t *testing.T) {
	_, n := build(t)

	assert.False(t, n["root"].AddChild(n["a"]))
	assert.Equal(t, []any{"a", "b"}, owners(n["root"].Children()))
}

func TestRemoveChild_KeepsParentReference(t *testing.T) {
	_, n := build(t)

	require.True(t, n["a"].RemoveChild(n["a1"]))
	assert.False(t, n["a"].RemoveChild(n["a1"]), "second removal is a no-op")

	assert.Equal(t, n["a"].ID(), n["a1"].ParentID())
	assert.Equal(t, n["a"], n["a1"].Parent())
	assert.False(t, n["a"].HasChild(n["a1"]))
}

func TestForget_StopsResolving(t *testing.T) {
	f, n := build(t)

	f.Forget(n["b1"].ID())

	assert.Empty(t, n["b"].Children())
	assert.Equal(t, []ID{n["b1"].ID()}, n["b"].ChildIDs(), "the child ID is still recorded")
	assert.Equal(t, 5, f.Len())
}

func TestAddChild_CycleIsAccepted(t *testing.T) {
	// Cycles are not defended against; the hierarchy simply becomes cyclic.
	_, n := build(t)

	assert.True(t, n["a1"].AddChild(n["root"]))
	assert.Equal(t, n["a1"].ID(), n["root"].ParentID())
	assert.True(t, n["a1"].HasChild(n["root"]))
}
