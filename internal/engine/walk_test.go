package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// inert is the do-nothing behavior used by structural fixtures. Base omits
// Clone on purpose, so the fixtures carry their own.
type inert struct{ Base }

func (b *inert) Clone() Behavior { return &inert{} }

var _ Behavior = (*inert)(nil)

// buildFixture constructs the reference shape used across the order tests:
//
//	a
//	├── b
//	│   ├── d
//	│   └── e
//	└── c
//	    └── f
func buildFixture(t *testing.T) (*Tree, map[string]*Node) {
	t.Helper()
	tr := New(nil)
	names := []string{"a", "b", "c", "d", "e", "f"}
	byName := make(map[string]*Node, len(names))
	for _, name := range names {
		kind := KindComposite
		if name == "d" || name == "e" || name == "f" {
			kind = KindLeaf
		}
		byName[name] = tr.NewNode(kind, name, &inert{})
	}
	require.NoError(t, byName["a"].AddChild(byName["b"]))
	require.NoError(t, byName["a"].AddChild(byName["c"]))
	require.NoError(t, byName["b"].AddChild(byName["d"]))
	require.NoError(t, byName["b"].AddChild(byName["e"]))
	require.NoError(t, byName["c"].AddChild(byName["f"]))
	tr.SetRoot(byName["a"])
	return tr, byName
}

func TestPreOrder(t *testing.T) {
	t.Parallel()

	_, nodes := buildFixture(t)
	var visited []string
	PreOrder(nodes["a"], func(n *Node) { visited = append(visited, n.Name()) }, nil)
	require.Equal(t, []string{"a", "b", "d", "e", "c", "f"}, visited)
}

func TestPreOrder_Skip(t *testing.T) {
	t.Parallel()

	_, nodes := buildFixture(t)
	var visited []string
	PreOrder(nodes["a"], func(n *Node) { visited = append(visited, n.Name()) }, func(n *Node) bool {
		return n.Name() == "b"
	})
	// b itself is visited; its subtree is not descended into.
	require.Equal(t, []string{"a", "b", "c", "f"}, visited)
}

func TestPreOrder_NilRoot(t *testing.T) {
	t.Parallel()

	var root *Node
	calls := 0
	PreOrder(root, func(*Node) { calls++ }, nil)
	require.Zero(t, calls)
}

func TestPostOrder(t *testing.T) {
	t.Parallel()

	_, nodes := buildFixture(t)
	var visited []string
	PostOrder(nodes["a"], func(n *Node) { visited = append(visited, n.Name()) })
	require.Equal(t, []string{"d", "e", "b", "f", "c", "a"}, visited)
}

func TestLevelOrder(t *testing.T) {
	t.Parallel()

	_, nodes := buildFixture(t)
	var visited []string
	var depths []int
	LevelOrder(nodes["a"], func(n *Node, depth int) {
		visited = append(visited, n.Name())
		depths = append(depths, depth)
	})
	require.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, visited)
	require.Equal(t, []int{0, 1, 1, 2, 2, 2}, depths)
}

func TestWalk_SingleNode(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	only := tr.NewNode(KindLeaf, "only", &inert{})

	var pre, post, level []string
	PreOrder(only, func(n *Node) { pre = append(pre, n.Name()) }, nil)
	PostOrder(only, func(n *Node) { post = append(post, n.Name()) })
	LevelOrder(only, func(n *Node, depth int) {
		require.Zero(t, depth)
		level = append(level, n.Name())
	})
	require.Equal(t, []string{"only"}, pre)
	require.Equal(t, []string{"only"}, post)
	require.Equal(t, []string{"only"}, level)
}
