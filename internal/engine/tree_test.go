package engine

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arboric/behave/internal/blackboard"
)

func TestSortNodes_Orders(t *testing.T) {
	t.Parallel()

	tr, nodes := buildFixture(t)
	tr.SortNodes()

	// Pre-order: a b d e c f. Post-order: d e b f c a. Level-order: a b c d e f.
	wantPre := map[string]int{"a": 0, "b": 1, "d": 2, "e": 3, "c": 4, "f": 5}
	wantPost := map[string]int{"d": 0, "e": 1, "b": 2, "f": 3, "c": 4, "a": 5}
	wantLevel := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3, "e": 4, "f": 5}
	wantDepth := map[string]int{"a": 0, "b": 1, "c": 1, "d": 2, "e": 2, "f": 2}
	for name, n := range nodes {
		require.Equal(t, wantPre[name], n.PreOrder(), "pre-order of %s", name)
		require.Equal(t, wantPost[name], n.PostOrder(), "post-order of %s", name)
		require.Equal(t, wantLevel[name], n.LevelOrder(), "level-order of %s", name)
		require.Equal(t, wantDepth[name], n.Depth(), "depth of %s", name)
	}
	require.Equal(t, 3, tr.Height())

	// Registry is sorted so index equals pre-order index.
	for i := 0; i < tr.Len(); i++ {
		require.Equal(t, i, tr.NodeAt(i).PreOrder())
	}
}

func TestSortNodes_Idempotent(t *testing.T) {
	t.Parallel()

	tr, nodes := buildFixture(t)
	tr.SortNodes()
	before := make(map[string][4]int, len(nodes))
	for name, n := range nodes {
		before[name] = [4]int{n.PreOrder(), n.PostOrder(), n.LevelOrder(), n.Depth()}
	}
	tr.SortNodes()
	tr.SortNodes()
	for name, n := range nodes {
		require.Equal(t, before[name], [4]int{n.PreOrder(), n.PostOrder(), n.LevelOrder(), n.Depth()}, "orders of %s changed", name)
	}
}

func TestSortNodes_DanglingNodesLast(t *testing.T) {
	t.Parallel()

	tr, _ := buildFixture(t)
	dangling := tr.NewNode(KindLeaf, "orphan", &inert{})
	tr.SortNodes()

	require.Equal(t, InvalidOrder, dangling.PreOrder())
	require.Equal(t, InvalidOrder, dangling.PostOrder())
	require.Equal(t, InvalidOrder, dangling.LevelOrder())
	require.Equal(t, InvalidOrder, dangling.Depth())

	// The orphan sorts after every connected node.
	require.Equal(t, 7, tr.Len())
	require.Same(t, dangling, tr.NodeAt(6))
	for i := 0; i < 6; i++ {
		require.Equal(t, i, tr.NodeAt(i).PreOrder())
	}
}

func TestSubtreeContainment(t *testing.T) {
	t.Parallel()

	tr, nodes := buildFixture(t)
	tr.SortNodes()

	require.True(t, IsUnderSubtree(nodes["a"], nodes["d"]))
	require.True(t, IsUnderSubtree(nodes["b"], nodes["e"]))
	require.False(t, IsUnderSubtree(nodes["b"], nodes["f"]))
	require.False(t, IsUnderSubtree(nodes["c"], nodes["d"]))
	// Strict containment: a node does not contain itself.
	require.False(t, IsUnderSubtree(nodes["b"], nodes["b"]))
	// Children never contain their ancestors.
	require.False(t, IsUnderSubtree(nodes["d"], nodes["b"]))
	// The nil subroot acts as an artificial top containing everything.
	require.True(t, IsUnderSubtree(nil, nodes["a"]))
	require.False(t, IsUnderSubtree(nodes["a"], nil))
}

func TestAddChild_Validation(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	other := New(nil)

	comp := tr.NewNode(KindComposite, "comp", &inert{})
	dec := tr.NewNode(KindDecorator, "dec", &inert{})
	leaf := tr.NewNode(KindLeaf, "leaf", &inert{})
	a := tr.NewNode(KindLeaf, "a", &inert{})
	b := tr.NewNode(KindLeaf, "b", &inert{})
	foreign := other.NewNode(KindLeaf, "foreign", &inert{})

	require.ErrorIs(t, comp.AddChild(nil), ErrNilNode)
	require.ErrorIs(t, comp.AddChild(foreign), ErrWrongTree)

	require.NoError(t, comp.AddChild(a))
	require.ErrorIs(t, dec.AddChild(a), ErrHasParent)

	require.NoError(t, dec.AddChild(b))
	require.ErrorIs(t, dec.AddChild(leaf), ErrChildLimit)
	require.ErrorIs(t, leaf.AddChild(comp), ErrChildLimit)
}

func TestSetRoot_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	tr.SetLogger(slog.Default())
	other := New(nil)

	parent := tr.NewNode(KindComposite, "parent", &inert{})
	child := tr.NewNode(KindLeaf, "child", &inert{})
	require.NoError(t, parent.AddChild(child))
	foreign := other.NewNode(KindLeaf, "foreign", &inert{})

	// Each rejected assignment leaves the root untouched.
	tr.SetRoot(nil)
	require.Nil(t, tr.Root())
	tr.SetRoot(child)
	require.Nil(t, tr.Root())
	tr.SetRoot(foreign)
	require.Nil(t, tr.Root())

	tr.SetRoot(parent)
	require.Same(t, parent, tr.Root())
}

func TestStart_NilRoot(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	require.ErrorIs(t, tr.Start(), ErrNilRoot)
	require.False(t, tr.IsRunning())

	// Update on an uninitialized tree is a no-op.
	tr.Update()
	require.Equal(t, StatusInvalid, tr.LastStatus())
}

func TestNodesOfKind(t *testing.T) {
	t.Parallel()

	tr, nodes := buildFixture(t)
	tr.SortNodes()

	leaves := tr.NodesOfKind(KindLeaf)
	require.Len(t, leaves, 3)
	// Pre-order: d, e, f.
	require.Same(t, nodes["d"], leaves[0])
	require.Same(t, nodes["e"], leaves[1])
	require.Same(t, nodes["f"], leaves[2])
	require.Empty(t, tr.NodesOfKind(KindParallel))
}

func TestTreeIdentity(t *testing.T) {
	t.Parallel()

	a := New(blackboard.New())
	b := New(blackboard.New())
	require.NotEmpty(t, a.ID())
	require.NotEqual(t, a.ID(), b.ID())
}

func TestClearStructure(t *testing.T) {
	t.Parallel()

	tr, nodes := buildFixture(t)
	require.NoError(t, tr.Start())
	require.True(t, tr.IsRunning())

	tr.ClearStructure()
	require.Nil(t, tr.Root())
	require.Zero(t, tr.Len())
	require.False(t, tr.IsRunning())
	require.Nil(t, nodes["a"].Cursor())
	require.Equal(t, InvalidOrder, nodes["b"].PreOrder())
	require.Nil(t, nodes["b"].Parent())
}

// completionRecorder tracks lifecycle hook invocations for order assertions.
type completionRecorder struct {
	Base
	log  *[]string
	name string
}

func (r *completionRecorder) OnStart()     { *r.log = append(*r.log, "start:"+r.name) }
func (r *completionRecorder) OnEnter()     { *r.log = append(*r.log, "enter:"+r.name) }
func (r *completionRecorder) OnExit()      { *r.log = append(*r.log, "exit:"+r.name) }
func (r *completionRecorder) OnInterrupt() { *r.log = append(*r.log, "interrupt:"+r.name) }
func (r *completionRecorder) Clone() Behavior {
	return &completionRecorder{log: r.log, name: r.name}
}

func TestStart_RunsStartupHooksInRegistryOrder(t *testing.T) {
	t.Parallel()

	var log []string
	tr := New(nil)
	root := tr.NewNode(KindDecorator, "root", &completionRecorder{log: &log, name: "root"})
	leaf := tr.NewNode(KindLeaf, "leaf", &completionRecorder{log: &log, name: "leaf"})
	require.NoError(t, root.AddChild(leaf))
	tr.SetRoot(root)

	require.NoError(t, tr.Start())
	// Startup in registry order, then the root enters.
	require.Equal(t, []string{"start:root", "start:leaf", "enter:root"}, log)
}
