package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arboric/behave/internal/blackboard"
)

// copyAware records whether the post-copy hook ran.
type copyAware struct {
	Base
	copied bool
}

func (c *copyAware) OnCopy()         { c.copied = true }
func (c *copyAware) Clone() Behavior { return &copyAware{} }

func TestClone_PreservesStructure(t *testing.T) {
	t.Parallel()

	template, _ := buildFixture(t)
	clone := Clone(template)

	require.NotEqual(t, template.ID(), clone.ID())
	require.Equal(t, 6, clone.Len())
	require.Equal(t, template.Height(), clone.Height())
	require.NotNil(t, clone.Root())
	require.NotSame(t, template.Root(), clone.Root())

	// Pre-order index is the cross-tree correspondence key.
	for i := 0; i < clone.Len(); i++ {
		orig, copied := template.NodeAt(i), clone.NodeAt(i)
		require.NotSame(t, orig, copied)
		require.Equal(t, orig.Name(), copied.Name())
		require.Equal(t, orig.Kind(), copied.Kind())
		require.Equal(t, orig.PreOrder(), copied.PreOrder())
		require.Equal(t, orig.PostOrder(), copied.PostOrder())
		require.Equal(t, orig.LevelOrder(), copied.LevelOrder())
		require.Equal(t, orig.Depth(), copied.Depth())
		require.Equal(t, orig.ChildCount(), copied.ChildCount())
		require.NotSame(t, orig.Behavior(), copied.Behavior())
		require.Same(t, copied, copied.Behavior().Node())
		if orig.Parent() != nil {
			require.Equal(t, orig.Parent().PreOrder(), copied.Parent().PreOrder())
		} else {
			require.Nil(t, copied.Parent())
		}
	}

	// Parent/child links point inside the clone, never back at the template.
	require.Same(t, clone.NodeAt(0), clone.NodeAt(1).Parent())
	require.Same(t, clone.NodeAt(1), clone.NodeAt(0).Child(0))
}

func TestClone_ExcludesDanglingNodes(t *testing.T) {
	t.Parallel()

	template, _ := buildFixture(t)
	template.NewNode(KindLeaf, "orphan", &inert{})
	clone := Clone(template)

	require.Equal(t, 7, template.Len())
	require.Equal(t, 6, clone.Len())
	for i := 0; i < clone.Len(); i++ {
		require.NotEqual(t, "orphan", clone.NodeAt(i).Name())
	}
}

func TestClone_IndependentBlackboard(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	bb.Set("shared", 1)
	template := New(bb)
	root := template.NewNode(KindLeaf, "root", &inert{})
	template.SetRoot(root)

	clone := Clone(template)
	require.NotNil(t, clone.Blackboard())
	require.NotSame(t, template.Blackboard(), clone.Blackboard())
	require.Equal(t, 1, clone.Blackboard().Get("shared"))

	clone.Blackboard().Set("shared", 2)
	require.Equal(t, 1, template.Blackboard().Get("shared"))
}

func TestClone_RunsCopyHooks(t *testing.T) {
	t.Parallel()

	template := New(nil)
	root := template.NewNode(KindLeaf, "root", &copyAware{})
	template.SetRoot(root)

	clone := Clone(template)
	require.False(t, root.Behavior().(*copyAware).copied)
	require.True(t, clone.Root().Behavior().(*copyAware).copied)
}

func TestClone_RuntimeStateNotInherited(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	held := tr.NewNode(KindLeaf, "held", &funcBehavior{fn: func() Status { return StatusRunning }})
	require.NoError(t, root.AddChild(held))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())
	tr.Update()
	require.True(t, tr.IsRunning())

	clone := Clone(tr)
	require.False(t, clone.IsRunning())
	require.Equal(t, StatusInvalid, clone.Root().Result())

	// The clone starts and runs on its own.
	require.NoError(t, clone.Start())
	require.True(t, clone.IsRunning())
	clone.Update()
	require.True(t, clone.IsRunning())
	require.Equal(t, StatusRunning, clone.NodeAt(1).Result())
}
