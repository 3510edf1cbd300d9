package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// seqBehavior is a minimal in-order composite used to exercise cursor
// mechanics without depending on the full built-in node set.
type seqBehavior struct {
	Base
	next    int
	verdict Status
}

func (s *seqBehavior) OnEnter() {
	s.next = 0
	s.verdict = StatusInvalid
	n := s.Node()
	if n.ChildCount() == 0 {
		s.verdict = StatusSuccess
		return
	}
	s.next = 1
	child := n.Child(0)
	child.Cursor().Traverse(child)
}

func (s *seqBehavior) OnChildComplete(_ *Node, status Status) {
	if status == StatusFailure {
		s.verdict = StatusFailure
		return
	}
	n := s.Node()
	if s.next < n.ChildCount() {
		child := n.Child(s.next)
		s.next++
		child.Cursor().Traverse(child)
		return
	}
	s.verdict = StatusSuccess
}

func (s *seqBehavior) OnTick() Status {
	if s.verdict == StatusInvalid {
		return StatusRunning
	}
	return s.verdict
}

func (s *seqBehavior) OnInterrupt() {
	s.next = 0
	s.verdict = StatusInvalid
}

func (s *seqBehavior) Clone() Behavior { return &seqBehavior{} }

// funcBehavior evaluates fn on every tick.
type funcBehavior struct {
	Base
	fn func() Status
}

func (f *funcBehavior) OnTick() Status  { return f.fn() }
func (f *funcBehavior) Clone() Behavior { return &funcBehavior{fn: f.fn} }

func statusLeaf(tr *Tree, name string, status Status) *Node {
	return tr.NewNode(KindLeaf, name, &funcBehavior{fn: func() Status { return status }})
}

func TestCursor_SequenceResolution(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	a := statusLeaf(tr, "a", StatusSuccess)
	b := statusLeaf(tr, "b", StatusSuccess)
	require.NoError(t, root.AddChild(a))
	require.NoError(t, root.AddChild(b))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())

	cur := tr.MainCursor()
	require.Equal(t, CursorRunning, cur.State())
	require.Equal(t, 0, cur.First())
	require.Equal(t, 3, cur.Last())
	// Traverse entered the root, which routed straight into child a.
	require.Same(t, a, cur.CurrentNode())
	require.Equal(t, StatusRunning, root.Result())

	// One child resolves per update, then the root delivers its verdict.
	tr.Update()
	require.Same(t, b, cur.CurrentNode())
	require.Equal(t, StatusSuccess, a.Result())

	tr.Update()
	require.Same(t, root, cur.CurrentNode())

	tr.Update()
	require.False(t, tr.IsRunning())
	require.Equal(t, CursorHalted, cur.State())
	require.Equal(t, StatusSuccess, tr.LastStatus())
	require.Equal(t, StatusSuccess, root.Result())
}

func TestCursor_FailureShortCircuits(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	a := statusLeaf(tr, "a", StatusFailure)
	b := statusLeaf(tr, "b", StatusSuccess)
	require.NoError(t, root.AddChild(a))
	require.NoError(t, root.AddChild(b))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())

	tr.Update() // a fails; the composite records the verdict
	tr.Update() // root delivers failure
	require.False(t, tr.IsRunning())
	require.Equal(t, StatusFailure, tr.LastStatus())
	// b was never entered.
	require.Equal(t, StatusInvalid, b.Result())
}

func TestCursor_RunningLeafHoldsPosition(t *testing.T) {
	t.Parallel()

	ticks := 0
	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	leaf := tr.NewNode(KindLeaf, "leaf", &funcBehavior{fn: func() Status {
		ticks++
		if ticks < 3 {
			return StatusRunning
		}
		return StatusSuccess
	}})
	require.NoError(t, root.AddChild(leaf))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())

	cur := tr.MainCursor()
	tr.Update()
	require.Same(t, leaf, cur.CurrentNode())
	require.Equal(t, StatusRunning, leaf.Result())
	tr.Update()
	require.Same(t, leaf, cur.CurrentNode())
	tr.Update()
	require.Same(t, root, cur.CurrentNode())
	require.Equal(t, 3, ticks)
}

func TestCursor_TraverseRefusesOutOfRange(t *testing.T) {
	t.Parallel()

	tr, nodes := buildFixture(t)
	tr.SortNodes()
	// A cursor owning only b's subtree (pre-order [1,4)) refuses everything
	// else.
	cur := newCursor(tr, 1, 4)
	cur.Traverse(nodes["a"])
	require.Equal(t, CursorIdle, cur.State())
	cur.Traverse(nodes["f"])
	require.Equal(t, CursorIdle, cur.State())
	cur.Traverse(nodes["b"])
	require.Equal(t, CursorRunning, cur.State())
	require.Same(t, nodes["b"], cur.CurrentNode())
}

func TestCursor_UpdateWhenNotRunning(t *testing.T) {
	t.Parallel()

	tr, _ := buildFixture(t)
	tr.SortNodes()
	cur := newCursor(tr, 0, 6)
	cur.Update() // idle: no-op, must not panic
	require.Equal(t, CursorIdle, cur.State())
	require.Equal(t, InvalidOrder, cur.CurrentIndex())
	require.Nil(t, cur.CurrentNode())
}

func TestStepBackInterrupt_Full(t *testing.T) {
	t.Parallel()

	var log []string
	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	held := tr.NewNode(KindLeaf, "held", &funcBehavior{fn: func() Status { return StatusRunning }})
	require.NoError(t, root.AddChild(held))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())
	tr.Update()

	// Swap in recorders after entry so only the unwind is captured.
	heldRec := &completionRecorder{log: &log, name: "held"}
	rootRec := &completionRecorder{log: &log, name: "root"}
	held.behavior = heldRec
	root.behavior = rootRec

	cur := tr.MainCursor()
	cur.StepBackInterrupt(root, true)
	require.Equal(t, CursorHalted, cur.State())
	// Unwind is innermost-first, with every node notified.
	require.Equal(t, []string{"interrupt:held", "interrupt:root"}, log)
	require.Equal(t, StatusInvalid, held.Result())
	require.Equal(t, StatusInvalid, root.Result())
}

func TestStepBackInterrupt_RestartsSubroot(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	held := tr.NewNode(KindLeaf, "held", &funcBehavior{fn: func() Status { return StatusRunning }})
	require.NoError(t, root.AddChild(held))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())
	tr.Update()
	require.Same(t, held, tr.MainCursor().CurrentNode())

	// Rewind to the root without a full interrupt: the subtree restarts,
	// which routes back into the held leaf.
	tr.MainCursor().StepBackInterrupt(root, false)
	require.True(t, tr.IsRunning())
	require.Same(t, held, tr.MainCursor().CurrentNode())
	require.Equal(t, StatusRunning, root.Result())
}

func TestStepBackInterrupt_NilSubrootUnwindsEverything(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	held := tr.NewNode(KindLeaf, "held", &funcBehavior{fn: func() Status { return StatusRunning }})
	require.NoError(t, root.AddChild(held))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())
	tr.Update()

	tr.MainCursor().StepBackInterrupt(nil, false)
	require.Equal(t, CursorHalted, tr.MainCursor().State())
	require.False(t, tr.IsRunning())
}

func TestTreeInterrupt_Full(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	root := tr.NewNode(KindComposite, "root", &seqBehavior{})
	held := tr.NewNode(KindLeaf, "held", &funcBehavior{fn: func() Status { return StatusRunning }})
	require.NoError(t, root.AddChild(held))
	tr.SetRoot(root)
	require.NoError(t, tr.Start())
	tr.Update()

	// A nil subroot interrupts from the root.
	tr.Interrupt(nil, true)
	require.False(t, tr.IsRunning())
	require.Equal(t, StatusInvalid, root.Result())
	require.Equal(t, StatusInvalid, held.Result())
}
