package engine

// CursorState describes a cursor's position in its lifecycle.
type CursorState uint8

const (
	// CursorIdle means the cursor has not begun traversal.
	CursorIdle CursorState = iota
	// CursorRunning means the cursor has an active path and will advance on
	// Update.
	CursorRunning
	// CursorHalted means the cursor's traversal finished (or was fully
	// interrupted); the outcome is recorded in LastStatus.
	CursorHalted
)

func (s CursorState) String() string {
	switch s {
	case CursorIdle:
		return "idle"
	case CursorRunning:
		return "running"
	case CursorHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Cursor is one logical thread of control advancing through a contiguous
// pre-order range of nodes. The tree's main cursor covers the whole tree
// minus parallel sub-ranges; every parallel child gets a dedicated cursor
// over exactly its subtree's range.
//
// The active path is a stack of pre-order indices: the bottom entry is the
// shallowest entered node, the top is the node currently being evaluated.
// A cursor never evaluates a node whose pre-order index falls outside
// [first, last); Traverse silently refuses such nodes. That guarantee is
// what lets the main cursor and parallel sub-cursors run without touching
// each other's state.
type Cursor struct {
	tree  *Tree
	first int // inclusive pre-order bound
	last  int // exclusive pre-order bound

	stack      []int
	state      CursorState
	lastStatus Status
}

func newCursor(t *Tree, first, last int) *Cursor {
	return &Cursor{tree: t, first: first, last: last}
}

// First returns the inclusive lower pre-order bound of the owned range.
func (c *Cursor) First() int { return c.first }

// Last returns the exclusive upper pre-order bound of the owned range.
func (c *Cursor) Last() int { return c.last }

// State returns the cursor's lifecycle state.
func (c *Cursor) State() CursorState { return c.state }

// Running reports whether the cursor has an active path.
func (c *Cursor) Running() bool { return c.state == CursorRunning }

// LastStatus returns the status recorded when the most recent node resolved.
func (c *Cursor) LastStatus() Status { return c.lastStatus }

// CurrentIndex returns the pre-order index of the node currently being
// evaluated, or InvalidOrder if the cursor is not running.
func (c *Cursor) CurrentIndex() int {
	if len(c.stack) == 0 {
		return InvalidOrder
	}
	return c.stack[len(c.stack)-1]
}

// CurrentNode returns the node currently being evaluated, or nil.
func (c *Cursor) CurrentNode() *Node {
	idx := c.CurrentIndex()
	if idx == InvalidOrder {
		return nil
	}
	return c.tree.NodeAt(idx)
}

// Traverse begins execution at n: the node is pushed onto the active path
// and entered. Nodes outside the cursor's owned range are refused, which is
// what stops re-entry of halted parallel children and keeps cursors inside
// their ranges.
func (c *Cursor) Traverse(n *Node) {
	if n == nil || n.preOrder < c.first || n.preOrder >= c.last {
		return
	}
	c.stack = append(c.stack, n.preOrder)
	c.state = CursorRunning
	n.result = StatusRunning
	n.behavior.OnEnter()
}

// Update advances exactly one step: the current node is evaluated once. A
// StatusRunning result leaves the cursor paused at that node until the next
// Update. Any other result resolves the node: it is popped and exited, its
// status recorded, and, when parent and child share this cursor, the
// parent is notified so it can route control to the next sibling. When the
// path empties the cursor halts.
func (c *Cursor) Update() {
	if c.state != CursorRunning {
		return
	}
	n := c.tree.NodeAt(c.stack[len(c.stack)-1])
	status := n.behavior.OnTick()
	n.result = status
	if status == StatusRunning {
		return
	}
	c.lastStatus = status
	c.stack = c.stack[:len(c.stack)-1]
	n.behavior.OnExit()
	if len(c.stack) == 0 {
		c.state = CursorHalted
	}
	if p := n.parent; p != nil && p.cursor == c {
		p.behavior.OnChildComplete(n, status)
	}
}

// StepBackInterrupt forcibly rewinds the active path to subroot. Every node
// unwound on the way is notified via OnInterrupt so it can release
// resources, and its result is reset to StatusInvalid. With fullInterrupt
// the cursor then unwinds completely and halts; otherwise subroot is
// re-entered as if freshly traversed, which is the restart-on-abort path.
//
// A nil subroot, or one unrelated to the active path, unwinds everything.
func (c *Cursor) StepBackInterrupt(subroot *Node, fullInterrupt bool) {
	if c.state != CursorRunning {
		return
	}
	for len(c.stack) > 0 {
		top := c.tree.NodeAt(c.stack[len(c.stack)-1])
		if subroot != nil && (top == subroot || subtreeContains(top, subroot)) {
			break
		}
		c.popInterrupt(top)
	}
	if fullInterrupt || subroot == nil {
		for len(c.stack) > 0 {
			c.popInterrupt(c.tree.NodeAt(c.stack[len(c.stack)-1]))
		}
		c.state = CursorHalted
		return
	}
	if len(c.stack) > 0 {
		if top := c.tree.NodeAt(c.stack[len(c.stack)-1]); top == subroot {
			c.popInterrupt(top)
		}
	}
	if len(c.stack) == 0 {
		c.state = CursorHalted
	}
	c.Traverse(subroot)
}

// OnAbort is the entry point invoked when an observer's condition fires. An
// abort always restarts the conditional's own subtree, so the target of the
// rewind is the conditional node itself.
func (c *Cursor) OnAbort(conditional *Node) {
	c.StepBackInterrupt(conditional, false)
}

func (c *Cursor) popInterrupt(n *Node) {
	c.stack = c.stack[:len(c.stack)-1]
	n.result = StatusInvalid
	n.behavior.OnInterrupt()
}
