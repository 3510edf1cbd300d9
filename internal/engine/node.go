package engine

import (
	"errors"
	"fmt"
)

// InvalidOrder is the sentinel for order indices that have not been computed,
// or that belong to nodes unreachable from the root.
const InvalidOrder = -1

// Sentinel errors for structural configuration mistakes. These are
// configuration errors in the sense of the error taxonomy: the operation is
// rejected and the tree is left unchanged.
var (
	ErrNilNode      = errors.New("engine: node is nil")
	ErrNilRoot      = errors.New("engine: tree has no root")
	ErrHasParent    = errors.New("engine: node already has a parent")
	ErrWrongTree    = errors.New("engine: node belongs to a different tree")
	ErrChildLimit   = errors.New("engine: node kind cannot accept more children")
	ErrNotStarted   = errors.New("engine: tree has not been started")
	ErrAlreadyBound = errors.New("engine: behavior is already bound to a node")
)

// Behavior is the contract between the engine and concrete node
// implementations. Implementations embed Base to pick up no-op defaults and
// override the hooks they need.
//
// Lifecycle: OnStart fires once per node when the tree starts, in registry
// order. OnEnter fires when a cursor begins traversing the node, OnTick on
// every cursor step while the node is current, and exactly one of OnExit
// (normal completion) or OnInterrupt (forced unwind) when the node leaves
// the active path. OnCopy fires on the copy after cloning, once parent and
// child links are re-established.
type Behavior interface {
	// Bind attaches the behavior to its node. Called once during node
	// construction and again on clones.
	Bind(*Node)
	// Node returns the bound node, or nil before Bind.
	Node() *Node
	// OnStart runs once when the owning tree starts.
	OnStart()
	// OnEnter runs when a cursor pushes the node onto its active path.
	OnEnter()
	// OnTick evaluates the node and returns its status for this step.
	OnTick() Status
	// OnChildComplete notifies a parent that a directly-owned child
	// resolved with the given status. Only called when parent and child
	// share a cursor; parallel children report through their sub-cursor's
	// last status instead.
	OnChildComplete(child *Node, status Status)
	// OnExit runs when the node resolves and is popped from the active path.
	OnExit()
	// OnInterrupt runs when the node is unwound by an interrupt without
	// resolving. Implementations release any held resources here.
	OnInterrupt()
	// OnCopy runs on a cloned behavior after the clone's structure is
	// linked, for behaviors that cache derived state.
	OnCopy()
	// CanTickOnTree reports whether OnTreeTick should run every tree tick.
	// Sampled once per preprocess.
	CanTickOnTree() bool
	// OnTreeTick runs every tree tick for tick-eligible nodes, before
	// observers and before the main cursor advances.
	OnTreeTick()
	// Clone returns an independent copy of the behavior with runtime state
	// reset. Configuration (policies, predicates, scripts) is preserved.
	Clone() Behavior
}

// Observer is implemented by behaviors whose abort condition must be polled
// every tick, independent of normal traversal. Observe returns true when the
// condition fires this tick; the tree then aborts via the node's cursor.
type Observer interface {
	Observe() bool
}

// Base provides no-op defaults for Behavior. Concrete behaviors embed it and
// override the hooks they care about. Clone is intentionally absent: each
// behavior must implement its own copy to preserve its concrete type.
type Base struct {
	node *Node
}

// Bind implements Behavior.
func (b *Base) Bind(n *Node) { b.node = n }

// Node implements Behavior.
func (b *Base) Node() *Node { return b.node }

// OnStart implements Behavior.
func (b *Base) OnStart() {}

// OnEnter implements Behavior.
func (b *Base) OnEnter() {}

// OnTick implements Behavior.
func (b *Base) OnTick() Status { return StatusSuccess }

// OnChildComplete implements Behavior.
func (b *Base) OnChildComplete(*Node, Status) {}

// OnExit implements Behavior.
func (b *Base) OnExit() {}

// OnInterrupt implements Behavior.
func (b *Base) OnInterrupt() {}

// OnCopy implements Behavior.
func (b *Base) OnCopy() {}

// CanTickOnTree implements Behavior.
func (b *Base) CanTickOnTree() bool { return false }

// OnTreeTick implements Behavior.
func (b *Base) OnTreeTick() {}

// Node is the structural unit of a tree: parent and child links, order
// indices, the owning cursor, and the last evaluation result. Nodes are
// owned exclusively by one tree and addressed by pre-order index once orders
// are computed.
type Node struct {
	tree     *Tree
	parent   *Node
	children []*Node
	behavior Behavior
	kind     Kind
	name     string

	preOrder   int
	postOrder  int
	levelOrder int
	depth      int

	cursor     *Cursor
	subCursors []*Cursor // KindParallel only: one per child
	result     Status
}

// Tree returns the owning tree.
func (n *Node) Tree() *Tree { return n.tree }

// Parent returns the parent node, or nil for the root and dangling nodes.
func (n *Node) Parent() *Node { return n.parent }

// Kind returns the node's structural kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the display name assigned at construction.
func (n *Node) Name() string { return n.name }

// Behavior returns the bound behavior.
func (n *Node) Behavior() Behavior { return n.behavior }

// Result returns the status from the node's most recent resolution.
// StatusRunning while the node is on an active path; StatusInvalid before
// first evaluation or after an interrupt.
func (n *Node) Result() Status { return n.result }

// Cursor returns the execution cursor that owns this node, or nil before
// preprocessing.
func (n *Node) Cursor() *Cursor { return n.cursor }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child. Panics on out-of-range access, which is a
// programmer error.
func (n *Node) Child(i int) *Node { return n.children[i] }

// PreOrder returns the pre-order index, or InvalidOrder before computation.
func (n *Node) PreOrder() int { return n.preOrder }

// PostOrder returns the post-order index, or InvalidOrder before computation.
func (n *Node) PostOrder() int { return n.postOrder }

// LevelOrder returns the level-order (breadth-first) visitation index, or
// InvalidOrder before computation.
func (n *Node) LevelOrder() int { return n.levelOrder }

// Depth returns the node's depth below the root (root is 0), or InvalidOrder
// before computation.
func (n *Node) Depth() int { return n.depth }

// AddChild appends child to n. The child must belong to the same tree, must
// not already have a parent, and n's kind must accept another child.
// Structural mutation invalidates previously computed orders until the next
// preprocess or SortNodes.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if child.tree != n.tree {
		return ErrWrongTree
	}
	if child.parent != nil {
		return ErrHasParent
	}
	if max := n.kind.maxChildren(); max >= 0 && len(n.children) >= max {
		return fmt.Errorf("%w: %s node %q has %d children", ErrChildLimit, n.kind, n.name, len(n.children))
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// SubCursor returns the dedicated cursor for the i-th child of a parallel
// node. Only valid after preprocessing; nil for non-parallel nodes.
func (n *Node) SubCursor(i int) *Cursor {
	if n.kind != KindParallel || i < 0 || i >= len(n.subCursors) {
		return nil
	}
	return n.subCursors[i]
}

// syncSubCursors recreates the per-child cursor set so that it matches the
// current child count, each cursor covering exactly the pre-order range of
// one child's subtree. Requires computed orders.
func (n *Node) syncSubCursors() {
	if n.kind != KindParallel {
		return
	}
	n.subCursors = make([]*Cursor, len(n.children))
	for i, child := range n.children {
		size := 0
		PreOrder(child, func(*Node) { size++ }, nil)
		n.subCursors[i] = newCursor(n.tree, child.preOrder, child.preOrder+size)
	}
}

// subtreeContains reports whether b lies strictly inside the subtree rooted
// at a, using the pre/post order interval test. A nil a is treated as the
// artificial top that contains every node.
func subtreeContains(a, b *Node) bool {
	if b == nil {
		return false
	}
	if a == nil {
		return true
	}
	return a.postOrder > b.postOrder && a.preOrder < b.preOrder
}

// IsUnderSubtree reports whether b is a strict descendant of the subtree
// rooted at a. A nil a contains everything.
func IsUnderSubtree(a, b *Node) bool { return subtreeContains(a, b) }

// detach clears all structural links on n. Used by ClearStructure.
func (n *Node) detach() {
	n.parent = nil
	n.children = nil
	n.cursor = nil
	n.subCursors = nil
	n.preOrder = InvalidOrder
	n.postOrder = InvalidOrder
	n.levelOrder = InvalidOrder
	n.depth = InvalidOrder
	n.result = StatusInvalid
}
