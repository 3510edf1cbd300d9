package engine

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/arboric/behave/internal/blackboard"
)

// Tree owns the root, the flat node registry, the per-instance blackboard,
// and the preprocessing pipeline that computes orders, builds cursors, and
// caches observers and tick-eligible nodes. It drives the per-frame update.
//
// The registry, order indices, and cursor assignments are mutated only
// during preprocessing, never during a tick. All methods assume the
// single-threaded cooperative model: one host loop calling Update.
type Tree struct {
	id         string
	root       *Node
	registry   []*Node
	blackboard *blackboard.Blackboard
	logger     *slog.Logger

	main      *Cursor
	parallels []*Node
	observers []observerEntry
	tickers   []Behavior

	connected   int // nodes reachable from root after the last sort
	height      int
	initialized bool
}

type observerEntry struct {
	node     *Node
	observer Observer
}

// New creates an empty tree with a fresh identity. A nil blackboard is
// allowed; behaviors that need one should be given it explicitly.
func New(bb *blackboard.Blackboard) *Tree {
	return &Tree{
		id:         uuid.NewString(),
		blackboard: bb,
		logger:     slog.Default(),
	}
}

// SetLogger replaces the logger used for configuration-error reporting.
func (t *Tree) SetLogger(l *slog.Logger) {
	if l != nil {
		t.logger = l
	}
}

// ID returns the tree instance identity. Clones get fresh IDs.
func (t *Tree) ID() string { return t.id }

// Blackboard returns the per-instance blackboard, which may be nil.
func (t *Tree) Blackboard() *blackboard.Blackboard { return t.blackboard }

// Root returns the root node, or nil.
func (t *Tree) Root() *Node { return t.root }

// Height returns the tree height (number of breadth tiers) computed by the
// last preprocess.
func (t *Tree) Height() int { return t.height }

// Len returns the total number of registered nodes, dangling included.
func (t *Tree) Len() int { return len(t.registry) }

// NewNode creates a node owned by this tree and binds the behavior to it.
// The node joins the registry immediately; order indices stay at
// InvalidOrder until the next preprocess or SortNodes.
func (t *Tree) NewNode(kind Kind, name string, b Behavior) *Node {
	n := &Node{
		tree:       t,
		kind:       kind,
		name:       name,
		behavior:   b,
		preOrder:   InvalidOrder,
		postOrder:  InvalidOrder,
		levelOrder: InvalidOrder,
		depth:      InvalidOrder,
	}
	b.Bind(n)
	t.registry = append(t.registry, n)
	return n
}

// SetRoot assigns the tree's root. A nil node or a node that already has a
// parent is a configuration error: it is logged and the tree is left
// unchanged.
func (t *Tree) SetRoot(n *Node) {
	if n == nil {
		t.logger.Warn("behave: refusing nil root")
		return
	}
	if n.parent != nil {
		t.logger.Warn("behave: refusing root that has a parent", "node", n.name)
		return
	}
	if n.tree != t {
		t.logger.Warn("behave: refusing root owned by a different tree", "node", n.name)
		return
	}
	t.root = n
}

// NodeAt returns the node at the given pre-order index. Looking up an index
// before orders are computed, or out of range, is a programmer error and
// fails loudly via the slice bounds check.
func (t *Tree) NodeAt(preOrderIndex int) *Node { return t.registry[preOrderIndex] }

// NodesOfKind returns connected nodes of the given kind in pre-order.
func (t *Tree) NodesOfKind(k Kind) []*Node {
	var out []*Node
	for _, n := range t.registry[:t.connected] {
		if n.kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Start preprocesses the tree, runs every node's startup hook in registry
// order, and begins the main cursor at the root. A nil root is a
// configuration error: logged, and the tree stays uninitialized.
func (t *Tree) Start() error {
	if t.root == nil {
		t.logger.Warn("behave: start rejected, tree has no root")
		return ErrNilRoot
	}
	t.preprocess()
	for _, n := range t.registry {
		n.behavior.OnStart()
	}
	t.main.Traverse(t.root)
	t.initialized = true
	return nil
}

// Update advances the tree by one tick: tick-eligible node hooks run first,
// then observers are evaluated (possibly interrupting and redirecting
// cursors), then the main cursor advances one step. It is a no-op unless
// the tree is initialized and the main cursor is running.
func (t *Tree) Update() {
	if !t.initialized || !t.main.Running() {
		return
	}
	for _, b := range t.tickers {
		b.OnTreeTick()
	}
	t.tickObservers()
	t.main.Update()
}

// IsRunning reports whether the tree has started and not yet resolved.
func (t *Tree) IsRunning() bool {
	return t.initialized && t.main != nil && t.main.Running()
}

// LastStatus returns the last status recorded by the main cursor; once the
// tree resolves this is the overall result.
func (t *Tree) LastStatus() Status {
	if t.main == nil {
		return StatusInvalid
	}
	return t.main.LastStatus()
}

// MainCursor returns the tree's main cursor, or nil before Start.
func (t *Tree) MainCursor() *Cursor { return t.main }

// tickObservers polls every cached observer in pre-order registration
// order. An observer fires only while its owning cursor is running: an
// abort interrupts execution immediately, so a lower-priority observer
// whose subtree was just torn down finds its cursor no longer running and
// is skipped. Ties therefore resolve to the lowest pre-order index.
func (t *Tree) tickObservers() {
	for _, e := range t.observers {
		cur := e.node.cursor
		if cur == nil || !cur.Running() {
			continue
		}
		if e.observer.Observe() {
			cur.OnAbort(e.node)
		}
	}
}

// Interrupt rewinds execution inside subroot's subtree. The subroot's own
// cursor steps back first; then every parallel node contained in the
// subtree has its running per-child cursors unwound from their range's
// parent boundary, so nested concurrent cursors are torn down consistently
// with the outer interrupt. A nil subroot interrupts from the root.
func (t *Tree) Interrupt(subroot *Node, fullInterrupt bool) {
	if subroot == nil {
		subroot = t.root
	}
	if subroot == nil {
		return
	}
	if cur := subroot.cursor; cur != nil {
		cur.StepBackInterrupt(subroot, fullInterrupt)
	}
	for _, p := range t.parallels {
		if p != subroot && !subtreeContains(subroot, p) {
			continue
		}
		for _, sub := range p.subCursors {
			if !sub.Running() {
				continue
			}
			boundary := t.NodeAt(sub.first).parent
			sub.StepBackInterrupt(boundary, fullInterrupt)
		}
	}
}

// SortNodes recomputes all order indices and stable-sorts the registry so
// that array index equals pre-order index, with dangling nodes pushed to
// the end.
func (t *Tree) SortNodes() {
	t.computeOrders()
	sort.SliceStable(t.registry, func(i, j int) bool {
		a, b := t.registry[i].preOrder, t.registry[j].preOrder
		if a == InvalidOrder {
			return false
		}
		if b == InvalidOrder {
			return true
		}
		return a < b
	})
	t.connected = 0
	for _, n := range t.registry {
		if n.preOrder != InvalidOrder {
			t.connected++
		}
	}
}

// ClearStructure detaches every node and clears the registry, root, cursors,
// and caches. The tree must be started again before use.
func (t *Tree) ClearStructure() {
	for _, n := range t.registry {
		n.detach()
	}
	t.registry = nil
	t.root = nil
	t.main = nil
	t.parallels = nil
	t.observers = nil
	t.tickers = nil
	t.connected = 0
	t.height = 0
	t.initialized = false
}

// preprocess runs the full pipeline: order computation and registry sort,
// main cursor construction, cache rebuilds, and cursor assignment. Caches
// are rebuilt wholesale rather than patched; preprocessing is the only
// place structural metadata changes.
func (t *Tree) preprocess() {
	t.SortNodes()
	t.main = newCursor(t, 0, t.connected)
	t.rebuildCaches()
	t.syncCursors()
}

// computeOrders resets every node's indices to the invalid sentinel, then
// assigns pre-order, post-order, and level-order indices in three walks
// from the root. Dangling nodes keep the sentinel. Tree height is the
// number of breadth tiers.
func (t *Tree) computeOrders() {
	for _, n := range t.registry {
		n.preOrder = InvalidOrder
		n.postOrder = InvalidOrder
		n.levelOrder = InvalidOrder
		n.depth = InvalidOrder
	}
	t.height = 0
	if t.root == nil {
		return
	}
	i := 0
	PreOrder(t.root, func(n *Node) {
		n.preOrder = i
		i++
	}, nil)
	i = 0
	PostOrder(t.root, func(n *Node) {
		n.postOrder = i
		i++
	})
	i = 0
	LevelOrder(t.root, func(n *Node, depth int) {
		n.levelOrder = i
		n.depth = depth
		i++
		if depth+1 > t.height {
			t.height = depth + 1
		}
	})
}

// rebuildCaches re-derives the parallel, observer, and tick-eligible node
// sets from the sorted registry.
func (t *Tree) rebuildCaches() {
	t.parallels = nil
	t.observers = nil
	t.tickers = nil
	for _, n := range t.registry[:t.connected] {
		if n.kind == KindParallel {
			t.parallels = append(t.parallels, n)
		}
		if o, ok := n.behavior.(Observer); ok {
			t.observers = append(t.observers, observerEntry{node: n, observer: o})
		}
		if n.behavior.CanTickOnTree() {
			t.tickers = append(t.tickers, n.behavior)
		}
	}
}

// syncCursors re-derives every parallel node's sub-cursors, then walks the
// tree once assigning the owning cursor for every node: nodes under no
// parallel node get the main cursor; a parallel node itself keeps its
// parent's cursor, but each of its children's subtrees gets that child's
// dedicated sub-cursor, recursively.
func (t *Tree) syncCursors() {
	for _, n := range t.registry {
		n.cursor = nil
	}
	for _, p := range t.parallels {
		p.syncSubCursors()
	}
	if t.root == nil {
		return
	}
	type assignment struct {
		node   *Node
		cursor *Cursor
	}
	stack := []assignment{{node: t.root, cursor: t.main}}
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a.node.cursor = a.cursor
		if a.node.kind == KindParallel {
			for i := a.node.ChildCount() - 1; i >= 0; i-- {
				stack = append(stack, assignment{node: a.node.Child(i), cursor: a.node.subCursors[i]})
			}
			continue
		}
		for i := a.node.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, assignment{node: a.node.Child(i), cursor: a.cursor})
		}
	}
}
