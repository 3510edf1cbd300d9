package engine

// Traversable constrains the generic walker to tree-shaped types exposing
// indexed child access. *Node satisfies it, as do template/asset node types
// outside this package.
type Traversable[T any] interface {
	comparable
	ChildCount() int
	Child(int) T
}

// PreOrder visits root's subtree in pre-order (node before children). If
// skip is non-nil and returns true for a node, the node itself is still
// visited but its subtree is not descended into; this is how main-cursor
// bookkeeping stops at parallel boundaries.
//
// The walk uses an explicit stack, so depth is bounded by memory rather than
// the call stack.
func PreOrder[T Traversable[T]](root T, visit func(T), skip func(T) bool) {
	var zero T
	if root == zero {
		return
	}
	stack := []T{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		if skip != nil && skip(n) {
			continue
		}
		for i := n.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
}

// PostOrder visits root's subtree in post-order (children before node),
// using an explicit frame stack.
func PostOrder[T Traversable[T]](root T, visit func(T)) {
	var zero T
	if root == zero {
		return
	}
	type frame struct {
		node T
		next int
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < f.node.ChildCount() {
			child := f.node.Child(f.next)
			f.next++
			stack = append(stack, frame{node: child})
			continue
		}
		visit(f.node)
		stack = stack[:len(stack)-1]
	}
}

// LevelOrder visits root's subtree in breadth-first tiers, passing each
// node's depth (root is depth 0) to visit.
func LevelOrder[T Traversable[T]](root T, visit func(node T, depth int)) {
	var zero T
	if root == zero {
		return
	}
	type item struct {
		node  T
		depth int
	}
	queue := []item{{node: root}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		visit(it.node, it.depth)
		for i := 0; i < it.node.ChildCount(); i++ {
			queue = append(queue, item{node: it.node.Child(i), depth: it.depth + 1})
		}
	}
}
