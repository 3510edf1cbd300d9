package engine

// Clone deep-copies a template tree into an independent runtime instance.
//
// The template's orders are (re)computed first, then the template is walked
// in pre-order, appending a copy of each reachable node to the clone's
// registry in the same order. That makes pre-order index the cross-tree
// correspondence key: clone.NodeAt(i) is the copy of template.NodeAt(i) for
// every connected node. Dangling template nodes are excluded simply by not
// being reached. A second pass re-links parent/child pointers through that
// correspondence, and a third invokes the post-copy hook on every cloned
// node.
//
// The blackboard, if present, is copied into a fresh instance so template
// and clone never share state.
func Clone(template *Tree) *Tree {
	c := New(nil)
	c.logger = template.logger
	if template.blackboard != nil {
		c.blackboard = template.blackboard.Clone()
	}
	if template.root == nil {
		return c
	}
	template.SortNodes()

	PreOrder(template.root, func(n *Node) {
		cn := c.NewNode(n.kind, n.name, n.behavior.Clone())
		cn.preOrder = n.preOrder
		cn.postOrder = n.postOrder
		cn.levelOrder = n.levelOrder
		cn.depth = n.depth
	}, nil)

	for i, n := range template.registry[:template.connected] {
		cn := c.registry[i]
		if n.parent != nil {
			cn.parent = c.registry[n.parent.preOrder]
		}
		for _, child := range n.children {
			cn.children = append(cn.children, c.registry[child.preOrder])
		}
	}

	for _, cn := range c.registry {
		cn.behavior.OnCopy()
	}

	c.root = c.registry[template.root.preOrder]
	c.connected = len(c.registry)
	c.height = template.height
	return c
}
