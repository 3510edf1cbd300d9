// Package interop exposes behave trees to go-behaviortree, so a runtime
// tree can be composed into an existing go-behaviortree hierarchy or driven
// by its tickers.
package interop

import (
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/arboric/behave/internal/engine"
)

// TreeNode adapts an engine tree to a go-behaviortree leaf. Each tick
// advances the tree once; the adapter reports running until the tree
// resolves, then keeps reporting the resolved status. Reset re-arms it for
// another run.
type TreeNode struct {
	tree    *engine.Tree
	started bool
}

// NewTreeNode wraps an unstarted tree. The adapter starts the tree on its
// first tick.
func NewTreeNode(t *engine.Tree) *TreeNode { return &TreeNode{tree: t} }

// Node returns the go-behaviortree node for this adapter.
func (a *TreeNode) Node() bt.Node {
	return bt.New(a.Tick)
}

// Tick implements the go-behaviortree tick contract.
func (a *TreeNode) Tick([]bt.Node) (bt.Status, error) {
	if !a.started {
		if err := a.tree.Start(); err != nil {
			return bt.Failure, err
		}
		a.started = true
	}
	a.tree.Update()
	if a.tree.IsRunning() {
		return bt.Running, nil
	}
	return statusOut(a.tree.LastStatus()), nil
}

// Reset halts any in-flight execution so the next tick restarts the tree.
func (a *TreeNode) Reset() {
	if a.started && a.tree.IsRunning() {
		a.tree.Interrupt(nil, true)
	}
	a.started = false
}

func statusOut(s engine.Status) bt.Status {
	switch s {
	case engine.StatusSuccess:
		return bt.Success
	case engine.StatusRunning:
		return bt.Running
	default:
		return bt.Failure
	}
}
