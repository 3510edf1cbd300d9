package nodes

import (
	"github.com/arboric/behave/internal/engine"
)

// Policy selects how a parallel composite aggregates child statuses.
type Policy uint8

const (
	// RequireAll succeeds when every child succeeds and fails as soon as
	// any child fails.
	RequireAll Policy = iota
	// RequireOne succeeds as soon as any child succeeds and fails only
	// when every child failed.
	RequireOne
)

func (p Policy) String() string {
	switch p {
	case RequireAll:
		return "require-all"
	case RequireOne:
		return "require-one"
	default:
		return "unknown"
	}
}

// Parallel runs every child concurrently within one tree tick by advancing
// each child's dedicated sub-cursor once per own tick. Aggregation follows
// the configured policy; when the composite resolves early, still-running
// children are interrupted so no child outlives its parent.
type Parallel struct {
	engine.Base
	policy Policy
}

// NewParallel returns a parallel composite behavior with the given policy.
func NewParallel(policy Policy) *Parallel { return &Parallel{policy: policy} }

// Policy returns the aggregation policy.
func (p *Parallel) Policy() Policy { return p.policy }

// OnEnter implements engine.Behavior: every child subtree begins traversal
// on its own sub-cursor.
func (p *Parallel) OnEnter() {
	n := p.Node()
	for i := 0; i < n.ChildCount(); i++ {
		if sub := n.SubCursor(i); sub != nil {
			sub.Traverse(n.Child(i))
		}
	}
}

// OnTick implements engine.Behavior: each running sub-cursor advances one
// step, then child outcomes aggregate per policy.
func (p *Parallel) OnTick() engine.Status {
	n := p.Node()
	count := n.ChildCount()
	if count == 0 {
		return engine.StatusSuccess
	}
	succeeded, failed := 0, 0
	for i := 0; i < count; i++ {
		sub := n.SubCursor(i)
		if sub == nil {
			continue
		}
		if sub.Running() {
			sub.Update()
		}
		if sub.Running() {
			continue
		}
		switch sub.LastStatus() {
		case engine.StatusSuccess:
			succeeded++
		case engine.StatusFailure:
			failed++
		}
	}
	switch p.policy {
	case RequireOne:
		if succeeded > 0 {
			p.haltChildren()
			return engine.StatusSuccess
		}
		if failed == count {
			return engine.StatusFailure
		}
	default: // RequireAll
		if failed > 0 {
			p.haltChildren()
			return engine.StatusFailure
		}
		if succeeded == count {
			return engine.StatusSuccess
		}
	}
	return engine.StatusRunning
}

// OnInterrupt implements engine.Behavior: an interrupt that unwinds the
// parallel node tears down its own sub-cursors, so children never run under
// a parent that is no longer on an active path.
func (p *Parallel) OnInterrupt() { p.haltChildren() }

// haltChildren fully unwinds any still-running sub-cursor. Rewinding toward
// the parallel node itself lands outside each sub-cursor's owned range, so
// every entered node is notified and the cursor halts.
func (p *Parallel) haltChildren() {
	n := p.Node()
	for i := 0; i < n.ChildCount(); i++ {
		if sub := n.SubCursor(i); sub != nil && sub.Running() {
			sub.StepBackInterrupt(n, true)
		}
	}
}

// Clone implements engine.Behavior.
func (p *Parallel) Clone() engine.Behavior { return NewParallel(p.policy) }
