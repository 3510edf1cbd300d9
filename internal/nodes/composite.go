// Package nodes provides the built-in behaviors that plug into the
// execution engine: sequence/selector composites, parallel aggregation
// policies, decorators, and a handful of leaves. The engine core stays
// behavior-agnostic; everything here drives it purely through the Behavior
// contract and cursor traversal.
package nodes

import (
	"github.com/arboric/behave/internal/engine"
)

// enter routes traversal to a child through the child's owning cursor.
// For ordinary composites that is the composite's own cursor; for parallel
// children it is the child's dedicated sub-cursor.
func enter(child *engine.Node) {
	if c := child.Cursor(); c != nil {
		c.Traverse(child)
	}
}

// Sequence runs children in order and fails fast: the first child failure
// resolves the sequence as failure, and it succeeds only when every child
// succeeded.
type Sequence struct {
	engine.Base
	next    int
	verdict engine.Status
}

// NewSequence returns a sequence composite behavior.
func NewSequence() *Sequence { return &Sequence{} }

// OnEnter implements engine.Behavior.
func (s *Sequence) OnEnter() {
	s.next = 0
	s.verdict = engine.StatusInvalid
	n := s.Node()
	if n.ChildCount() == 0 {
		s.verdict = engine.StatusSuccess
		return
	}
	s.next = 1
	enter(n.Child(0))
}

// OnChildComplete implements engine.Behavior.
func (s *Sequence) OnChildComplete(_ *engine.Node, status engine.Status) {
	if status == engine.StatusFailure {
		s.verdict = engine.StatusFailure
		return
	}
	n := s.Node()
	if s.next < n.ChildCount() {
		i := s.next
		s.next++
		enter(n.Child(i))
		return
	}
	s.verdict = engine.StatusSuccess
}

// OnTick implements engine.Behavior. The sequence is only current when no
// child is active, i.e. when a verdict is pending delivery.
func (s *Sequence) OnTick() engine.Status {
	if s.verdict == engine.StatusInvalid {
		return engine.StatusRunning
	}
	return s.verdict
}

// OnInterrupt implements engine.Behavior.
func (s *Sequence) OnInterrupt() {
	s.next = 0
	s.verdict = engine.StatusInvalid
}

// Clone implements engine.Behavior.
func (s *Sequence) Clone() engine.Behavior { return NewSequence() }

// Selector runs children in order until one succeeds; it fails only when
// every child failed. Child order is priority order, which is why observer
// aborts compare pre-order indices.
type Selector struct {
	engine.Base
	next    int
	verdict engine.Status
}

// NewSelector returns a selector composite behavior.
func NewSelector() *Selector { return &Selector{} }

// OnEnter implements engine.Behavior.
func (s *Selector) OnEnter() {
	s.next = 0
	s.verdict = engine.StatusInvalid
	n := s.Node()
	if n.ChildCount() == 0 {
		s.verdict = engine.StatusFailure
		return
	}
	s.next = 1
	enter(n.Child(0))
}

// OnChildComplete implements engine.Behavior.
func (s *Selector) OnChildComplete(_ *engine.Node, status engine.Status) {
	if status == engine.StatusSuccess {
		s.verdict = engine.StatusSuccess
		return
	}
	n := s.Node()
	if s.next < n.ChildCount() {
		i := s.next
		s.next++
		enter(n.Child(i))
		return
	}
	s.verdict = engine.StatusFailure
}

// OnTick implements engine.Behavior.
func (s *Selector) OnTick() engine.Status {
	if s.verdict == engine.StatusInvalid {
		return engine.StatusRunning
	}
	return s.verdict
}

// OnInterrupt implements engine.Behavior.
func (s *Selector) OnInterrupt() {
	s.next = 0
	s.verdict = engine.StatusInvalid
}

// Clone implements engine.Behavior.
func (s *Selector) Clone() engine.Behavior { return NewSelector() }
