package nodes

import (
	"log/slog"

	"github.com/arboric/behave/internal/condition"
	"github.com/arboric/behave/internal/engine"
)

// Inverter flips its child's resolution: success becomes failure and vice
// versa. Running passes through.
type Inverter struct {
	engine.Base
	verdict engine.Status
}

// NewInverter returns an inverter decorator behavior.
func NewInverter() *Inverter { return &Inverter{} }

// OnEnter implements engine.Behavior.
func (d *Inverter) OnEnter() {
	d.verdict = engine.StatusInvalid
	n := d.Node()
	if n.ChildCount() == 0 {
		d.verdict = engine.StatusFailure
		return
	}
	enter(n.Child(0))
}

// OnChildComplete implements engine.Behavior.
func (d *Inverter) OnChildComplete(_ *engine.Node, status engine.Status) {
	if status == engine.StatusSuccess {
		d.verdict = engine.StatusFailure
	} else {
		d.verdict = engine.StatusSuccess
	}
}

// OnTick implements engine.Behavior.
func (d *Inverter) OnTick() engine.Status {
	if d.verdict == engine.StatusInvalid {
		return engine.StatusRunning
	}
	return d.verdict
}

// OnInterrupt implements engine.Behavior.
func (d *Inverter) OnInterrupt() { d.verdict = engine.StatusInvalid }

// Clone implements engine.Behavior.
func (d *Inverter) Clone() engine.Behavior { return NewInverter() }

// AbortMode selects which execution states a conditional abort may
// interrupt.
type AbortMode uint8

const (
	// AbortNone disables observation; the decorator is a plain guard.
	AbortNone AbortMode = iota
	// AbortSelf interrupts the decorator's own running subtree.
	AbortSelf
	// AbortLowerPriority interrupts subtrees to the right of the decorator
	// (higher pre-order index) running on the same cursor.
	AbortLowerPriority
	// AbortBoth combines AbortSelf and AbortLowerPriority.
	AbortBoth
)

func (m AbortMode) String() string {
	switch m {
	case AbortNone:
		return "none"
	case AbortSelf:
		return "self"
	case AbortLowerPriority:
		return "lower-priority"
	case AbortBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ConditionalAbort guards its child with a predicate and doubles as an
// observer: the tree re-evaluates the predicate every tick regardless of
// where execution currently is.
//
// While the predicate is false the child runs and its status passes
// through. When the predicate becomes true, the decorator's cursor aborts
// back to the decorator, which then re-enters, sees the satisfied
// predicate, and resolves as failure so a parent selector can move on.
// Firing is edge-triggered (false to true), so a persistently satisfied
// predicate does not restart its subtree every tick.
type ConditionalAbort struct {
	engine.Base
	pred *condition.Predicate
	mode AbortMode

	last    bool
	failNow bool
	verdict engine.Status
}

// NewConditionalAbort returns the decorator with a compiled predicate and
// abort mode.
func NewConditionalAbort(pred *condition.Predicate, mode AbortMode) *ConditionalAbort {
	return &ConditionalAbort{pred: pred, mode: mode}
}

// Mode returns the abort mode.
func (c *ConditionalAbort) Mode() AbortMode { return c.mode }

func (c *ConditionalAbort) eval() bool {
	n := c.Node()
	if c.pred == nil || n == nil || n.Tree() == nil {
		return false
	}
	v, err := c.pred.Eval(n.Tree().Blackboard())
	if err != nil {
		slog.Warn("behave: abort predicate failed", "node", n.Name(), "error", err)
		return false
	}
	return v
}

// OnEnter implements engine.Behavior.
func (c *ConditionalAbort) OnEnter() {
	c.verdict = engine.StatusInvalid
	v := c.eval()
	c.last = v
	c.failNow = v
	if v {
		return
	}
	n := c.Node()
	if n.ChildCount() == 0 {
		c.verdict = engine.StatusSuccess
		return
	}
	enter(n.Child(0))
}

// OnChildComplete implements engine.Behavior.
func (c *ConditionalAbort) OnChildComplete(_ *engine.Node, status engine.Status) {
	c.verdict = status
}

// OnTick implements engine.Behavior.
func (c *ConditionalAbort) OnTick() engine.Status {
	if c.failNow {
		return engine.StatusFailure
	}
	if c.verdict == engine.StatusInvalid {
		return engine.StatusRunning
	}
	return c.verdict
}

// OnInterrupt implements engine.Behavior.
func (c *ConditionalAbort) OnInterrupt() {
	c.failNow = false
	c.verdict = engine.StatusInvalid
}

// Observe implements engine.Observer. It fires on a false-to-true edge of
// the predicate, gated by the abort mode: self-aborts require the
// decorator's subtree to be actively running, lower-priority aborts require
// execution to have moved past the decorator on the same cursor.
func (c *ConditionalAbort) Observe() bool {
	if c.mode == AbortNone {
		return false
	}
	v := c.eval()
	fired := v && !c.last
	c.last = v
	if !fired {
		return false
	}
	n := c.Node()
	active := n.Result() == engine.StatusRunning
	switch c.mode {
	case AbortSelf:
		return active
	case AbortLowerPriority:
		return !active && n.Cursor().CurrentIndex() > n.PreOrder()
	default: // AbortBoth
		return active || n.Cursor().CurrentIndex() > n.PreOrder()
	}
}

// Clone implements engine.Behavior.
func (c *ConditionalAbort) Clone() engine.Behavior {
	return NewConditionalAbort(c.pred, c.mode)
}
