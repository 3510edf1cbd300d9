package nodes

import (
	"log/slog"

	"github.com/arboric/behave/internal/condition"
	"github.com/arboric/behave/internal/engine"
)

// Succeed resolves immediately with success.
type Succeed struct{ engine.Base }

// NewSucceed returns the always-success leaf.
func NewSucceed() *Succeed { return &Succeed{} }

// Clone implements engine.Behavior.
func (*Succeed) Clone() engine.Behavior { return NewSucceed() }

// Fail resolves immediately with failure.
type Fail struct{ engine.Base }

// NewFail returns the always-failure leaf.
func NewFail() *Fail { return &Fail{} }

// OnTick implements engine.Behavior.
func (*Fail) OnTick() engine.Status { return engine.StatusFailure }

// Clone implements engine.Behavior.
func (*Fail) Clone() engine.Behavior { return NewFail() }

// Wait stays running for a fixed number of ticks, then succeeds.
type Wait struct {
	engine.Base
	ticks     int
	remaining int
}

// NewWait returns a leaf that runs for ticks evaluations before succeeding.
func NewWait(ticks int) *Wait { return &Wait{ticks: ticks} }

// OnEnter implements engine.Behavior.
func (w *Wait) OnEnter() { w.remaining = w.ticks }

// OnTick implements engine.Behavior.
func (w *Wait) OnTick() engine.Status {
	if w.remaining > 0 {
		w.remaining--
		return engine.StatusRunning
	}
	return engine.StatusSuccess
}

// Clone implements engine.Behavior.
func (w *Wait) Clone() engine.Behavior { return NewWait(w.ticks) }

// Condition evaluates a predicate once per entry: success if satisfied,
// failure otherwise. Unlike ConditionalAbort it is a plain leaf with no
// observation.
type Condition struct {
	engine.Base
	pred *condition.Predicate
}

// NewCondition returns a predicate leaf.
func NewCondition(pred *condition.Predicate) *Condition { return &Condition{pred: pred} }

// OnTick implements engine.Behavior.
func (c *Condition) OnTick() engine.Status {
	n := c.Node()
	if c.pred == nil || n == nil || n.Tree() == nil {
		return engine.StatusFailure
	}
	v, err := c.pred.Eval(n.Tree().Blackboard())
	if err != nil {
		slog.Warn("behave: condition predicate failed", "node", n.Name(), "error", err)
		return engine.StatusFailure
	}
	if v {
		return engine.StatusSuccess
	}
	return engine.StatusFailure
}

// Clone implements engine.Behavior.
func (c *Condition) Clone() engine.Behavior { return NewCondition(c.pred) }

// Func adapts a plain Go function into a leaf. Primarily useful for tests
// and embedding hosts that define behaviors inline.
type Func struct {
	engine.Base
	fn func() engine.Status
}

// NewFunc returns a leaf that delegates each evaluation to fn.
func NewFunc(fn func() engine.Status) *Func { return &Func{fn: fn} }

// OnTick implements engine.Behavior.
func (f *Func) OnTick() engine.Status {
	if f.fn == nil {
		return engine.StatusFailure
	}
	return f.fn()
}

// Clone implements engine.Behavior.
func (f *Func) Clone() engine.Behavior { return NewFunc(f.fn) }
