package script

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dop251/goja"

	"github.com/arboric/behave/internal/blackboard"
	"github.com/arboric/behave/internal/engine"
)

// asyncState tracks a dispatched script's progress.
type asyncState uint8

const (
	stateIdle asyncState = iota
	stateDispatched
	stateCompleted
)

// Action is a leaf behavior that executes a JavaScript function on the
// bridge's event loop. The function receives the tree's blackboard as an
// accessor object and returns a status string (or a Promise of one).
//
// Execution is non-blocking: the first tick dispatches to the loop and
// returns running; subsequent ticks return running until the callback
// lands, then deliver the mapped status. A generation counter invalidates
// callbacks from dispatches that were interrupted, so a stale completion
// can never corrupt a fresh run. Ticks and callbacks arrive on different
// goroutines (host loop vs event loop), hence the mutex.
type Action struct {
	engine.Base
	bridge *Bridge
	fnName string

	mu         sync.Mutex
	state      asyncState
	generation uint64
	outcome    engine.Status
}

// NewAction returns a leaf behavior that runs the named global JavaScript
// function.
func NewAction(bridge *Bridge, fnName string) *Action {
	return &Action{bridge: bridge, fnName: fnName}
}

// FuncName returns the JavaScript function name the action invokes.
func (a *Action) FuncName() string { return a.fnName }

// OnTick implements engine.Behavior.
func (a *Action) OnTick() engine.Status {
	a.mu.Lock()
	switch a.state {
	case stateIdle:
		a.generation++
		gen := a.generation
		a.state = stateDispatched
		a.mu.Unlock()
		if !a.dispatch(gen) {
			a.finalize(gen, engine.StatusFailure)
		}
		return engine.StatusRunning
	case stateDispatched:
		a.mu.Unlock()
		return engine.StatusRunning
	default: // stateCompleted
		outcome := a.outcome
		a.state = stateIdle
		a.mu.Unlock()
		return outcome
	}
}

// OnInterrupt implements engine.Behavior: the pending dispatch, if any, is
// orphaned by bumping the generation so its callback is dropped.
func (a *Action) OnInterrupt() {
	a.mu.Lock()
	a.generation++
	a.state = stateIdle
	a.mu.Unlock()
}

// Clone implements engine.Behavior.
func (a *Action) Clone() engine.Behavior { return NewAction(a.bridge, a.fnName) }

func (a *Action) blackboard() *blackboard.Blackboard {
	if n := a.Node(); n != nil && n.Tree() != nil {
		return n.Tree().Blackboard()
	}
	return nil
}

// dispatch schedules the script invocation on the event loop, reporting
// whether scheduling succeeded.
func (a *Action) dispatch(gen uint64) bool {
	return a.bridge.RunOnLoop(func(vm *goja.Runtime) {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("behave: script action panicked", "func", a.fnName, "panic", fmt.Sprint(r))
				a.finalize(gen, engine.StatusFailure)
			}
		}()

		fnVal := vm.Get(a.fnName)
		if _, ok := goja.AssertFunction(fnVal); !ok {
			slog.Warn("behave: script action function not found", "func", a.fnName)
			a.finalize(gen, engine.StatusFailure)
			return
		}
		runLeaf, ok := goja.AssertFunction(vm.Get("runLeaf"))
		if !ok {
			a.finalize(gen, engine.StatusFailure)
			return
		}

		var bbVal goja.Value = goja.Undefined()
		if bb := a.blackboard(); bb != nil {
			bbVal = bb.ExposeToJS(vm)
		}
		callback := vm.ToValue(func(call goja.FunctionCall) goja.Value {
			status := statusFromJS(call.Argument(0).String())
			if errArg := call.Argument(1); !goja.IsNull(errArg) && !goja.IsUndefined(errArg) {
				slog.Warn("behave: script action failed", "func", a.fnName, "error", errArg.String())
			}
			a.finalize(gen, status)
			return goja.Undefined()
		})
		if _, err := runLeaf(goja.Undefined(), fnVal, bbVal, callback); err != nil {
			slog.Warn("behave: script action dispatch failed", "func", a.fnName, "error", err)
			a.finalize(gen, engine.StatusFailure)
		}
	})
}

// finalize records a dispatch outcome; results from superseded generations
// are dropped.
func (a *Action) finalize(gen uint64, status engine.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation || a.state != stateDispatched {
		return
	}
	a.state = stateCompleted
	a.outcome = status
}

// statusFromJS maps a status string from JavaScript to an engine status.
// A still-running script reports running; anything unrecognized fails.
func statusFromJS(s string) engine.Status {
	switch s {
	case JSStatusRunning:
		return engine.StatusRunning
	case JSStatusSuccess:
		return engine.StatusSuccess
	default:
		return engine.StatusFailure
	}
}
