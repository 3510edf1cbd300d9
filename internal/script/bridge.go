// Package script bridges JavaScript-defined leaf actions into the
// execution engine using the goja runtime on a goja_nodejs event loop.
//
// The runtime is not goroutine-safe: every VM operation must happen on the
// event loop goroutine, so all access goes through the Bridge's scheduling
// helpers. Leaf behaviors stay non-blocking: a dispatched script returns
// StatusRunning until its result callback lands.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"

	"github.com/arboric/behave/internal/blackboard"
	"github.com/arboric/behave/internal/goroutineid"
)

// Status strings shared between Go and JavaScript.
const (
	JSStatusRunning = "running"
	JSStatusSuccess = "success"
	JSStatusFailure = "failure"
)

// DefaultTimeout bounds synchronous scheduling operations.
const DefaultTimeout = 5 * time.Second

// Bridge owns access to a JavaScript event loop. The loop itself is
// external: the caller starts and stops it, and the Bridge only schedules
// work onto it. Stop (or parent context cancellation) closes Done and
// unblocks any synchronous waiters.
type Bridge struct {
	loop    *eventloop.EventLoop
	timeout time.Duration

	// Captured once during initialization, used to run scheduling inline
	// when the caller is already on the loop goroutine.
	loopGoroutineID atomic.Int64

	mu      sync.RWMutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBridge creates a bridge over an already-running event loop and
// installs the JavaScript helpers. If registry is non-nil the behave:bt
// native module is registered with it. Cancelling ctx stops the bridge.
func NewBridge(ctx context.Context, loop *eventloop.EventLoop, registry *require.Registry) (*Bridge, error) {
	if loop == nil {
		return nil, errors.New("script: event loop must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// The bridge lifecycle context is deliberately independent of ctx:
	// Stop must set stopped before Done closes, and a derived context
	// would close Done first on parent cancellation.
	lifecycle, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		loop:    loop,
		timeout: DefaultTimeout,
		ctx:     lifecycle,
		cancel:  cancel,
	}

	// Capture the loop goroutine ID before the module can be required, so
	// TryRunOnLoopSync never misdetects during module load.
	errCh := make(chan error, 1)
	if ok := loop.RunOnLoop(func(vm *goja.Runtime) {
		b.loopGoroutineID.Store(goroutineid.Get())
		_, err := vm.RunString(jsHelpers)
		errCh <- err
	}); !ok {
		cancel()
		return nil, errors.New("script: event loop not running")
	}
	if err := <-errCh; err != nil {
		cancel()
		return nil, fmt.Errorf("script: initialize helpers: %w", err)
	}

	if registry != nil {
		registry.RegisterNativeModule("behave:bt", b.moduleLoader())
	}

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, b.Stop)
		_ = stop
	}
	return b, nil
}

// jsHelpers installs runLeaf, which executes a leaf function and reports
// the outcome through a callback. The tick function may return a status
// directly or a Promise of one; the loop only drains macrotasks, so
// synchronous returns resolve without an extra turn.
const jsHelpers = `
globalThis.runLeaf = function(fn, bb, callback) {
	try {
		var result = fn(bb);
		if (result && typeof result.then === 'function') {
			result.then(
				function(status) { callback(String(status), null); },
				function(err) { callback("failure", err instanceof Error ? err.message : String(err)); }
			);
		} else {
			callback(String(result), null);
		}
	} catch (err) {
		callback("failure", err instanceof Error ? err.message : String(err));
	}
};

globalThis.behave = {
	running: "running",
	success: "success",
	failure: "failure"
};
`

// moduleLoader exposes status constants and a Blackboard constructor as the
// behave:bt module.
func (b *Bridge) moduleLoader() require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)
		_ = exports.Set("running", JSStatusRunning)
		_ = exports.Set("success", JSStatusSuccess)
		_ = exports.Set("failure", JSStatusFailure)
		_ = exports.Set("newBlackboard", func() goja.Value {
			return blackboard.New().ExposeToJS(vm)
		})
	}
}

// Stop shuts the bridge down and closes Done. Safe to call repeatedly.
// In-flight loop operations that were already scheduled may still run.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	// Cancel and flag under one lock so an observer of Done closed can
	// never see IsRunning report true.
	b.cancel()
	b.stopped = true
	b.mu.Unlock()
}

// Done is closed when the bridge stops.
func (b *Bridge) Done() <-chan struct{} { return b.ctx.Done() }

// IsRunning reports whether the bridge accepts work.
func (b *Bridge) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.stopped
}

// SetTimeout adjusts the bound on synchronous scheduling; zero disables it.
func (b *Bridge) SetTimeout(d time.Duration) {
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

// RunOnLoop schedules fn on the event loop goroutine, reporting whether it
// was accepted.
func (b *Bridge) RunOnLoop(fn func(*goja.Runtime)) bool {
	if !b.IsRunning() {
		return false
	}
	return b.loop.RunOnLoop(fn)
}

// RunOnLoopSync schedules fn on the event loop and waits for it, bounded by
// the configured timeout and bridge shutdown.
func (b *Bridge) RunOnLoopSync(fn func(*goja.Runtime) error) error {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return errors.New("script: event loop not running")
	}
	timeout := b.timeout
	b.mu.RUnlock()

	errCh := make(chan error, 1)
	if ok := b.loop.RunOnLoop(func(vm *goja.Runtime) {
		errCh <- fn(vm)
	}); !ok {
		return errors.New("script: event loop not running")
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case err := <-errCh:
		return err
	case <-b.Done():
		return errors.New("script: bridge stopped before completion")
	case <-timeoutCh:
		return fmt.Errorf("script: operation timed out after %v", timeout)
	}
}

// TryRunOnLoopSync behaves like RunOnLoopSync, except when the caller is
// already on the event loop goroutine: then fn runs inline with currentVM
// to avoid self-deadlock. Needed for behaviors whose callbacks re-enter the
// bridge from loop context.
func (b *Bridge) TryRunOnLoopSync(currentVM *goja.Runtime, fn func(*goja.Runtime) error) error {
	if !b.IsRunning() {
		return errors.New("script: event loop not running")
	}
	if id := b.loopGoroutineID.Load(); id > 0 && goroutineid.Get() == id {
		return fn(currentVM)
	}
	return b.RunOnLoopSync(fn)
}

// LoadScript compiles and runs code on the loop.
func (b *Bridge) LoadScript(name, code string) error {
	return b.RunOnLoopSync(func(vm *goja.Runtime) error {
		prg, err := goja.Compile(name, code, true)
		if err != nil {
			return fmt.Errorf("script: compile %s: %w", name, err)
		}
		if _, err := vm.RunProgram(prg); err != nil {
			return fmt.Errorf("script: run %s: %w", name, err)
		}
		return nil
	})
}

// GetCallable fetches a global JavaScript function by name.
func (b *Bridge) GetCallable(name string) (goja.Callable, error) {
	var fn goja.Callable
	err := b.RunOnLoopSync(func(vm *goja.Runtime) error {
		val := vm.Get(name)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			return fmt.Errorf("script: function %q not found", name)
		}
		callable, ok := goja.AssertFunction(val)
		if !ok {
			return fmt.Errorf("script: %q is not callable", name)
		}
		fn = callable
		return nil
	})
	return fn, err
}

// SetGlobal sets a global variable in the runtime.
func (b *Bridge) SetGlobal(name string, value any) error {
	return b.RunOnLoopSync(func(vm *goja.Runtime) error {
		return vm.Set(name, value)
	})
}

// ExposeBlackboard publishes bb as a global accessor object.
func (b *Bridge) ExposeBlackboard(name string, bb *blackboard.Blackboard) error {
	return b.RunOnLoopSync(func(vm *goja.Runtime) error {
		return vm.Set(name, bb.ExposeToJS(vm))
	})
}
