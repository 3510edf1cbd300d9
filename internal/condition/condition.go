// Package condition compiles and evaluates abort/guard predicates written
// in expr-lang, evaluated against blackboard contents. Compiled programs
// are cached in a bounded LRU so observer polling stays cheap: conditional
// aborts re-evaluate their predicate every tree tick.
package condition

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/arboric/behave/internal/blackboard"
)

// DefaultCacheSize bounds the shared compiled-program cache.
const DefaultCacheSize = 256

var programs = newProgramCache(DefaultCacheSize)

// Predicate is a compiled boolean expression over blackboard contents.
type Predicate struct {
	source  string
	program *vm.Program
}

// Compile parses source as a boolean expression. Unknown identifiers are
// permitted and resolve to nil at evaluation time, so predicates can refer
// to keys the blackboard does not hold yet. Compiled programs are shared
// through the package cache.
func Compile(source string) (*Predicate, error) {
	if prog, ok := programs.get(source); ok {
		return &Predicate{source: source, program: prog}, nil
	}
	prog, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("condition: compile %q: %w", source, err)
	}
	programs.put(source, prog)
	return &Predicate{source: source, program: prog}, nil
}

// Source returns the original expression text.
func (p *Predicate) Source() string { return p.source }

// Eval runs the predicate against a snapshot of the blackboard. A nil
// blackboard evaluates against an empty environment.
func (p *Predicate) Eval(bb *blackboard.Blackboard) (bool, error) {
	env := map[string]any{}
	if bb != nil {
		env = bb.Snapshot()
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("condition: eval %q: %w", p.source, err)
	}
	v, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition: %q returned %T, want bool", p.source, out)
	}
	return v, nil
}

// programCache is a bounded LRU of compiled programs keyed by source text.
type programCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	max     int
}

type cacheEntry struct {
	source  string
	program *vm.Program
}

func newProgramCache(max int) *programCache {
	if max < 1 {
		max = DefaultCacheSize
	}
	return &programCache{
		entries: make(map[string]*list.Element, max),
		lru:     list.New(),
		max:     max,
	}
}

func (c *programCache) get(source string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[source]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).program, true
}

func (c *programCache) put(source string, prog *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[source]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).program = prog
		return
	}
	c.entries[source] = c.lru.PushFront(&cacheEntry{source: source, program: prog})
	for c.lru.Len() > c.max {
		back := c.lru.Back()
		e := back.Value.(*cacheEntry)
		delete(c.entries, e.source)
		c.lru.Remove(back)
	}
}
