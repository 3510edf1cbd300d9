// Package blackboard provides the shared key-value store behaviors use to
// communicate. One instance exists per tree instance; template trees and
// their clones each get independent stores.
//
// The engine never inspects blackboard contents; it only carries the
// reference and copies the store when a tree is cloned.
package blackboard

import (
	"sync"

	"github.com/dop251/goja"
)

// Blackboard is a thread-safe key-value store. The zero value is ready to
// use; the internal map is lazily initialized on first write.
type Blackboard struct {
	mu   sync.RWMutex
	data map[string]any
}

// New returns an empty blackboard.
func New() *Blackboard { return new(Blackboard) }

// Get retrieves a value, or nil if the key does not exist.
func (b *Blackboard) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data[key]
}

// Set stores a value.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		b.data = make(map[string]any)
	}
	b.data[key] = value
}

// Has reports whether the key exists.
func (b *Blackboard) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[key]
	return ok
}

// GetBool retrieves a boolean value; missing keys and non-bool values
// report false.
func (b *Blackboard) GetBool(key string) bool {
	v, _ := b.Get(key).(bool)
	return v
}

// Delete removes a key.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
}

// Keys returns all keys, in no particular order.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of keys.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Clear removes all entries.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
}

// Snapshot returns a shallow copy of the store's contents. Mutable values
// (slices, maps, pointers) are shared with the original; callers needing
// isolation must deep copy themselves.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

// Clone returns a new blackboard seeded with a shallow copy of the current
// contents. Used when instancing a template tree.
func (b *Blackboard) Clone() *Blackboard {
	c := New()
	snap := b.Snapshot()
	if len(snap) > 0 {
		c.data = snap
	}
	return c
}

// ExposeToJS builds a JavaScript object with bound accessor methods
// (get/set/has/delete/keys/clear/len) for this blackboard. Must be called
// on the event loop goroutine that owns vm.
func (b *Blackboard) ExposeToJS(vm *goja.Runtime) goja.Value {
	obj := vm.NewObject()
	// These keys are valid identifiers; Set cannot fail for them.
	_ = obj.Set("get", b.Get)
	_ = obj.Set("set", b.Set)
	_ = obj.Set("has", b.Has)
	_ = obj.Set("delete", b.Delete)
	_ = obj.Set("keys", b.Keys)
	_ = obj.Set("clear", b.Clear)
	_ = obj.Set("len", b.Len)
	return obj
}
