// Package goroutineid extracts the current goroutine's ID from its stack
// header. The script bridge uses it to detect whether a caller is already
// on the event loop goroutine, so synchronous scheduling can run inline
// instead of deadlocking.
package goroutineid

import (
	"runtime"
	"sync"
)

var bufPool = sync.Pool{
	New: func() any {
		return make([]byte, 4096)
	},
}

// Get returns the current goroutine ID, or 0 if the stack header cannot be
// parsed. The "goroutine N" header format has been stable since Go 1.5.
func Get() int64 {
	buf := bufPool.Get().([]byte)
	defer bufPool.Put(buf) //nolint:staticcheck // slice header is pointer-like
	n := runtime.Stack(buf, false)
	return parse(buf[:n])
}

// parse reads the integer following the "goroutine " prefix without
// allocating; Get sits on the bridge's scheduling path.
func parse(stack []byte) int64 {
	const prefix = "goroutine "
	if len(stack) < len(prefix) {
		return 0
	}
	for i := 0; i < len(prefix); i++ {
		if stack[i] != prefix[i] {
			return 0
		}
	}
	var id int64
	for _, b := range stack[len(prefix):] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + int64(b-'0')
	}
	return id
}
