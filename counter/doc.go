// Package counter provides a shared atomic counter used as a completion barrier.
//
// A producer increments the counter once per asynchronous operation it
// starts, hands a cloned handle to the operation, and the operation
// decrements when it finishes. WaitForZero then blocks until every operation
// has reported back:
//
//	pending := counter.New()
//	defer pending.Release()
//
//	for _, path := range paths {
//	    pending.Increment()
//	    c := pending.Clone()
//	    _ = ld.Submit(ctx, loader.Request{Path: path, Callback: func(r loader.Result) {
//	        defer c.Release()
//	        stage(r)
//	        c.Decrement()
//	    }})
//	}
//	pending.WaitForZero()
//
// # Ownership
//
// Handles are values. Clone adds a reference, Move transfers one, Release
// drops one. The shared state lives until its last handle is released.
//
// # Memory Ordering
//
// Go atomics are sequentially consistent, so a Decrement on one goroutine
// happens before the WaitForZero load that observes it. Anything written
// before Decrement is visible after WaitForZero returns.
package counter
