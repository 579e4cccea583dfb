// Package arena provides a fixed-capacity bump allocator for per-frame data.
//
// # Usage
//
//	frame, err := arena.New(4 << 20, arena.WithName("frame"))
//	if err != nil { ... }
//	defer frame.Free()
//
//	for running {
//	    cmds, err := arena.AllocSlice[DrawCmd](frame, len(visible))
//	    if err != nil {
//	        // ErrOutOfMemory: the frame budget is exhausted
//	    }
//	    ...
//	    frame.Reset() // end of frame, everything above is dead
//	}
//
// # Lifetime
//
// Memory handed out by an arena is valid until the next Reset (logically)
// and until Free (physically). Never keep arena data across frames.
//
// Typed allocation is limited to pointer-free types: the backing buffer is
// raw memory that the garbage collector does not scan. Alloc and AllocSlice
// return ErrPointerType for anything else.
//
// # Profiles
//
// In strict mode (WithStrict(true) or the `checked` build tag) the arena
// poisons reset memory with 0xDD and records every allocation for
// introspection through Allocations.
//
// # Concurrency
//
// An Arena is owned by a single goroutine at a time. Callers that share one
// must serialize access themselves.
package arena
