// Package typedpool provides a bump allocator for a single element type and
// the View type it hands out.
//
//	transforms := typedpool.New[Transform](4096)
//
//	v, err := transforms.Allocate(len(entities))
//	if err != nil {
//	    // typedpool.ErrExhausted
//	}
//	for i, t := range v.All() {
//	    t.Scale = 1
//	    _ = i
//	}
//
//	transforms.Clear() // start of the next frame
//
// Exhaustion is never silently truncated. Strict pools panic, fast pools
// return ErrExhausted and stay unchanged.
package typedpool
