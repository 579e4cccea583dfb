// Package pool provides a fixed-block allocator with O(1) alloc and free.
//
// A Pool splits one buffer into equally sized blocks. Every block starts on a
// 16-byte boundary (odd block sizes are padded internally), so any
// pointer-free type up to BlockSize bytes can live in one:
//
//	p, _ := pool.New(64<<10, 128, pool.WithName("particles"))
//	defer p.Close()
//
//	part := pool.Allocate[Particle](p)
//	if part == nil {
//	    // pool exhausted
//	}
//	pool.Deallocate(p, part)
//
// In strict mode (WithStrict(true) or the `checked` build tag) the pool
// tracks live blocks in a roaring bitmap and panics on foreign pointers,
// double frees, and writes to freed blocks. Free memory carries 0xDD and
// freshly allocated memory 0xCD.
//
// FreeLen()+AllocatedLen() always equals Cap().
package pool
