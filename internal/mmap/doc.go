// Package mmap maps asset files read-only and reserves anonymous memory for
// off-heap allocators.
//
//	m, err := mmap.Open("textures/brick.ktx")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AdviceSequential)
//	data := m.Bytes()
//
//	anon, err := mmap.MapAnon(1 << 20) // arena.WithOffHeap, pool.WithOffHeap
//
// On unix the package uses mmap(2) and madvise(2). On Windows it uses
// MapViewOfFile and VirtualAlloc, and Advise does nothing.
//
// Close is idempotent. Slices returned by Bytes must not be used once Close
// has been called.
package mmap
