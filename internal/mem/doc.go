// Package mem provides memory allocation utilities shared by the allocators.
//
// # Aligned Allocation
//
// AllocAligned returns cache-line (64-byte) aligned byte buffers. Because the
// base address is aligned, an offset that is aligned within the buffer is also
// aligned in absolute terms, which the arena relies on for typed allocation.
//
// # Poisoning
//
// Strict-mode allocators fill freed memory with DeadByte and freshly handed out
// memory with CleanByte so that use-after-free and uninitialized reads show up
// as recognizable patterns.
//
// # Pointer-free Types
//
// PointerFree guards typed allocation out of raw byte memory: only types
// without Go pointers may live there.
package mem
