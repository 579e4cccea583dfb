package arena

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/hupe1980/enginecore/internal/checked"
	"github.com/hupe1980/enginecore/internal/conv"
	"github.com/hupe1980/enginecore/internal/mem"
	"github.com/hupe1980/enginecore/internal/mmap"
)

var (
	// ErrOutOfMemory is returned when an allocation does not fit in the remaining capacity.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrFreed is returned when allocating from an arena after Free.
	ErrFreed = errors.New("arena: use after free")
	// ErrInvalidSize is returned by New for a non-positive capacity.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrInvalidAlignment is returned for an alignment that is not a power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a power of two")
	// ErrPointerType is returned when allocating a type that contains Go pointers.
	ErrPointerType = errors.New("arena: type contains pointers")
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Allocation describes one allocation. Records are only kept in strict mode.
type Allocation struct {
	Addr       uintptr // Start of the returned region
	Size       int     // Size of one element
	Align      int     // Alignment requirement
	Count      int     // Number of elements
	TotalBytes int     // Bytes consumed including padding
	Padding    int     // Bytes skipped to satisfy Align
	Type       string  // Element type name
	ID         uint64  // Sequence number since the last Reset
}

// Arena is a monotonic bump allocator over one fixed-size buffer.
//
// Allocations advance a cursor and are never freed individually; Reset
// rewinds the cursor and logically invalidates everything handed out.
// An Arena is not safe for concurrent use.
type Arena struct {
	name     string
	buf      []byte
	mapping  *mmap.Mapping
	size     int
	used     int
	strict   bool
	offHeap  bool
	acquirer MemoryAcquirer
	records  []Allocation
	seq      uint64
	freed    bool
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithStrict enables or disables poisoning and allocation records,
// overriding the build profile default.
func WithStrict(strict bool) Option {
	return func(a *Arena) {
		a.strict = strict
	}
}

// WithOffHeap backs the arena with an anonymous memory mapping instead of
// a Go heap buffer. The memory is returned to the OS only by Free.
func WithOffHeap() Option {
	return func(a *Arena) {
		a.offHeap = true
	}
}

// WithMemoryAcquirer reserves the arena capacity from acquirer for the
// lifetime of the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithName sets the name used in error messages.
func WithName(name string) Option {
	return func(a *Arena) {
		a.name = name
	}
}

// New creates an Arena with a fixed capacity of size bytes.
func New(size int, opts ...Option) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	a := &Arena{
		name:   "arena",
		size:   size,
		strict: checked.Enabled,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(size)); err != nil {
			return nil, fmt.Errorf("%s: reserve %d bytes: %w", a.name, size, err)
		}
	}

	if a.offHeap {
		mapping, err := mmap.MapAnon(size)
		if err != nil {
			if a.acquirer != nil {
				a.acquirer.ReleaseMemory(int64(size))
			}
			return nil, fmt.Errorf("%s: map anonymous memory: %w", a.name, err)
		}
		a.mapping = mapping
		a.buf = mapping.Bytes()
	} else {
		a.buf = mem.AllocAligned(size)
	}

	if a.strict {
		mem.Fill(a.buf, mem.DeadByte)
	}

	return a, nil
}

// AllocBytes allocates size zeroed bytes aligned to align.
// A non-positive size returns nil.
func (a *Arena) AllocBytes(size, align int) ([]byte, error) {
	if size <= 0 {
		return nil, a.usable()
	}
	return a.alloc(1, size, align, "uint8")
}

// Alloc allocates one zero-valued T. T must not contain Go pointers.
func Alloc[T any](a *Arena) (*T, error) {
	s, err := AllocSlice[T](a, 1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// AllocSlice allocates n contiguous zero-valued Ts aligned for T.
// T must not contain Go pointers. A non-positive n returns nil.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, a.usable()
	}

	t := mem.TypeOf[T]()
	if !mem.PointerFree(t) {
		return nil, fmt.Errorf("%w: %s", ErrPointerType, t)
	}

	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		if err := a.usable(); err != nil {
			return nil, err
		}
		return make([]T, n), nil
	}

	b, err := a.alloc(size, n, int(unsafe.Alignof(zero)), t.String())
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil //nolint:gosec // unsafe is required for arena implementation
}

func (a *Arena) usable() error {
	if a.freed {
		return ErrFreed
	}
	return nil
}

func (a *Arena) alloc(elemSize, count, align int, typeName string) ([]byte, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	if align <= 0 {
		align = 1
	}
	if bits.OnesCount(uint(align)) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, align)
	}
	size, err := conv.MulInt(elemSize, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOutOfMemory, a.name, err)
	}

	cursor := mem.Addr(a.buf) + uintptr(a.used)
	padding := int(mem.AlignUp(cursor, uintptr(align)))
	remaining := a.size - a.used
	if padding > remaining || size > remaining-padding {
		return nil, fmt.Errorf("%w: %s: requested %d bytes (+%d padding), %d of %d remaining",
			ErrOutOfMemory, a.name, size, padding, remaining, a.size)
	}
	total := padding + size

	start := a.used + padding
	b := a.buf[start : start+size : start+size]
	clear(b)
	a.used += total

	if a.strict {
		a.records = append(a.records, Allocation{
			Addr:       mem.Addr(b),
			Size:       elemSize,
			Align:      align,
			Count:      count,
			TotalBytes: total,
			Padding:    padding,
			Type:       typeName,
			ID:         a.seq,
		})
		a.seq++
	}

	return b, nil
}

// Reset rewinds the arena to empty. Every previously returned slice or
// pointer becomes logically dead; no cleanup runs for the values it held.
// In strict mode the used region is poisoned and the records are cleared.
func (a *Arena) Reset() {
	if a.freed {
		return
	}
	if a.strict {
		mem.Fill(a.buf[:a.used], mem.DeadByte)
		a.records = a.records[:0]
		a.seq = 0
	}
	a.used = 0
}

// Free releases the backing memory. The arena cannot be used afterwards and,
// for off-heap arenas, every slice it handed out becomes invalid.
func (a *Arena) Free() error {
	if a.freed {
		return nil
	}
	a.freed = true

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(a.size))
	}
	a.buf = nil
	a.records = nil
	a.used = 0
	return err
}

// Used returns the bytes consumed since the last Reset, padding included.
func (a *Arena) Used() int {
	return a.used
}

// Cap returns the fixed capacity in bytes.
func (a *Arena) Cap() int {
	return a.size
}

// Remaining returns the bytes still available, ignoring future padding.
func (a *Arena) Remaining() int {
	if a.freed {
		return 0
	}
	return a.size - a.used
}

// Strict reports whether poisoning and records are enabled.
func (a *Arena) Strict() bool {
	return a.strict
}

// Allocations returns a copy of the allocation records since the last Reset.
// It is empty unless the arena runs in strict mode.
func (a *Arena) Allocations() []Allocation {
	out := make([]Allocation, len(a.records))
	copy(out, a.records)
	return out
}
