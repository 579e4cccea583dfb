package pool

import (
	"fmt"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/enginecore/internal/checked"
	"github.com/hupe1980/enginecore/internal/conv"
	"github.com/hupe1980/enginecore/internal/mem"
	"github.com/hupe1980/enginecore/internal/mmap"
)

// MaxAlign is the alignment of every block. Blocks are laid out MaxAlign
// apart; a block size that is not a multiple of it is padded internally.
const MaxAlign = 16

const nilIndex int32 = -1

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Stats is a point-in-time snapshot of pool usage.
type Stats struct {
	Name      string
	BlockSize int
	Blocks    int
	Free      int
	Allocated int
	HighWater int    // Max blocks allocated at once
	Allocs    uint64 // Successful allocations
	Frees     uint64
	Failed    uint64 // Alloc calls that found the pool empty
}

// Pool hands out fixed-size blocks from one contiguous buffer.
//
// Free blocks form a singly linked list and allocated blocks a doubly linked
// list, both threaded through per-block index arrays, so Alloc and Free are
// O(1). A Pool is not safe for concurrent use.
type Pool struct {
	name      string
	buf       []byte
	mapping   *mmap.Mapping
	blockSize int
	stride    int // blockSize rounded up to MaxAlign
	total     int

	next      []int32
	prev      []int32
	freeHead  int32
	allocHead int32
	freeLen   int
	allocLen  int

	strict   bool
	offHeap  bool
	live     *roaring.Bitmap // strict mode only
	acquirer MemoryAcquirer
	closed   bool

	highWater int
	allocs    uint64
	frees     uint64
	failed    uint64
}

// Option is a configuration option for Pool.
type Option func(*Pool)

// WithStrict enables or disables ownership checks and poisoning,
// overriding the build profile default.
func WithStrict(strict bool) Option {
	return func(p *Pool) {
		p.strict = strict
	}
}

// WithOffHeap backs the pool with an anonymous memory mapping.
func WithOffHeap() Option {
	return func(p *Pool) {
		p.offHeap = true
	}
}

// WithMemoryAcquirer reserves the pool buffer from acquirer until Close.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(p *Pool) {
		p.acquirer = acquirer
	}
}

// WithName sets the name reported in Stats and panics.
func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// New creates a pool of poolSize/blockSize blocks. Any remainder of poolSize
// is not used. Each block occupies blockSize rounded up to MaxAlign, so the
// backing buffer can exceed poolSize by that padding.
func New(poolSize, blockSize int, opts ...Option) (*Pool, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	total := poolSize / blockSize
	if total < 1 {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooSmall, poolSize, blockSize)
	}
	if _, err := conv.IntToInt32(total); err != nil {
		return nil, fmt.Errorf("pool: block index range: %w", err)
	}

	stride := (blockSize + MaxAlign - 1) &^ (MaxAlign - 1)
	size, err := conv.MulInt(total, stride)
	if err != nil {
		return nil, fmt.Errorf("pool: buffer size: %w", err)
	}

	p := &Pool{
		name:      "pool",
		blockSize: blockSize,
		stride:    stride,
		total:     total,
		strict:    checked.Enabled,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.acquirer != nil {
		if err := p.acquirer.AcquireMemory(int64(size)); err != nil {
			return nil, fmt.Errorf("%s: reserve %d bytes: %w", p.name, size, err)
		}
	}

	if p.offHeap {
		mapping, err := mmap.MapAnon(size)
		if err != nil {
			if p.acquirer != nil {
				p.acquirer.ReleaseMemory(int64(size))
			}
			return nil, fmt.Errorf("%s: map anonymous memory: %w", p.name, err)
		}
		p.mapping = mapping
		p.buf = mapping.Bytes()
	} else {
		p.buf = mem.AllocAligned(size)
	}

	p.next = make([]int32, total)
	p.prev = make([]int32, total)
	if p.strict {
		p.live = roaring.New()
	}
	p.Reset()

	return p, nil
}

// Alloc pops a block off the free list. It returns nil when the pool is
// exhausted. The block length equals BlockSize; its contents are undefined
// in fast mode and filled with the clean pattern (0xCD) in strict mode.
func (p *Pool) Alloc() []byte {
	if p.closed || p.freeHead == nilIndex {
		p.failed++
		return nil
	}

	i := p.freeHead
	p.freeHead = p.next[i]
	p.freeLen--

	p.next[i] = p.allocHead
	p.prev[i] = nilIndex
	if p.allocHead != nilIndex {
		p.prev[p.allocHead] = i
	}
	p.allocHead = i
	p.allocLen++

	p.allocs++
	if p.allocLen > p.highWater {
		p.highWater = p.allocLen
	}

	b := p.block(i)
	if p.strict {
		if !mem.Filled(b, mem.DeadByte) {
			panic(fmt.Errorf("%w: %s block %d", ErrUseAfterFree, p.name, i))
		}
		p.live.Add(uint32(i))
		mem.Fill(b, mem.CleanByte)
	}
	return b
}

// Free returns a block obtained from Alloc. Freeing nil is a no-op.
//
// In strict mode a block that was not handed out by this pool panics with
// ErrForeignPointer and a second Free of the same block with ErrDoubleFree.
func (p *Pool) Free(b []byte) {
	if len(b) == 0 || p.closed {
		return
	}

	i := p.index(b)
	if p.strict {
		if !p.live.Contains(uint32(i)) {
			panic(fmt.Errorf("%w: %s block %d", ErrDoubleFree, p.name, i))
		}
		p.live.Remove(uint32(i))
		mem.Fill(p.block(i), mem.DeadByte)
	}

	if prev := p.prev[i]; prev != nilIndex {
		p.next[prev] = p.next[i]
	} else {
		p.allocHead = p.next[i]
	}
	if next := p.next[i]; next != nilIndex {
		p.prev[next] = p.prev[i]
	}
	p.allocLen--

	p.next[i] = p.freeHead
	p.prev[i] = nilIndex
	p.freeHead = i
	p.freeLen++
	p.frees++
}

func (p *Pool) index(b []byte) int32 {
	base := mem.Addr(p.buf)
	addr := mem.Addr(b)
	if !p.strict {
		return int32((addr - base) / uintptr(p.stride)) //nolint:gosec // bounds enforced by slice indexing
	}

	if addr < base || addr >= base+uintptr(len(p.buf)) {
		panic(fmt.Errorf("%w: %s: %#x outside [%#x, %#x)", ErrForeignPointer, p.name, addr, base, base+uintptr(len(p.buf))))
	}
	off := addr - base
	if off%uintptr(p.stride) != 0 {
		panic(fmt.Errorf("%w: %s: %#x is not a block start", ErrForeignPointer, p.name, addr))
	}
	return int32(off / uintptr(p.stride)) //nolint:gosec // checked against pool bounds above
}

func (p *Pool) block(i int32) []byte {
	start := int(i) * p.stride
	end := start + p.blockSize
	return p.buf[start:end:end]
}

// Allocate returns a zeroed *T carved from one block, or nil when the pool is
// exhausted. It panics with ErrBlockTooSmall if T does not fit a block and
// with ErrPointerType if T contains Go pointers.
func Allocate[T any](p *Pool) *T {
	var zero T
	t := mem.TypeOf[T]()
	if size := int(unsafe.Sizeof(zero)); size > p.blockSize {
		panic(fmt.Errorf("%w: %s is %d bytes, block is %d", ErrBlockTooSmall, t, size, p.blockSize))
	}
	if !mem.PointerFree(t) {
		panic(fmt.Errorf("%w: %s", ErrPointerType, t))
	}

	b := p.Alloc()
	if b == nil {
		return nil
	}
	v := (*T)(unsafe.Pointer(&b[0])) //nolint:gosec // unsafe is required for typed block access
	*v = zero
	return v
}

// Deallocate returns the block holding v. A nil v is a no-op.
func Deallocate[T any](p *Pool, v *T) {
	if v == nil {
		return
	}
	p.Free(unsafe.Slice((*byte)(unsafe.Pointer(v)), p.blockSize)) //nolint:gosec // reconstructs the block handed out by Allocate
}

// Reset returns every block to the free list in address order. Blocks that
// are still referenced become free memory; in strict mode they are poisoned.
func (p *Pool) Reset() {
	if p.closed {
		return
	}
	for i := range p.next {
		p.next[i] = int32(i + 1) //nolint:gosec // total fits in int32, checked in New
		p.prev[i] = nilIndex
	}
	p.next[p.total-1] = nilIndex
	p.freeHead = 0
	p.allocHead = nilIndex
	p.freeLen = p.total
	p.allocLen = 0

	if p.strict {
		mem.Fill(p.buf, mem.DeadByte)
		p.live.Clear()
	}
}

// Close releases the backing memory. Alloc returns nil afterwards.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.mapping != nil {
		err = p.mapping.Close()
		p.mapping = nil
	}
	if p.acquirer != nil {
		p.acquirer.ReleaseMemory(int64(p.total * p.stride))
	}
	p.buf = nil
	p.freeHead = nilIndex
	p.allocHead = nilIndex
	p.freeLen = 0
	p.allocLen = 0
	return err
}

// Cap returns the number of blocks.
func (p *Pool) Cap() int { return p.total }

// BlockSize returns the size of one block in bytes.
func (p *Pool) BlockSize() int { return p.blockSize }

// FreeLen returns the number of blocks on the free list.
func (p *Pool) FreeLen() int { return p.freeLen }

// AllocatedLen returns the number of blocks currently handed out.
func (p *Pool) AllocatedLen() int { return p.allocLen }

// Strict reports whether ownership checks and poisoning are enabled.
func (p *Pool) Strict() bool { return p.strict }

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Name:      p.name,
		BlockSize: p.blockSize,
		Blocks:    p.total,
		Free:      p.freeLen,
		Allocated: p.allocLen,
		HighWater: p.highWater,
		Allocs:    p.allocs,
		Frees:     p.frees,
		Failed:    p.failed,
	}
}
