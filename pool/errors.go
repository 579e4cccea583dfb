package pool

import "errors"

var (
	// ErrInvalidBlockSize is returned by New for a non-positive block size.
	ErrInvalidBlockSize = errors.New("pool: block size must be positive")
	// ErrTooSmall is returned by New when the pool cannot hold a single block.
	ErrTooSmall = errors.New("pool: pool size smaller than one block")
	// ErrBlockTooSmall is the panic value when a type does not fit in one block.
	ErrBlockTooSmall = errors.New("pool: type larger than block size")
	// ErrPointerType is the panic value when a typed allocation contains Go pointers.
	ErrPointerType = errors.New("pool: type contains pointers")
	// ErrForeignPointer is the strict-mode panic value for a block not owned by the pool.
	ErrForeignPointer = errors.New("pool: pointer not owned by pool")
	// ErrDoubleFree is the strict-mode panic value for freeing a block twice.
	ErrDoubleFree = errors.New("pool: double free")
	// ErrUseAfterFree is the strict-mode panic value when a free block was written to.
	ErrUseAfterFree = errors.New("pool: write to freed block")
)
