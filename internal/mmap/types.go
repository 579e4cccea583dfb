package mmap

import "errors"

// Advice is a paging hint for a mapped region.
type Advice uint8

const (
	// AdviceNormal clears any previous hint.
	AdviceNormal Advice = iota
	// AdviceSequential suits whole-asset reads from front to back.
	AdviceSequential
	// AdviceWillNeed asks the kernel to start paging the region in.
	AdviceWillNeed
	// AdviceDontNeed lets the kernel drop the resident pages.
	AdviceDontNeed
)

func (a Advice) String() string {
	switch a {
	case AdviceNormal:
		return "normal"
	case AdviceSequential:
		return "sequential"
	case AdviceWillNeed:
		return "willneed"
	case AdviceDontNeed:
		return "dontneed"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned by methods of a closed Mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for a non-positive anonymous size or a file too large to map.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrInvalidOffset is returned by ReadAt for a negative offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
