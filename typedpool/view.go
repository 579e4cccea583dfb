package typedpool

import (
	"fmt"
	"iter"
)

// View is a bounds-checked window onto values owned by a Pool.
// The zero View is empty.
type View[T any] struct {
	items []T
	gen   *uint64 // set for strict pools
	at    uint64
}

// Of wraps a slice in a View. It is mostly useful for tests and adapters.
func Of[T any](items []T) View[T] {
	return View[T]{items: items}
}

func (v View[T]) check() {
	if v.gen != nil && *v.gen != v.at {
		panic(ErrStaleView)
	}
}

// At returns a pointer to the i-th value. It panics with ErrOutOfRange if
// i is outside [0, Len()).
func (v View[T]) At(i int) *T {
	v.check()
	if i < 0 || i >= len(v.items) {
		panic(fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, len(v.items)))
	}
	return &v.items[i]
}

// Len returns the number of values in the view.
func (v View[T]) Len() int { return len(v.items) }

// Empty reports whether the view holds no values.
func (v View[T]) Empty() bool { return len(v.items) == 0 }

// Slice returns the values as a slice sharing the pool storage.
func (v View[T]) Slice() []T {
	v.check()
	return v.items
}

// Subset returns the count values starting at begin. It panics with
// ErrOutOfRange if the range does not lie within the view.
func (v View[T]) Subset(begin, count int) View[T] {
	v.check()
	if begin < 0 || count < 0 || begin > len(v.items)-count {
		panic(fmt.Errorf("%w: subset [%d, %d+%d) of len %d", ErrOutOfRange, begin, begin, count, len(v.items)))
	}
	v.items = v.items[begin : begin+count : begin+count]
	return v
}

// All iterates over index and pointer pairs.
func (v View[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		v.check()
		for i := range v.items {
			if !yield(i, &v.items[i]) {
				return
			}
		}
	}
}
