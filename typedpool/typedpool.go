package typedpool

import (
	"errors"
	"fmt"

	"github.com/hupe1980/enginecore/internal/checked"
)

var (
	// ErrExhausted reports an allocation larger than the remaining capacity.
	ErrExhausted = errors.New("typedpool: capacity exhausted")
	// ErrOutOfRange is the panic value for an out-of-bounds view access.
	ErrOutOfRange = errors.New("typedpool: index out of range")
	// ErrStaleView is the strict-mode panic value for a view used after Clear.
	ErrStaleView = errors.New("typedpool: view used after clear")
)

type options struct {
	strict bool
	name   string
}

// Option is a configuration option for Pool.
type Option func(*options)

// WithStrict enables or disables strict mode, overriding the build profile
// default. Strict pools panic on exhaustion and detect stale views.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithName sets the name used in errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// noCopy may be embedded in structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pool is a fixed-capacity bump allocator for values of one type.
//
// Allocate hands out contiguous spans in order; individual spans are never
// returned, Clear reclaims everything at once. Unlike the byte allocators the
// storage is a regular []T, so T may contain pointers. A Pool must not be
// copied and is not safe for concurrent use.
type Pool[T any] struct {
	_ noCopy

	items []T
	count int
	opts  options
	gen   *uint64
}

// New creates a pool with room for capacity values.
func New[T any](capacity int, opts ...Option) *Pool[T] {
	o := options{
		strict: checked.Enabled,
		name:   "typedpool",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 0 {
		capacity = 0
	}

	return &Pool[T]{
		items: make([]T, capacity),
		opts:  o,
		gen:   new(uint64),
	}
}

// Allocate reserves n contiguous zeroed values and returns a view over them.
//
// If fewer than n values remain, a strict pool panics with ErrExhausted and
// a fast pool returns ErrExhausted without changing its state. A
// non-positive n returns an empty view.
func (p *Pool[T]) Allocate(n int) (View[T], error) {
	if n <= 0 {
		return View[T]{}, nil
	}
	if n > len(p.items)-p.count {
		err := fmt.Errorf("%w: %s: requested %d, %d of %d available",
			ErrExhausted, p.opts.name, n, len(p.items)-p.count, len(p.items))
		if p.opts.strict {
			panic(err)
		}
		return View[T]{}, err
	}

	span := p.items[p.count : p.count+n : p.count+n]
	clear(span)
	p.count += n
	return p.view(span), nil
}

// All returns a view over every value allocated since the last Clear.
func (p *Pool[T]) All() View[T] {
	return p.view(p.items[:p.count:p.count])
}

func (p *Pool[T]) view(items []T) View[T] {
	v := View[T]{items: items}
	if p.opts.strict {
		v.gen = p.gen
		v.at = *p.gen
	}
	return v
}

// Clear resets the pool to empty. Stored values are left in place until
// they are handed out again; in strict mode every outstanding view goes stale.
func (p *Pool[T]) Clear() {
	p.count = 0
	*p.gen++
}

// Cap returns the total capacity.
func (p *Pool[T]) Cap() int { return len(p.items) }

// Len returns the number of values allocated since the last Clear.
func (p *Pool[T]) Len() int { return p.count }

// Available returns the number of values that can still be allocated.
func (p *Pool[T]) Available() int { return len(p.items) - p.count }
