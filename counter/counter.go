package counter

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
)

// ErrReleased is the panic value when cloning a handle whose shared state was
// already destroyed by its last Release.
var ErrReleased = errors.New("counter: clone of released counter")

// spinsPerCtxCheck bounds how often WaitForZeroContext polls ctx.Err.
const spinsPerCtxCheck = 64

type state struct {
	value atomic.Uint32
	refs  atomic.Uint32
}

// Counter is a handle to a shared atomic counter.
//
// The value is the logical count being tracked (typically in-flight async
// operations). The handle count is a separate lifetime reference count:
// Clone, Move, Assign and Release change how many handles share the state,
// never the value.
//
// The zero Counter is empty: every operation is a no-op returning 0.
// A Counter must be obtained from New, Clone or Move, never by plain
// assignment when lifetime tracking matters.
type Counter struct {
	s *state
}

// New returns a handle to fresh shared state with value 0 and one reference.
func New() Counter {
	s := &state{}
	s.refs.Store(1)
	return Counter{s: s}
}

// Clone returns a new handle sharing c's state and adds a reference.
// Cloning an empty handle returns an empty handle.
func (c Counter) Clone() Counter {
	if c.s == nil {
		return Counter{}
	}
	for {
		refs := c.s.refs.Load()
		if refs == 0 {
			panic(ErrReleased)
		}
		if c.s.refs.CompareAndSwap(refs, refs+1) {
			return Counter{s: c.s}
		}
	}
}

// Move transfers the reference held by c to the returned handle.
// c is left empty; the reference count is unchanged.
func (c *Counter) Move() Counter {
	moved := Counter{s: c.s}
	c.s = nil
	return moved
}

// Assign makes c share other's state: c's previous reference is released and
// a new one to other's state is taken. Assigning a handle to itself is a no-op.
func (c *Counter) Assign(other Counter) {
	if c.s == other.s {
		return
	}
	next := other.Clone()
	c.Release()
	c.s = next.s
}

// Release drops c's reference and leaves c empty. The shared state is
// destroyed exactly once, by the release that takes the count to zero.
func (c *Counter) Release() {
	s := c.s
	if s == nil {
		return
	}
	c.s = nil
	if s.refs.Add(^uint32(0)) == 0 {
		// Last owner: no other handle can reach s any more. Zeroing the value
		// makes a stray raw pointer observe a settled counter, not a live one.
		s.value.Store(0)
	}
}

// Valid reports whether c refers to shared state.
func (c Counter) Valid() bool {
	return c.s != nil
}

// Refs returns the number of handles sharing c's state (0 for an empty handle).
func (c Counter) Refs() uint32 {
	if c.s == nil {
		return 0
	}
	return c.s.refs.Load()
}

// Increment adds one and returns the value before the increment.
func (c Counter) Increment() uint32 {
	if c.s == nil {
		return 0
	}
	return c.s.value.Add(1) - 1
}

// Decrement subtracts one and returns the value before the decrement.
// Decrementing past zero wraps around, like the unsigned counter it models;
// callers must pair every Decrement with an earlier Increment.
func (c Counter) Decrement() uint32 {
	if c.s == nil {
		return 0
	}
	return c.s.value.Add(^uint32(0)) + 1
}

// Get returns the current value.
func (c Counter) Get() uint32 {
	if c.s == nil {
		return 0
	}
	return c.s.value.Load()
}

// WaitForZero blocks until the value reaches zero, yielding the processor
// between polls. It is a spin barrier meant for short waits on in-flight work.
func (c Counter) WaitForZero() {
	if c.s == nil {
		return
	}
	for c.s.value.Load() > 0 {
		runtime.Gosched()
	}
}

// WaitForZeroContext is WaitForZero with an escape hatch: it returns ctx.Err()
// if ctx is done before the value reaches zero.
func (c Counter) WaitForZeroContext(ctx context.Context) error {
	if c.s == nil {
		return nil
	}
	for spins := 0; c.s.value.Load() > 0; spins++ {
		if spins%spinsPerCtxCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		runtime.Gosched()
	}
	return nil
}
