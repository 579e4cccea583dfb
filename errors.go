package enginecore

import (
	"errors"

	"github.com/hupe1980/enginecore/internal/resource"
)

var (
	// ErrClosed is returned by Core methods after Close.
	ErrClosed = errors.New("enginecore: closed")

	// ErrInvalidOption is returned by New for an unusable option value.
	ErrInvalidOption = errors.New("enginecore: invalid option")

	// ErrMemoryLimitExceeded is returned when an allocator does not fit the
	// remaining memory budget.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)
