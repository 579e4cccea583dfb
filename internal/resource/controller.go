package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation does not fit the memory budget.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// maxIOBurst bounds the token bucket; larger reads are paid for in chunks.
const maxIOBurst = 1 << 30

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MemoryLimitBytes caps the bytes reserved by arenas, pools and caches.
	MemoryLimitBytes int64

	// IOLimitBytesPerSec caps loader read throughput.
	IOLimitBytesPerSec int64
}

// Stats is a snapshot of the controller counters.
type Stats struct {
	MemoryUsed   int64
	MemoryPeak   int64
	MemoryLimit  int64
	MemoryDenied int64 // Reservations refused by the budget
	IOBytes      int64 // Bytes admitted by AcquireIO
	IOLimit      int64
}

// Controller arbitrates the memory budget and read bandwidth shared by the
// allocators and the loader. A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	budget *semaphore.Weighted // nil when unlimited
	used   atomic.Int64
	peak   atomic.Int64
	denied atomic.Int64

	io      *rate.Limiter // nil when unlimited
	ioBytes atomic.Int64
}

// NewController creates a Controller enforcing cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MemoryLimitBytes > 0 {
		c.budget = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		burst := int(min(cfg.IOLimitBytesPerSec, maxIOBurst))
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), burst)
	}
	return c
}

// AcquireMemory reserves bytes from the budget without blocking. It returns
// ErrMemoryLimitExceeded, wrapped with the current usage, if they do not fit.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.budget != nil && !c.budget.TryAcquire(bytes) {
		c.denied.Add(1)
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.used.Load(), c.cfg.MemoryLimitBytes)
	}

	used := c.used.Add(bytes)
	for {
		peak := c.peak.Load()
		if used <= peak || c.peak.CompareAndSwap(peak, used) {
			break
		}
	}
	return nil
}

// ReleaseMemory returns bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.budget != nil {
		c.budget.Release(bytes)
	}
	c.used.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// MemoryLimit returns the budget in bytes, or 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireIO blocks until bytes of read bandwidth are available or ctx ends.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.io != nil {
		for rest := bytes; rest > 0; {
			n := min(rest, c.io.Burst())
			if err := c.io.WaitN(ctx, n); err != nil {
				return err
			}
			rest -= n
		}
	}
	c.ioBytes.Add(int64(bytes))
	return nil
}

// IOLimit returns the read limit in bytes per second, or 0 if unlimited.
func (c *Controller) IOLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.IOLimitBytesPerSec
}

// Stats returns a snapshot of the counters.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		MemoryUsed:   c.used.Load(),
		MemoryPeak:   c.peak.Load(),
		MemoryLimit:  c.cfg.MemoryLimitBytes,
		MemoryDenied: c.denied.Load(),
		IOBytes:      c.ioBytes.Load(),
		IOLimit:      c.cfg.IOLimitBytesPerSec,
	}
}
