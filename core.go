package enginecore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/enginecore/arena"
	"github.com/hupe1980/enginecore/internal/resource"
	"github.com/hupe1980/enginecore/loader"
	"github.com/hupe1980/enginecore/pool"
)

// Core bundles the per-frame arena, the asset loader and the memory budget
// they share.
//
// The frame arena belongs to the goroutine that drives the frame loop.
// Loader methods are safe for concurrent use.
type Core struct {
	opts   options
	res    *resource.Controller
	frame  *arena.Arena
	loader *loader.Loader
	source loader.Source
	logger *Logger

	frames    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates a Core. The frame arena is reserved from the memory budget up
// front; New fails if it does not fit.
func New(optFns ...Option) (*Core, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.memoryLimit < 0 {
		return nil, fmt.Errorf("%w: negative memory limit", ErrInvalidOption)
	}
	if opts.ioLimit < 0 {
		return nil, fmt.Errorf("%w: negative IO limit", ErrInvalidOption)
	}
	if opts.frameArenaSize <= 0 {
		return nil, fmt.Errorf("%w: frame arena size %d", ErrInvalidOption, opts.frameArenaSize)
	}

	cfg := opts.loaderConfig
	if opts.source != nil {
		cfg.Source = opts.source
	}
	if cfg.Source == nil {
		cfg.Source = loader.NewFileSource("")
	}
	if opts.ioLimit == 0 {
		if cfg.IOBytesPerSec < 0 {
			return nil, fmt.Errorf("%w: negative loader IO limit", ErrInvalidOption)
		}
		opts.ioLimit = cfg.IOBytesPerSec
	}
	// The shared controller does the throttling.
	cfg.IOBytesPerSec = 0

	c := &Core{
		opts:   opts,
		logger: opts.logger,
		res: resource.NewController(resource.Config{
			MemoryLimitBytes:   opts.memoryLimit,
			IOLimitBytesPerSec: opts.ioLimit,
		}),
	}

	frame, err := arena.New(opts.frameArenaSize, c.arenaOptions("frame")...)
	if err != nil {
		return nil, fmt.Errorf("enginecore: frame arena: %w", err)
	}
	c.frame = frame

	c.source = cfg.Source

	loaderOpts := []loader.Option{
		loader.WithLogger(c.logger.WithComponent("loader").Logger),
		loader.WithMetrics(opts.metrics),
	}
	if opts.ioLimit > 0 {
		loaderOpts = append(loaderOpts, loader.WithIOLimiter(c.res))
	}

	l, err := loader.New(cfg, loaderOpts...)
	if err != nil {
		_ = frame.Free()
		return nil, fmt.Errorf("enginecore: loader: %w", err)
	}
	c.loader = l

	c.logger.Debug("core started",
		"frame_arena", opts.frameArenaSize,
		"memory_limit", opts.memoryLimit,
		"io_limit", opts.ioLimit,
	)
	return c, nil
}

func (c *Core) arenaOptions(name string) []arena.Option {
	opts := []arena.Option{
		arena.WithName(name),
		arena.WithMemoryAcquirer(c.res),
	}
	if c.opts.strict != nil {
		opts = append(opts, arena.WithStrict(*c.opts.strict))
	}
	if c.opts.offHeap {
		opts = append(opts, arena.WithOffHeap())
	}
	return opts
}

// FrameArena returns the arena that EndFrame resets.
func (c *Core) FrameArena() *arena.Arena {
	return c.frame
}

// Loader returns the asset loader.
func (c *Core) Loader() *loader.Loader {
	return c.loader
}

// NewArena creates an arena whose capacity counts against the memory budget.
// The caller owns it and must Free it.
func (c *Core) NewArena(name string, size int) (*arena.Arena, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return arena.New(size, c.arenaOptions(name)...)
}

// NewPool creates a fixed-block pool whose memory counts against the memory
// budget. The caller owns it and must Close it.
func (c *Core) NewPool(name string, poolSize, blockSize int) (*pool.Pool, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	opts := []pool.Option{
		pool.WithName(name),
		pool.WithMemoryAcquirer(c.res),
	}
	if c.opts.strict != nil {
		opts = append(opts, pool.WithStrict(*c.opts.strict))
	}
	if c.opts.offHeap {
		opts = append(opts, pool.WithOffHeap())
	}
	return pool.New(poolSize, blockSize, opts...)
}

// EndFrame records the frame arena usage and resets the arena. Everything
// allocated from it during the frame is dead afterwards.
func (c *Core) EndFrame() error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.opts.metrics.RecordFrame(c.frame.Used(), c.frame.Cap())
	c.frame.Reset()
	c.frames.Add(1)
	return nil
}

// Frames returns the number of completed frames.
func (c *Core) Frames() uint64 {
	return c.frames.Load()
}

// Preload reads the manifest at name from the loader source and loads every
// asset it lists. fn, if not nil, receives each result on a loader worker.
func (c *Core) Preload(ctx context.Context, name string, fn func(loader.Result)) error {
	if c.closed.Load() {
		return ErrClosed
	}

	m, err := loader.ReadManifest(ctx, c.source, name)
	if err != nil {
		c.logger.LogPreload(ctx, name, 0, 0, err)
		return err
	}

	var failed atomic.Int64
	err = c.loader.LoadManifest(ctx, m, func(res loader.Result) {
		if !res.Success {
			failed.Add(1)
		}
		c.logger.LogLoad(ctx, res)
		if fn != nil {
			fn(res)
		}
	})
	c.logger.LogPreload(ctx, name, len(m.Assets), int(failed.Load()), err)
	return err
}

// MemoryUsage returns the bytes currently reserved from the memory budget.
func (c *Core) MemoryUsage() int64 {
	return c.res.MemoryUsage()
}

// MemoryPeak returns the highest MemoryUsage seen so far.
func (c *Core) MemoryPeak() int64 {
	return c.res.Stats().MemoryPeak
}

// MemoryLimit returns the memory budget (0 if unlimited).
func (c *Core) MemoryLimit() int64 {
	return c.res.MemoryLimit()
}

// Close shuts the loader down according to its shutdown policy and frees the
// frame arena. It is idempotent.
func (c *Core) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = errors.Join(c.loader.Close(), c.frame.Free())
		c.logger.LogShutdown(context.Background(), c.loader.Stats(), c.frames.Load(), c.closeErr)
	})
	return c.closeErr
}
