package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/enginecore/internal/queue"
	"github.com/hupe1980/enginecore/internal/resource"
)

// Loader reads files on a fixed set of worker goroutines.
//
// Requests go through a bounded MPMC queue. Workers poll it and sleep for
// PollInterval when it is empty. Every accepted request completes exactly
// once, on a worker goroutine, so callbacks must be safe to run concurrently
// with the submitter.
type Loader struct {
	cfg     Config
	queue   *queue.Bounded[Request]
	logger  *slog.Logger
	metrics MetricsCollector
	io      IOLimiter
	decomp  *Decompressor

	ctx    context.Context
	cancel context.CancelFunc

	// stopCh releases blocked submitters; drainCh tells workers that no
	// further request can be enqueued.
	stopCh   chan struct{}
	drainCh  chan struct{}
	closed   atomic.Bool
	submitMu sync.RWMutex
	workers  errgroup.Group

	submitted atomic.Uint64
	rejected  atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	aborted   atomic.Uint64
	bytesRead atomic.Uint64
	panics    atomic.Uint64
}

// Stats is a snapshot of loader counters.
type Stats struct {
	Workers   int
	Pending   int
	Submitted uint64
	Rejected  uint64 // TrySubmit calls that found the queue full
	Completed uint64 // Every delivered result
	Failed    uint64 // Results with Success=false, aborted ones included
	Aborted   uint64
	BytesRead uint64
	Panics    uint64 // Recovered callback panics
}

// New starts a loader with cfg.Workers workers.
func New(cfg Config, opts ...Option) (*Loader, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		cfg:     cfg,
		queue:   queue.NewBounded[Request](cfg.QueueCapacity),
		decomp:  NewDecompressor(cfg.MaxDecompressedSize),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: NoopMetricsCollector{},
		ctx:     ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
		drainCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.io == nil && cfg.IOBytesPerSec > 0 {
		l.io = resource.NewController(resource.Config{IOLimitBytesPerSec: cfg.IOBytesPerSec})
	}

	for i := range cfg.Workers {
		l.workers.Go(func() error {
			l.worker(i)
			return nil
		})
	}

	l.logger.Debug("loader started",
		"workers", cfg.Workers,
		"queue_capacity", cfg.QueueCapacity,
		"affinity", cfg.CPUAffinity,
	)
	return l, nil
}

// Submit enqueues req, blocking while the queue is full.
// It returns ErrClosed after Close, ctx.Err() if ctx ends first, and
// ErrInvalidRequest for a request without path or completion target.
func (l *Loader) Submit(ctx context.Context, req Request) error {
	if !req.valid() {
		return ErrInvalidRequest
	}

	l.submitMu.RLock()
	defer l.submitMu.RUnlock()

	if l.closed.Load() {
		return ErrClosed
	}

	if err := l.queue.Push(ctx, req, l.stopCh); err != nil {
		l.metrics.RecordSubmit(false)
		if errors.Is(err, queue.ErrStopped) {
			return ErrClosed
		}
		return err
	}
	l.submitted.Add(1)
	l.metrics.RecordSubmit(true)
	return nil
}

// TrySubmit enqueues req without blocking. It returns false if the queue is
// full, the loader is closed or the request is invalid; the request then
// never completes.
func (l *Loader) TrySubmit(req Request) bool {
	if !req.valid() {
		return false
	}

	l.submitMu.RLock()
	defer l.submitMu.RUnlock()

	if l.closed.Load() {
		return false
	}
	if !l.queue.TryPush(req) {
		l.rejected.Add(1)
		l.metrics.RecordSubmit(false)
		return false
	}
	l.submitted.Add(1)
	l.metrics.RecordSubmit(true)
	return true
}

// Pending returns the number of queued requests not yet picked up by a worker.
func (l *Loader) Pending() int {
	return l.queue.Len()
}

// Stats returns a snapshot of the loader counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Workers:   l.cfg.Workers,
		Pending:   l.queue.Len(),
		Submitted: l.submitted.Load(),
		Rejected:  l.rejected.Load(),
		Completed: l.completed.Load(),
		Failed:    l.failed.Load(),
		Aborted:   l.aborted.Load(),
		BytesRead: l.bytesRead.Load(),
		Panics:    l.panics.Load(),
	}
}

// Close stops admission, finishes or aborts the queued requests according to
// Config.Shutdown and waits for every worker to exit. It is idempotent.
func (l *Loader) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return l.workers.Wait()
	}

	close(l.stopCh)
	if l.cfg.Shutdown == ShutdownAbort {
		l.cancel()
	}

	// Wait for in-flight submitters; after this nothing can be pushed.
	l.submitMu.Lock()
	close(l.drainCh)
	l.submitMu.Unlock()

	err := l.workers.Wait()
	l.cancel()

	st := l.Stats()
	l.logger.Info("loader closed",
		"policy", l.cfg.Shutdown.String(),
		"completed", st.Completed,
		"failed", st.Failed,
		"aborted", st.Aborted,
	)
	return err
}

func (l *Loader) worker(id int) {
	if len(l.cfg.CPUAffinity) > 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		cpu := l.cfg.CPUAffinity[id%len(l.cfg.CPUAffinity)]
		if err := setAffinity(cpu); err != nil {
			l.logger.Warn("loader worker affinity failed", "worker", id, "cpu", cpu, "error", err)
		}
	}

	timer := time.NewTimer(l.cfg.PollInterval)
	defer timer.Stop()

	for {
		if req, ok := l.queue.TryPop(); ok {
			l.process(req)
			continue
		}

		timer.Reset(l.cfg.PollInterval)
		select {
		case <-l.drainCh:
			l.drain()
			return
		case <-timer.C:
		}
	}
}

// drain empties the queue after admission has stopped.
func (l *Loader) drain() {
	for {
		req, ok := l.queue.TryPop()
		if !ok {
			return
		}
		if l.cfg.Shutdown == ShutdownAbort {
			l.aborted.Add(1)
			l.complete(req, Result{Path: req.Path, Err: ErrClosed})
			continue
		}
		l.process(req)
	}
}

func (l *Loader) process(req Request) {
	if l.cfg.Shutdown == ShutdownAbort && l.ctx.Err() != nil {
		l.aborted.Add(1)
		l.complete(req, Result{Path: req.Path, Err: ErrClosed})
		return
	}

	start := time.Now()
	data, err := l.load(req.Path)
	l.metrics.RecordLoad(len(data), time.Since(start), err)

	res := Result{Path: req.Path}
	if err != nil {
		res.Err = err
		l.logger.Debug("load failed", "path", req.Path, "error", err)
	} else {
		res.Data = data
		res.Success = true
		l.bytesRead.Add(uint64(len(data)))
	}
	l.complete(req, res)
}

func (l *Loader) load(path string) ([]byte, error) {
	data, err := l.cfg.Source.ReadFile(l.ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	if l.io != nil {
		if err := l.io.AcquireIO(l.ctx, len(data)); err != nil {
			return nil, fmt.Errorf("loader: throttle %s: %w", path, err)
		}
	}

	if l.cfg.Decompress {
		data, _, err = l.decomp.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("loader: decompress %s: %w", path, err)
		}
	}
	return data, nil
}

// complete delivers res exactly once. A panicking callback is logged and
// does not take the worker down.
func (l *Loader) complete(req Request, res Result) {
	l.completed.Add(1)
	if !res.Success {
		l.failed.Add(1)
	}

	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.metrics.RecordCallbackPanic()
			l.logger.Error("load callback panicked", "path", req.Path, "panic", r)
		}
	}()

	if req.Callback != nil {
		req.Callback(res)
		return
	}

	if req.Out != nil {
		*req.Out = res.Data
	}
	if req.Err != nil {
		*req.Err = res.Err
	}
	req.Done.Store(true)
}
