package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginecore/counter"
	"github.com/hupe1980/enginecore/internal/fs"
	"github.com/hupe1980/enginecore/testutil"
)

// gate is a Source that blocks every read until released or canceled.
type gate struct {
	started chan string
	release chan struct{}
}

func newGate() *gate {
	return &gate{
		started: make(chan string, 64),
		release: make(chan struct{}),
	}
}

func (g *gate) ReadFile(ctx context.Context, path string) ([]byte, error) {
	select {
	case g.started <- path:
	default:
	}
	select {
	case <-g.release:
		return []byte(path), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type collector struct {
	mu      sync.Mutex
	results map[string]Result
}

func newCollector() *collector {
	return &collector{results: make(map[string]Result)}
}

func (c *collector) add(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[res.Path] = res
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *collector) get(path string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[path]
}

func newLoader(t *testing.T, cfg Config, opts ...Option) *Loader {
	t.Helper()
	l, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLoader_LoadsEveryFileOnce(t *testing.T) {
	dir := t.TempDir()
	paths := testutil.WriteAssets(t, dir, 1000)

	l := newLoader(t, Config{Workers: 4, Source: NewFileSource(dir)})

	var calls atomic.Int64
	c := newCollector()
	pending := counter.New()
	defer pending.Release()

	for _, p := range paths {
		pending.Increment()
		h := pending.Clone()
		require.NoError(t, l.Submit(context.Background(), Request{
			Path: p,
			Callback: func(res Result) {
				defer h.Release()
				calls.Add(1)
				c.add(res)
				h.Decrement()
			},
		}))
	}

	require.NoError(t, pending.WaitForZeroContext(context.Background()))
	assert.Equal(t, int64(1000), calls.Load())
	require.Equal(t, 1000, c.len())
	for _, p := range paths {
		res := c.get(p)
		assert.True(t, res.Success, p)
		assert.Equal(t, []byte(p), res.Data)
		assert.NoError(t, res.Err)
	}

	require.NoError(t, l.Close())
	st := l.Stats()
	assert.Equal(t, uint64(1000), st.Submitted)
	assert.Equal(t, uint64(1000), st.Completed)
	assert.Zero(t, st.Failed)
	assert.Zero(t, st.Pending)
}

func TestLoader_MissingFile(t *testing.T) {
	l := newLoader(t, Config{Source: NewFileSource(t.TempDir())})

	done := make(chan Result, 1)
	require.NoError(t, l.Submit(context.Background(), Request{
		Path:     "does/not/exist.bin",
		Callback: func(res Result) { done <- res },
	}))

	res := <-done
	assert.False(t, res.Success)
	assert.Nil(t, res.Data)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
	assert.Equal(t, "does/not/exist.bin", res.Path)
}

func TestLoader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "empty", nil)
	l := newLoader(t, Config{Source: NewFileSource(dir)})

	c := &Completion{}
	require.NoError(t, l.Submit(context.Background(), c.Request("empty")))
	require.Eventually(t, c.Done, 5*time.Second, time.Millisecond)

	require.NoError(t, c.Err)
	assert.NotNil(t, c.Data)
	assert.Empty(t, c.Data)
}

func TestLoader_FlagMode(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteAssets(t, dir, 1)
	l := newLoader(t, Config{Source: NewFileSource(dir)})

	t.Run("completion", func(t *testing.T) {
		ok, missing := &Completion{}, &Completion{}
		require.NoError(t, l.Submit(context.Background(), ok.Request("asset-0000.bin")))
		require.NoError(t, l.Submit(context.Background(), missing.Request("missing.bin")))

		require.Eventually(t, func() bool { return ok.Done() && missing.Done() }, 5*time.Second, time.Millisecond)
		assert.Equal(t, []byte("asset-0000.bin"), ok.Data)
		assert.NoError(t, ok.Err)
		assert.Nil(t, missing.Data)
		assert.ErrorIs(t, missing.Err, os.ErrNotExist)
	})

	t.Run("done only", func(t *testing.T) {
		var done atomic.Bool
		require.True(t, l.TrySubmit(Request{Path: "asset-0000.bin", Done: &done}))
		require.Eventually(t, done.Load, 5*time.Second, time.Millisecond)
	})
}

func TestLoader_InvalidRequest(t *testing.T) {
	l := newLoader(t, Config{})

	tests := []struct {
		name string
		req  Request
	}{
		{"no path", Request{Callback: func(Result) {}}},
		{"no target", Request{Path: "a.bin"}},
		{"out without done", Request{Path: "a.bin", Out: new([]byte)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, l.Submit(context.Background(), tt.req), ErrInvalidRequest)
			assert.False(t, l.TrySubmit(tt.req))
		})
	}
	assert.Zero(t, l.Stats().Submitted)
}

func TestLoader_TrySubmitFullQueue(t *testing.T) {
	g := newGate()
	l := newLoader(t, Config{Workers: 1, QueueCapacity: 2, Source: g})

	var completed atomic.Int64
	cb := func(Result) { completed.Add(1) }

	require.NoError(t, l.Submit(context.Background(), Request{Path: "first", Callback: cb}))
	<-g.started // the only worker is now busy

	assert.True(t, l.TrySubmit(Request{Path: "second", Callback: cb}))
	assert.True(t, l.TrySubmit(Request{Path: "third", Callback: cb}))
	assert.False(t, l.TrySubmit(Request{Path: "fourth", Callback: cb}), "queue is full")
	assert.Equal(t, 2, l.Pending())
	assert.Equal(t, uint64(1), l.Stats().Rejected)

	close(g.release)
	require.NoError(t, l.Close())
	assert.Equal(t, int64(3), completed.Load(), "rejected request never completes")
}

func TestLoader_SubmitBlocksUntilSpace(t *testing.T) {
	g := newGate()
	l := newLoader(t, Config{Workers: 1, QueueCapacity: 1, Source: g})
	cb := func(Result) {}

	require.NoError(t, l.Submit(context.Background(), Request{Path: "busy", Callback: cb}))
	<-g.started
	require.True(t, l.TrySubmit(Request{Path: "queued", Callback: cb}))

	t.Run("context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, l.Submit(ctx, Request{Path: "late", Callback: cb}), context.DeadlineExceeded)
	})

	t.Run("released by worker", func(t *testing.T) {
		errCh := make(chan error, 1)
		go func() {
			errCh <- l.Submit(context.Background(), Request{Path: "waiting", Callback: cb})
		}()

		select {
		case <-errCh:
			t.Fatal("Submit returned while the queue was full")
		case <-time.After(20 * time.Millisecond):
		}

		close(g.release)
		require.NoError(t, <-errCh)
	})
}

func TestLoader_CloseReleasesBlockedSubmit(t *testing.T) {
	g := newGate()
	l, err := New(Config{Workers: 1, QueueCapacity: 1, Source: g})
	require.NoError(t, err)
	cb := func(Result) {}

	require.NoError(t, l.Submit(context.Background(), Request{Path: "busy", Callback: cb}))
	<-g.started
	require.True(t, l.TrySubmit(Request{Path: "queued", Callback: cb}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Submit(context.Background(), Request{Path: "blocked", Callback: cb})
	}()
	time.Sleep(10 * time.Millisecond)

	closeCh := make(chan error, 1)
	go func() { closeCh <- l.Close() }()

	assert.ErrorIs(t, <-errCh, ErrClosed)
	close(g.release)
	require.NoError(t, <-closeCh)
	assert.Equal(t, uint64(2), l.Stats().Completed)
}

func TestLoader_ShutdownDrain(t *testing.T) {
	g := newGate()
	l, err := New(Config{Workers: 1, Source: g})
	require.NoError(t, err)

	c := newCollector()
	for i := range 4 {
		require.NoError(t, l.Submit(context.Background(), Request{Path: fmt.Sprintf("p%d", i), Callback: c.add}))
	}
	<-g.started

	closed := make(chan error, 1)
	go func() { closed <- l.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned before the queue was drained")
	case <-time.After(20 * time.Millisecond):
	}

	close(g.release)
	require.NoError(t, <-closed)

	require.Equal(t, 4, c.len())
	for i := range 4 {
		res := c.get(fmt.Sprintf("p%d", i))
		assert.True(t, res.Success)
	}
	assert.Zero(t, l.Stats().Aborted)
}

func TestLoader_ShutdownAbort(t *testing.T) {
	g := newGate()
	l, err := New(Config{Workers: 1, Source: g, Shutdown: ShutdownAbort})
	require.NoError(t, err)

	c := newCollector()
	for i := range 4 {
		require.NoError(t, l.Submit(context.Background(), Request{Path: fmt.Sprintf("p%d", i), Callback: c.add}))
	}
	<-g.started

	require.NoError(t, l.Close())

	require.Equal(t, 4, c.len(), "every accepted request completes")
	first := c.get("p0")
	assert.False(t, first.Success)
	assert.ErrorIs(t, first.Err, context.Canceled, "in-flight read is canceled")
	for i := 1; i < 4; i++ {
		res := c.get(fmt.Sprintf("p%d", i))
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, ErrClosed)
	}

	st := l.Stats()
	assert.Equal(t, uint64(3), st.Aborted)
	assert.Equal(t, uint64(4), st.Failed)
}

func TestLoader_SubmitAfterClose(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "Close is idempotent")

	req := Request{Path: "a.bin", Callback: func(Result) { t.Error("closed loader completed a request") }}
	assert.ErrorIs(t, l.Submit(context.Background(), req), ErrClosed)
	assert.False(t, l.TrySubmit(req))
	assert.ErrorIs(t, l.LoadAll(context.Background(), []string{"a.bin"}, nil), ErrClosed)
}

func TestLoader_CallbackPanicKeepsWorker(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteAssets(t, dir, 2)

	var logs bytes.Buffer
	metrics := &BasicMetricsCollector{}
	l, err := New(Config{Workers: 1, Source: NewFileSource(dir)},
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithMetrics(metrics),
	)
	require.NoError(t, err)

	require.NoError(t, l.Submit(context.Background(), Request{
		Path:     "asset-0000.bin",
		Callback: func(Result) { panic("boom") },
	}))
	c := &Completion{}
	require.NoError(t, l.Submit(context.Background(), c.Request("asset-0001.bin")))
	require.Eventually(t, c.Done, 5*time.Second, time.Millisecond)
	require.NoError(t, l.Close())

	assert.Equal(t, []byte("asset-0001.bin"), c.Data)
	assert.Equal(t, uint64(1), l.Stats().Panics)
	assert.Equal(t, int64(1), metrics.GetStats().CallbackPanics)
	assert.Contains(t, logs.String(), "load callback panicked")
}

func TestLoader_FaultInjection(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteAssets(t, dir, 3)

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("asset-0001.bin", fs.Fault{Fail: fs.OpOpen})
	faulty.AddRule("asset-0002.bin", fs.Fault{Fail: fs.OpRead})

	l := newLoader(t, Config{Source: newFileSourceFS(faulty, dir)})
	c := newCollector()
	err := l.LoadAll(context.Background(), []string{"asset-0000.bin", "asset-0001.bin", "asset-0002.bin"}, c.add)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.True(t, c.get("asset-0000.bin").Success)
	assert.ErrorIs(t, c.get("asset-0001.bin").Err, fs.ErrInjected)
	assert.ErrorIs(t, c.get("asset-0002.bin").Err, fs.ErrInjected)
	assert.Equal(t, 3, faulty.Opens())
}

func TestLoader_CPUAffinity(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteAssets(t, dir, 8)

	l := newLoader(t, Config{Workers: 2, CPUAffinity: []int{0}, Source: NewFileSource(dir)})
	require.NoError(t, l.LoadAll(context.Background(), []string{"asset-0000.bin", "asset-0007.bin"}, nil))
}

type countingLimiter struct {
	bytes atomic.Int64
	err   error
}

func (c *countingLimiter) AcquireIO(_ context.Context, n int) error {
	c.bytes.Add(int64(n))
	return c.err
}

func TestLoader_IOLimiter(t *testing.T) {
	dir := t.TempDir()
	paths := testutil.WriteAssets(t, dir, 10)

	t.Run("accounts bytes", func(t *testing.T) {
		limiter := &countingLimiter{}
		l := newLoader(t, Config{Workers: 2, Source: NewFileSource(dir)}, WithIOLimiter(limiter))
		require.NoError(t, l.LoadAll(context.Background(), paths, nil))
		assert.Equal(t, int64(10*len("asset-0000.bin")), limiter.bytes.Load())
		assert.Equal(t, uint64(limiter.bytes.Load()), l.Stats().BytesRead)
	})

	t.Run("limiter error fails load", func(t *testing.T) {
		limiter := &countingLimiter{err: errors.New("throttled")}
		l := newLoader(t, Config{Source: NewFileSource(dir)}, WithIOLimiter(limiter))
		err := l.LoadAll(context.Background(), paths[:1], nil)
		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("rate from config", func(t *testing.T) {
		l := newLoader(t, Config{Source: NewFileSource(dir), IOBytesPerSec: 1 << 20})
		require.NotNil(t, l.io)
		require.NoError(t, l.LoadAll(context.Background(), paths, nil))
	})
}

func TestLoader_BlobSource(t *testing.T) {
	store := newMemoryStore(t, map[string]string{
		"textures/a.ktx": "AAAA",
		"textures/b.ktx": "BB",
	})
	l := newLoader(t, Config{Source: NewBlobSource(store)})

	c := newCollector()
	require.NoError(t, l.LoadAll(context.Background(), []string{"textures/a.ktx", "textures/b.ktx"}, c.add))
	assert.Equal(t, []byte("AAAA"), c.get("textures/a.ktx").Data)
	assert.Equal(t, []byte("BB"), c.get("textures/b.ktx").Data)

	err := l.LoadAll(context.Background(), []string{"textures/missing.ktx"}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Metrics(t *testing.T) {
	dir := t.TempDir()
	paths := testutil.WriteAssets(t, dir, 5)

	metrics := &BasicMetricsCollector{}
	l := newLoader(t, Config{Source: NewFileSource(dir)}, WithMetrics(metrics))

	err := l.LoadAll(context.Background(), append(paths, "missing.bin"), nil)
	require.Error(t, err)

	st := metrics.GetStats()
	assert.Equal(t, int64(6), st.SubmitCount)
	assert.Equal(t, int64(6), st.LoadCount)
	assert.Equal(t, int64(1), st.LoadErrors)
	assert.Equal(t, int64(5*len("asset-0000.bin")), st.LoadBytes)
	assert.GreaterOrEqual(t, st.LoadAvgNanos, int64(0))
}

func TestLoadAll_StopsOnSubmitError(t *testing.T) {
	g := newGate()
	l := newLoader(t, Config{Workers: 1, QueueCapacity: 1, Source: g})

	ctx, cancel := context.WithCancel(context.Background())
	var completed atomic.Int64
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.LoadAll(ctx, []string{"a", "b", "c", "d"}, func(Result) { completed.Add(1) })
	}()

	<-g.started
	time.Sleep(10 * time.Millisecond) // "b" queued, "c" blocked in Submit
	cancel()
	close(g.release)

	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(2), completed.Load(), "accepted requests are awaited")
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, DefaultQueueCapacity, cfg.QueueCapacity)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultMaxDecompressedSize, cfg.MaxDecompressedSize)
	assert.NotNil(t, cfg.Source)
	assert.Equal(t, ShutdownDrain, cfg.Shutdown)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative cpu", Config{CPUAffinity: []int{0, -1}}},
		{"negative io rate", Config{IOBytesPerSec: -1}},
		{"unknown policy", Config{Shutdown: ShutdownPolicy(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	assert.Equal(t, "drain", ShutdownDrain.String())
	assert.Equal(t, "abort", ShutdownAbort.String())
	assert.Equal(t, "ShutdownPolicy(9)", ShutdownPolicy(9).String())
}

func BenchmarkLoader_Submit(b *testing.B) {
	l, err := New(Config{Workers: 4, Source: SourceFunc(func(context.Context, string) ([]byte, error) {
		return []byte{}, nil
	})})
	require.NoError(b, err)
	defer l.Close()

	pending := counter.New()
	defer pending.Release()
	cb := func(Result) { pending.Decrement() }

	b.ReportAllocs()
	for b.Loop() {
		pending.Increment()
		if err := l.Submit(context.Background(), Request{Path: "x", Callback: cb}); err != nil {
			b.Fatal(err)
		}
	}
	pending.WaitForZero()
}
