package enginecore

import (
	"github.com/hupe1980/enginecore/loader"
)

// DefaultFrameArenaSize is the capacity of the per-frame arena (4 MiB).
const DefaultFrameArenaSize = 4 << 20

type options struct {
	memoryLimit    int64
	ioLimit        int64
	frameArenaSize int
	strict         *bool
	offHeap        bool
	loaderConfig   loader.Config
	source         loader.Source
	logger         *Logger
	metrics        MetricsCollector
}

// Option configures a Core.
type Option func(*options)

// WithMemoryLimit caps the bytes reserved by the frame arena and by every
// allocator created through the Core. 0 tracks usage without a limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit caps the read throughput of the file loader in bytes per second.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithFrameArenaSize sets the capacity of the frame arena.
func WithFrameArenaSize(size int) Option {
	return func(o *options) {
		o.frameArenaSize = size
	}
}

// WithStrict forces strict (checked) or fast allocators regardless of the
// build profile.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = &strict
	}
}

// WithOffHeap backs allocators with anonymous mappings outside the Go heap.
func WithOffHeap(offHeap bool) Option {
	return func(o *options) {
		o.offHeap = offHeap
	}
}

// WithLoaderConfig sets the file loader configuration. Its Source and
// IOBytesPerSec apply unless WithSource or WithIOLimit give a value; the IO
// limit is enforced by the shared resource controller either way.
func WithLoaderConfig(cfg loader.Config) Option {
	return func(o *options) {
		o.loaderConfig = cfg
	}
}

// WithSource sets where the loader reads assets from. Default: local files.
func WithSource(src loader.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithLogger sets the logger. If nil is passed, NoopLogger is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector for the loader and the frame loop.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

func defaultOptions() options {
	return options{
		frameArenaSize: DefaultFrameArenaSize,
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
	}
}
