package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ShutdownPolicy decides what Close does with requests still in the queue.
type ShutdownPolicy uint8

const (
	// ShutdownDrain loads every queued request before the workers exit.
	ShutdownDrain ShutdownPolicy = iota
	// ShutdownAbort completes queued requests with ErrClosed without reading them.
	ShutdownAbort
)

func (p ShutdownPolicy) String() string {
	switch p {
	case ShutdownDrain:
		return "drain"
	case ShutdownAbort:
		return "abort"
	default:
		return fmt.Sprintf("ShutdownPolicy(%d)", uint8(p))
	}
}

const (
	// DefaultQueueCapacity is the default bound of the request queue.
	DefaultQueueCapacity = 1000
	// DefaultPollInterval is how long an idle worker sleeps before polling again.
	DefaultPollInterval = 100 * time.Microsecond
)

// Config configures a Loader.
type Config struct {
	// Workers is the number of worker goroutines. Default: 1.
	Workers int

	// QueueCapacity bounds the request queue. Default: 1000.
	QueueCapacity int

	// PollInterval is the idle sleep between queue polls. Default: 100µs.
	PollInterval time.Duration

	// CPUAffinity pins worker i to CPUAffinity[i%len(CPUAffinity)].
	// Workers with affinity are locked to their OS thread. Linux only.
	CPUAffinity []int

	// Source reads file contents. Default: local files relative to the working directory.
	Source Source

	// Decompress decodes zstd and LZ4 frame payloads, detected by magic number.
	Decompress bool

	// MaxDecompressedSize fails loads whose payload decodes to more bytes.
	// Default: DefaultMaxDecompressedSize.
	MaxDecompressedSize int

	// IOBytesPerSec limits read throughput across all workers. 0 means unlimited.
	IOBytesPerSec int64

	// Shutdown selects what Close does with queued requests. Default: ShutdownDrain.
	Shutdown ShutdownPolicy
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.MaxDecompressedSize <= 0 {
		c.MaxDecompressedSize = DefaultMaxDecompressedSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Source == nil {
		c.Source = NewFileSource("")
	}
	return c
}

func (c Config) validate() error {
	for _, cpu := range c.CPUAffinity {
		if cpu < 0 {
			return fmt.Errorf("%w: negative cpu %d in CPUAffinity", ErrInvalidConfig, cpu)
		}
	}
	if c.IOBytesPerSec < 0 {
		return fmt.Errorf("%w: negative IOBytesPerSec", ErrInvalidConfig)
	}
	if c.Shutdown > ShutdownAbort {
		return fmt.Errorf("%w: unknown shutdown policy %d", ErrInvalidConfig, c.Shutdown)
	}
	return nil
}

// IOLimiter throttles bytes read by the workers. *resource.Controller satisfies it.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// Option is a configuration option for Loader.
type Option func(*Loader)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithIOLimiter throttles reads through limiter, typically a shared
// resource controller. It takes precedence over Config.IOBytesPerSec.
func WithIOLimiter(limiter IOLimiter) Option {
	return func(l *Loader) {
		l.io = limiter
	}
}
