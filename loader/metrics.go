package loader

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting loader metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSubmit is called after each Submit or TrySubmit.
	// accepted is false when the request was not enqueued.
	RecordSubmit(accepted bool)

	// RecordLoad is called after each file read on a worker.
	// bytes is the delivered payload size, err is nil if successful.
	RecordLoad(bytes int, duration time.Duration, err error)

	// RecordCallbackPanic is called when a completion callback panicked.
	RecordCallbackPanic()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSubmit(bool)                    {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCallbackPanic()                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	SubmitCount    atomic.Int64
	RejectCount    atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
	CallbackPanics atomic.Int64
}

// RecordSubmit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSubmit(accepted bool) {
	if accepted {
		b.SubmitCount.Add(1)
	} else {
		b.RejectCount.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(int64(bytes))
}

// RecordCallbackPanic implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCallbackPanic() {
	b.CallbackPanics.Add(1)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	SubmitCount    int64
	RejectCount    int64
	LoadCount      int64
	LoadErrors     int64
	LoadBytes      int64
	LoadAvgNanos   int64
	CallbackPanics int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		SubmitCount:    b.SubmitCount.Load(),
		RejectCount:    b.RejectCount.Load(),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadBytes:      b.LoadBytes.Load(),
		CallbackPanics: b.CallbackPanics.Load(),
	}
	if stats.LoadCount > 0 {
		stats.LoadAvgNanos = b.LoadTotalNanos.Load() / stats.LoadCount
	}
	return stats
}
