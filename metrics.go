package enginecore

import (
	"sync/atomic"

	"github.com/hupe1980/enginecore/loader"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// It extends loader.MetricsCollector, so the same collector observes the
// file loader and the frame loop.
type MetricsCollector interface {
	loader.MetricsCollector

	// RecordFrame is called by EndFrame with the frame arena usage right
	// before the reset.
	RecordFrame(used, capacity int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct {
	loader.NoopMetricsCollector
}

func (NoopMetricsCollector) RecordFrame(int, int) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	loader.BasicMetricsCollector

	FrameCount     atomic.Int64
	FrameBytes     atomic.Int64
	FramePeakBytes atomic.Int64
	FrameCapacity  atomic.Int64
}

// RecordFrame implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFrame(used, capacity int) {
	b.FrameCount.Add(1)
	b.FrameBytes.Add(int64(used))
	b.FrameCapacity.Store(int64(capacity))
	for {
		peak := b.FramePeakBytes.Load()
		if int64(used) <= peak || b.FramePeakBytes.CompareAndSwap(peak, int64(used)) {
			return
		}
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	loader.BasicMetricsStats

	FrameCount     int64
	FrameAvgBytes  int64
	FramePeakBytes int64
	FrameCapacity  int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		BasicMetricsStats: b.BasicMetricsCollector.GetStats(),
		FrameCount:        b.FrameCount.Load(),
		FramePeakBytes:    b.FramePeakBytes.Load(),
		FrameCapacity:     b.FrameCapacity.Load(),
	}
	if stats.FrameCount > 0 {
		stats.FrameAvgBytes = b.FrameBytes.Load() / stats.FrameCount
	}
	return stats
}
