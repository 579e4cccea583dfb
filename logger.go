package enginecore

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/enginecore/loader"
)

// Logger is the structured logger shared by Core and its loader. Records use
// fixed attribute keys (path, bytes, frames, ...) so they can be queried.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler logs text at Info to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = textHandler(os.Stderr, slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON records at level and above to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs key=value records at level and above to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(textHandler(os.Stderr, level))
}

// NoopLogger returns a Logger that is disabled at every level.
func NoopLogger() *Logger {
	return NewLogger(textHandler(io.Discard, slog.Level(1000)))
}

func textHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// WithComponent tags every record with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogLoad logs the outcome of a single asset load.
func (l *Logger) LogLoad(ctx context.Context, res loader.Result) {
	if res.Err != nil {
		l.WarnContext(ctx, "asset load failed",
			"path", res.Path,
			"error", res.Err,
		)
	} else {
		l.DebugContext(ctx, "asset loaded",
			"path", res.Path,
			"bytes", len(res.Data),
		)
	}
}

// LogPreload logs a manifest preload.
func (l *Logger) LogPreload(ctx context.Context, manifest string, count, failed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "preload failed",
			"manifest", manifest,
			"total", count,
			"failed", failed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "preload completed",
			"manifest", manifest,
			"count", count,
		)
	}
}

// LogShutdown logs the final loader counters on Close.
func (l *Logger) LogShutdown(ctx context.Context, st loader.Stats, frames uint64, err error) {
	attrs := []any{
		"frames", frames,
		"completed", st.Completed,
		"failed", st.Failed,
		"aborted", st.Aborted,
		"bytes_read", st.BytesRead,
	}
	if err != nil {
		l.ErrorContext(ctx, "shutdown failed", append(attrs, "error", err)...)
		return
	}
	l.InfoContext(ctx, "shutdown completed", attrs...)
}
