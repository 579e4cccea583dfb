package enginecore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginecore/loader"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	dec := jsoniter.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		records = append(records, rec)
	}
	return records
}

func TestLogger_LogLoad(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).WithComponent("test")
	ctx := context.Background()

	l.LogLoad(ctx, loader.Result{Path: "a.bin", Data: []byte("abc"), Success: true})
	l.LogLoad(ctx, loader.Result{Path: "b.bin", Err: errors.New("boom")})

	records := decodeRecords(t, &buf)
	require.Len(t, records, 2)

	assert.Equal(t, "asset loaded", records[0]["msg"])
	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.Equal(t, float64(3), records[0]["bytes"])
	assert.Equal(t, "test", records[0]["component"])

	assert.Equal(t, "asset load failed", records[1]["msg"])
	assert.Equal(t, "WARN", records[1]["level"])
	assert.Equal(t, "boom", records[1]["error"])
}

func TestLogger_LogShutdown(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, nil))

	l.LogShutdown(context.Background(), loader.Stats{Completed: 7, Failed: 1}, 42, nil)
	l.LogShutdown(context.Background(), loader.Stats{}, 0, errors.New("unmap"))

	records := decodeRecords(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "shutdown completed", records[0]["msg"])
	assert.Equal(t, float64(42), records[0]["frames"])
	assert.Equal(t, float64(7), records[0]["completed"])
	assert.Equal(t, "shutdown failed", records[1]["msg"])
	assert.Equal(t, "unmap", records[1]["error"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogPreload(context.Background(), "level.json", 1, 0, nil)
}
