package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginecore/internal/resource"
)

type countingStore struct {
	*MemoryStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func newCountingStore(t *testing.T, name string, data []byte) *countingStore {
	t.Helper()
	s := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, s.Put(context.Background(), name, data))
	return s
}

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestCachingStore_ReadAt(t *testing.T) {
	data := testData(1000)
	inner := newCountingStore(t, "asset", data)
	store := NewCachingStore(inner, 1<<20, 256, nil)
	ctx := context.Background()

	blob, err := store.Open(ctx, "asset")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 300)
	n, err := blob.ReadAt(ctx, buf, 100)
	require.NoError(t, err)
	assert.Equal(t, 300, n)
	assert.Equal(t, data[100:400], buf)
	assert.Equal(t, int64(1), inner.reads.Load(), "contiguous missing blocks are one read")

	n, err = blob.ReadAt(ctx, buf, 400)
	require.NoError(t, err)
	assert.Equal(t, 300, n)
	assert.Equal(t, data[400:700], buf)
	assert.Equal(t, int64(2), inner.reads.Load(), "only block 2 was missing")

	n, err = blob.ReadAt(ctx, buf, 900)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[900:], buf[:100])

	_, err = blob.ReadAt(ctx, buf, 1000)
	assert.ErrorIs(t, err, io.EOF)

	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, all)
	assert.Greater(t, store.Stats().Hits, int64(0))
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	inner := newCountingStore(t, "asset", []byte("old content"))
	store := NewCachingStore(inner, 1<<20, 64, nil)
	ctx := context.Background()

	data, err := ReadFile(ctx, store, "asset")
	require.NoError(t, err)
	assert.Equal(t, "old content", string(data))

	require.NoError(t, store.Put(ctx, "asset", []byte("new content")))
	data, err = ReadFile(ctx, store, "asset")
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	require.NoError(t, store.Delete(ctx, "asset"))
	_, err = store.Open(ctx, "asset")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStore_MemoryBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	inner := newCountingStore(t, "asset", testData(4096))
	store := NewCachingStore(inner, 1<<20, 1024, rc)
	ctx := context.Background()

	_, err := ReadFile(ctx, store, "asset")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), rc.MemoryUsage())

	require.NoError(t, store.Delete(ctx, "asset"))
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestCachingStore_CanceledContext(t *testing.T) {
	inner := newCountingStore(t, "asset", testData(10))
	store := NewCachingStore(inner, 1<<20, 0, nil)

	blob, err := store.Open(context.Background(), "asset")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = blob.ReadAt(ctx, make([]byte, 4), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
