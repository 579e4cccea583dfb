package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n uniformly random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

var words = []string{"mesh", "texel", "vertex", "shader", "normal", "index", "bone", "frame"}

// Text returns n bytes of space-separated words from a small vocabulary.
// The result compresses well.
func (r *RNG) Text(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf bytes.Buffer
	buf.Grow(n + 8)
	for buf.Len() < n {
		buf.WriteString(words[r.rand.Intn(len(words))])
		buf.WriteByte(' ')
	}
	return buf.Bytes()[:n]
}

// AssetName returns the name WriteAssets uses for the i-th asset.
func AssetName(i int) string {
	return fmt.Sprintf("asset-%04d.bin", i)
}

// WriteAssets writes n files into dir. Each file contains its own name.
// It returns the file names in order.
func WriteAssets(tb testing.TB, dir string, n int) []string {
	tb.Helper()
	names := make([]string, n)
	for i := range n {
		names[i] = AssetName(i)
		WriteFile(tb, dir, names[i], []byte(names[i]))
	}
	return names
}

// WriteFile writes data to dir/name, creating parent directories.
func WriteFile(tb testing.TB, dir, name string, data []byte) {
	tb.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tb, os.WriteFile(path, data, 0o600))
}

// Zstd returns data as a single zstd frame.
func Zstd(tb testing.TB, data []byte) []byte {
	tb.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(tb, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

// LZ4 returns data as an LZ4 frame.
func LZ4(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(tb, err)
	require.NoError(tb, w.Close())
	return buf.Bytes()
}
