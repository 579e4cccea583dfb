package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	assert.Equal(t, a.Bytes(64), b.Bytes(64))
	assert.Equal(t, int64(4711), a.Seed())

	first := a.Intn(1000)
	a.Reset()
	a.Bytes(64)
	assert.Equal(t, first, a.Intn(1000), "Reset replays the sequence")
}

func TestRNG_Text(t *testing.T) {
	rng := NewRNG(1)
	text := rng.Text(1000)
	assert.Len(t, text, 1000)
	assert.Less(t, len(Zstd(t, text)), 500, "text payloads compress")
}

func TestWriteAssets(t *testing.T) {
	dir := t.TempDir()
	names := WriteAssets(t, dir, 3)
	require.Equal(t, []string{"asset-0000.bin", "asset-0001.bin", "asset-0002.bin"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "asset-0002.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("asset-0002.bin"), data)

	WriteFile(t, dir, "nested/dir/x.bin", []byte("x"))
	assert.FileExists(t, filepath.Join(dir, "nested", "dir", "x.bin"))
}

func TestCompressedFrames(t *testing.T) {
	payload := NewRNG(7).Text(4096)

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	out, err := dec.DecodeAll(Zstd(t, payload), nil)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(lz4.NewReader(bytes.NewReader(LZ4(t, payload))))
	require.NoError(t, err)
	assert.Equal(t, payload, buf.Bytes())
}
