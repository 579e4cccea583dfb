package loader

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginecore/testutil"
)

func TestDetectFormat(t *testing.T) {
	payload := bytes.Repeat([]byte("vertex "), 100)

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"empty", nil, FormatRaw},
		{"short", []byte{0x28, 0xB5}, FormatRaw},
		{"raw", payload, FormatRaw},
		{"zstd", testutil.Zstd(t, payload), FormatZstd},
		{"lz4", testutil.LZ4(t, payload), FormatLZ4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.data))
		})
	}

	assert.Equal(t, "raw", FormatRaw.String())
	assert.Equal(t, "zstd", FormatZstd.String())
	assert.Equal(t, "lz4", FormatLZ4.String())
}

func TestDecompress(t *testing.T) {
	payload := bytes.Repeat([]byte("texel"), 4096)

	for _, tt := range []struct {
		name   string
		data   []byte
		format Format
	}{
		{"raw", payload, FormatRaw},
		{"zstd", testutil.Zstd(t, payload), FormatZstd},
		{"lz4", testutil.LZ4(t, payload), FormatLZ4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			// Twice, so the second call runs on a pooled decoder.
			for range 2 {
				out, format, err := Decompress(tt.data)
				require.NoError(t, err)
				assert.Equal(t, tt.format, format)
				assert.Equal(t, payload, out)
			}
		})
	}

	t.Run("corrupt zstd", func(t *testing.T) {
		_, format, err := Decompress(append(append([]byte{}, zstdMagic...), 0x00, 0x01, 0x02))
		assert.Equal(t, FormatZstd, format)
		assert.Error(t, err)
	})
}

func TestDecompressor_SizeLimit(t *testing.T) {
	payload := bytes.Repeat([]byte{0}, 64<<10)
	d := NewDecompressor(16 << 10)
	assert.Equal(t, 16<<10, d.MaxSize())
	assert.Equal(t, DefaultMaxDecompressedSize, NewDecompressor(0).MaxSize())

	for _, tt := range []struct {
		name string
		data []byte
	}{
		{"zstd", testutil.Zstd(t, payload)},
		{"lz4", testutil.LZ4(t, payload)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Less(t, len(tt.data), 16<<10, "frame itself is small")

			_, _, err := d.Decompress(tt.data)
			assert.ErrorIs(t, err, ErrDecompressedTooLarge)

			out, _, err := NewDecompressor(64 << 10).Decompress(tt.data)
			require.NoError(t, err, "exactly at the limit")
			assert.Len(t, out, 64<<10)
		})
	}
}

func TestLoader_Decompress(t *testing.T) {
	dir := t.TempDir()
	payload := testutil.NewRNG(42).Text(10_000)
	testutil.WriteFile(t, dir, "a.zst", testutil.Zstd(t, payload))
	testutil.WriteFile(t, dir, "b.lz4", testutil.LZ4(t, payload))
	testutil.WriteFile(t, dir, "c.bin", payload)

	t.Run("enabled", func(t *testing.T) {
		l := newLoader(t, Config{Workers: 2, Source: NewFileSource(dir), Decompress: true})
		c := newCollector()
		require.NoError(t, l.LoadAll(context.Background(), []string{"a.zst", "b.lz4", "c.bin"}, c.add))
		for _, p := range []string{"a.zst", "b.lz4", "c.bin"} {
			assert.Equal(t, payload, c.get(p).Data, p)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		l := newLoader(t, Config{Source: NewFileSource(dir)})
		c := newCollector()
		require.NoError(t, l.LoadAll(context.Background(), []string{"a.zst"}, c.add))
		assert.Equal(t, FormatZstd, DetectFormat(c.get("a.zst").Data), "payload delivered as stored")
	})

	t.Run("over limit", func(t *testing.T) {
		l := newLoader(t, Config{Source: NewFileSource(dir), Decompress: true, MaxDecompressedSize: 1024})
		c := newCollector()
		err := l.LoadAll(context.Background(), []string{"a.zst", "b.lz4", "c.bin"}, c.add)
		require.Error(t, err)
		assert.ErrorIs(t, c.get("a.zst").Err, ErrDecompressedTooLarge)
		assert.ErrorIs(t, c.get("b.lz4").Err, ErrDecompressedTooLarge)
		assert.True(t, c.get("c.bin").Success, "raw payloads are not limited")
	})
}

func BenchmarkDecompress_Zstd(b *testing.B) {
	payload := bytes.Repeat([]byte("benchmark payload "), 4096)
	data := testutil.Zstd(b, payload)
	b.SetBytes(int64(len(payload)))
	b.ReportAllocs()
	for b.Loop() {
		if _, _, err := Decompress(data); err != nil {
			b.Fatal(err)
		}
	}
}
