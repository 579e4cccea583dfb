package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies the encoding of a loaded payload.
type Format uint8

const (
	// FormatRaw is an unencoded payload.
	FormatRaw Format = iota
	// FormatZstd is a zstd frame.
	FormatZstd
	// FormatLZ4 is an LZ4 frame.
	FormatLZ4
)

func (f Format) String() string {
	switch f {
	case FormatZstd:
		return "zstd"
	case FormatLZ4:
		return "lz4"
	default:
		return "raw"
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// DetectFormat sniffs the frame magic number at the start of data.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return FormatZstd
	case bytes.HasPrefix(data, lz4Magic):
		return FormatLZ4
	default:
		return FormatRaw
	}
}

// DefaultMaxDecompressedSize caps the decoded size of one payload.
const DefaultMaxDecompressedSize = 256 << 20

// ErrDecompressedTooLarge is returned when a payload decodes to more than
// the configured maximum.
var ErrDecompressedTooLarge = errors.New("loader: decompressed payload too large")

// Decompressor decodes zstd and LZ4 frames up to a size limit. Decoders are
// pooled per Decompressor. It is safe for concurrent use.
type Decompressor struct {
	maxSize int
	zstd    sync.Pool
	lz4     sync.Pool
}

// NewDecompressor returns a Decompressor refusing payloads that decode to
// more than maxSize bytes. A non-positive maxSize means DefaultMaxDecompressedSize.
func NewDecompressor(maxSize int) *Decompressor {
	if maxSize <= 0 {
		maxSize = DefaultMaxDecompressedSize
	}
	return &Decompressor{maxSize: maxSize}
}

var defaultDecompressor = NewDecompressor(DefaultMaxDecompressedSize)

// Decompress decodes data with a DefaultMaxDecompressedSize limit.
func Decompress(data []byte) ([]byte, Format, error) {
	return defaultDecompressor.Decompress(data)
}

// MaxSize returns the decoded size limit.
func (d *Decompressor) MaxSize() int { return d.maxSize }

func (d *Decompressor) zstdDecoder() (*zstd.Decoder, error) {
	if v := d.zstd.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(d.maxSize)), //nolint:gosec // positive, checked in NewDecompressor
	)
}

func (d *Decompressor) lz4Reader(r io.Reader) *lz4.Reader {
	if v := d.lz4.Get(); v != nil {
		zr := v.(*lz4.Reader)
		zr.Reset(r)
		return zr
	}
	return lz4.NewReader(r)
}

// Decompress decodes data according to DetectFormat. Raw data is returned as is.
func (d *Decompressor) Decompress(data []byte) ([]byte, Format, error) {
	format := DetectFormat(data)
	switch format {
	case FormatZstd:
		dec, err := d.zstdDecoder()
		if err != nil {
			return nil, format, err
		}
		defer d.zstd.Put(dec)

		out, err := dec.DecodeAll(data, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, format, fmt.Errorf("%w: limit %d bytes: %w", ErrDecompressedTooLarge, d.maxSize, err)
		}
		if err != nil {
			return nil, format, err
		}
		return out, format, nil
	case FormatLZ4:
		zr := d.lz4Reader(bytes.NewReader(data))
		defer func() {
			zr.Reset(nil)
			d.lz4.Put(zr)
		}()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(io.LimitReader(zr, int64(d.maxSize)+1)); err != nil {
			return nil, format, err
		}
		if buf.Len() > d.maxSize {
			return nil, format, fmt.Errorf("%w: limit %d bytes", ErrDecompressedTooLarge, d.maxSize)
		}
		return buf.Bytes(), format, nil
	default:
		return data, FormatRaw, nil
	}
}
