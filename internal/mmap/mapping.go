package mmap

import (
	"io"
	"os"
	"sync/atomic"
)

// Mapping owns a mapped region: a read-only view of a file or an anonymous
// read-write region outside the Go heap.
type Mapping struct {
	data   []byte
	size   int
	anon   bool
	closed atomic.Bool
}

// Open maps the file at path read-only. An empty file yields an empty Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}

	data, err := mapFile(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, size: int(size)}, nil
}

// MapAnon creates a zero-filled, page-aligned read-write mapping of size
// bytes. The garbage collector does not see it; only Close returns it.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, err := mapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, size: size, anon: true}, nil
}

// Close unmaps the region. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if m.anon {
		return unmapAnon(data)
	}
	return unmapFile(data)
}

// Bytes returns the mapped region, or nil after Close.
// Touching a previously returned slice after Close faults.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the mapped length in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Anonymous reports whether the mapping came from MapAnon.
func (m *Mapping) Anonymous() bool {
	return m.anon
}

// Advise passes a paging hint for the whole region to the kernel.
func (m *Mapping) Advise(a Advice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return advise(m.data, a)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
