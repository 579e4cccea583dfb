package loader

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/enginecore/blobstore"
	"github.com/hupe1980/enginecore/internal/conv"
	"github.com/hupe1980/enginecore/internal/fs"
)

// Source reads the full content of a file.
// Implementations must be safe for concurrent use.
type Source interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, path string) ([]byte, error)

// ReadFile implements Source.
func (f SourceFunc) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// FileSource reads local files. Relative paths are resolved against root.
type FileSource struct {
	fsys fs.FileSystem
	root string
}

// NewFileSource returns a Source for local files under root. An empty root
// resolves relative paths against the working directory.
func NewFileSource(root string) *FileSource {
	return newFileSourceFS(fs.Default, root)
}

func newFileSourceFS(fsys fs.FileSystem, root string) *FileSource {
	return &FileSource{fsys: fsys, root: root}
}

// ReadFile reads path in one pass, sized by the file's stat.
func (s *FileSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}

	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	if fi, err := f.Stat(); err == nil && fi.Size() > 0 {
		size, err := conv.Int64ToInt(fi.Size())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		buf.Grow(size + bytes.MinRead)
	}
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// BlobSource reads assets from a blob store.
type BlobSource struct {
	store blobstore.BlobStore
}

// NewBlobSource returns a Source backed by store.
func NewBlobSource(store blobstore.BlobStore) *BlobSource {
	return &BlobSource{store: store}
}

// ReadFile implements Source.
func (s *BlobSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return blobstore.ReadFile(ctx, s.store, filepath.ToSlash(path))
}
