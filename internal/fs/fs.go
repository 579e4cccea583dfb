package fs

import (
	"io"
	"os"
)

// File is an open file as the loader reads it: sequentially, after a Stat
// to size the buffer.
type File interface {
	io.ReadCloser
	Stat() (os.FileInfo, error)
}

// FileSystem opens files for reading.
type FileSystem interface {
	Open(name string) (File, error)
}

// OS reads from the local file system.
type OS struct{}

// Open opens name with os.Open.
func (OS) Open(name string) (File, error) { return os.Open(name) }

// Default is the file system used by loader.NewFileSource.
var Default FileSystem = OS{}
