package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrInjected is returned by FaultyFS when a fault carries no Err.
var ErrInjected = errors.New("fs: injected fault")

// Op selects the operations a Fault breaks.
type Op uint8

const (
	// OpOpen fails Open.
	OpOpen Op = 1 << iota
	// OpRead fails Read once After bytes have been read from the file.
	OpRead
	// OpClose fails Close after closing the underlying file.
	OpClose
)

// Fault describes how opens of a matching file misbehave.
// The zero Fault matches without failing.
type Fault struct {
	Fail  Op
	After int64         // Bytes OpRead lets through
	Delay time.Duration // Sleep before every matching Open
	Times int           // Matching opens the fault applies to; 0 means every one
	Err   error         // Defaults to ErrInjected
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

type rule struct {
	pattern string
	fault   Fault
	hits    int
}

// FaultyFS wraps a FileSystem and injects faults into the opens whose base
// name matches a rule. Rules are tried in the order they were added; the
// first one that still applies wins.
type FaultyFS struct {
	fs FileSystem

	mu    sync.Mutex
	rules []*rule
	opens int
}

// NewFaultyFS wraps fs, or Default if fs is nil.
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{fs: fs}
}

// AddRule injects fault into files whose base name matches the
// filepath.Match pattern. It panics on a malformed pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		panic(err)
	}
	f.mu.Lock()
	f.rules = append(f.rules, &rule{pattern: pattern, fault: fault})
	f.mu.Unlock()
}

// Opens returns how many Open calls reached the wrapper.
func (f *FaultyFS) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *FaultyFS) match(name string) Fault {
	base := filepath.Base(name)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	for _, r := range f.rules {
		if ok, _ := filepath.Match(r.pattern, base); !ok {
			continue
		}
		if r.fault.Times > 0 && r.hits >= r.fault.Times {
			continue
		}
		r.hits++
		return r.fault
	}
	return Fault{}
}

// Open applies the first matching fault and opens name on the wrapped FileSystem.
func (f *FaultyFS) Open(name string) (File, error) {
	fault := f.match(name)
	if fault.Delay > 0 {
		time.Sleep(fault.Delay)
	}
	if fault.Fail&OpOpen != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.err()}
	}

	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if fault.Fail&(OpRead|OpClose) == 0 {
		return file, nil
	}
	return &faultyFile{File: file, fault: fault}, nil
}

type faultyFile struct {
	File
	fault Fault
	read  int64
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ff.fault.Fail&OpRead != 0 {
		left := ff.fault.After - ff.read
		if left <= 0 {
			return 0, ff.fault.err()
		}
		if int64(len(p)) > left {
			p = p[:left]
		}
	}
	n, err := ff.File.Read(p)
	ff.read += int64(n)
	return n, err
}

func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if ff.fault.Fail&OpClose != 0 {
		return ff.fault.err()
	}
	return err
}
