//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED) //nolint:gosec // fd fits in int on unix
}

func mapAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapFile(b []byte) error { return unix.Munmap(b) }

func unmapAnon(b []byte) error { return unix.Munmap(b) }

var madvice = [...]int{
	AdviceNormal:     unix.MADV_NORMAL,
	AdviceSequential: unix.MADV_SEQUENTIAL,
	AdviceWillNeed:   unix.MADV_WILLNEED,
	AdviceDontNeed:   unix.MADV_DONTNEED,
}

func advise(b []byte, a Advice) error {
	if int(a) >= len(madvice) {
		a = AdviceNormal
	}
	err := unix.Madvise(b, madvice[a])
	// Sub-slices that do not start on a page boundary are rejected; the hint is optional.
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
