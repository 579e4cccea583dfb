//go:build !linux

package loader

// setAffinity is a no-op where thread affinity is not supported.
func setAffinity(int) error {
	return nil
}
