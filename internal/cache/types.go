package cache

// BlockKey names one fixed-size block of a blob.
type BlockKey struct {
	Path  string
	Block uint64
}

// Stats holds cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Bytes     int64 // Payload bytes currently cached
	Blocks    int   // Blocks currently cached
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	if n := s.Hits + s.Misses; n > 0 {
		return float64(s.Hits) / float64(n)
	}
	return 0
}

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// BlockCache caches immutable blob blocks. Returned slices are read-only.
type BlockCache interface {
	// Get returns a cached block.
	Get(key BlockKey) ([]byte, bool)
	// Set caches b under key. The cache keeps b; callers must not modify it.
	Set(key BlockKey, b []byte)
	// Drop removes every block of the named blob and returns how many were cached.
	Drop(path string) int
	Stats() Stats
}
