package cache

import "hash/maphash"

const shardCount = 64

// Sharded spreads blocks over 64 LRUs by key hash so that concurrent
// readers of different blocks rarely share a lock.
type Sharded struct {
	shards [shardCount]*LRU
	seed   maphash.Seed
}

// NewSharded splits capacity evenly across the shards.
func NewSharded(capacity int64, mem MemoryAcquirer) *Sharded {
	s := &Sharded{seed: maphash.MakeSeed()}
	per := max(capacity/shardCount, 1)
	for i := range s.shards {
		s.shards[i] = NewLRU(per, mem)
	}
	return s
}

func (s *Sharded) shard(key BlockKey) *LRU {
	return s.shards[maphash.Comparable(s.seed, key)%shardCount]
}

// Get returns a cached block.
func (s *Sharded) Get(key BlockKey) ([]byte, bool) {
	return s.shard(key).Get(key)
}

// Set caches a block.
func (s *Sharded) Set(key BlockKey, b []byte) {
	s.shard(key).Set(key, b)
}

// Drop removes every cached block of path from all shards.
func (s *Sharded) Drop(path string) int {
	n := 0
	for _, sh := range s.shards {
		n += sh.Drop(path)
	}
	return n
}

// Stats sums the shard counters.
func (s *Sharded) Stats() Stats {
	var total Stats
	for _, sh := range s.shards {
		st := sh.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
		total.Bytes += st.Bytes
		total.Blocks += st.Blocks
	}
	return total
}

// Size returns the cached payload bytes across all shards.
func (s *Sharded) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}
