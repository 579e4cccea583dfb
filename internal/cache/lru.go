package cache

import "sync"

const nilSlot int32 = -1

type slot struct {
	key        BlockKey
	data       []byte
	prev, next int32 // recency list, most recent at head
}

// LRU is a byte-bounded least-recently-used BlockCache.
//
// Entries live in a slab and are linked by index; freed slots are reused
// through a free list. A per-blob index makes Drop proportional to the
// number of blocks cached for that blob.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	bytes    int64
	mem      MemoryAcquirer

	slots      []slot
	free       []int32
	head, tail int32
	index      map[string]map[uint64]int32

	hits, misses, evictions int64
}

// NewLRU returns an LRU holding at most capacity payload bytes. If mem is
// non-nil every cached byte is reserved from it; a denied reservation leaves
// the block uncached.
func NewLRU(capacity int64, mem MemoryAcquirer) *LRU {
	return &LRU{
		capacity: capacity,
		mem:      mem,
		head:     nilSlot,
		tail:     nilSlot,
		index:    make(map[string]map[uint64]int32),
	}
}

func (c *LRU) lookup(key BlockKey) (int32, bool) {
	i, ok := c.index[key.Path][key.Block]
	return i, ok
}

// Get returns a cached block and marks it most recently used.
func (c *LRU) Get(key BlockKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.lookup(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.unlink(i)
	c.pushFront(i)
	return c.slots[i].data, true
}

// Set caches b. Blocks larger than the capacity are ignored. A key that is
// already cached keeps its data and only becomes most recently used.
func (c *LRU) Set(key BlockKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.lookup(key); ok {
		c.unlink(i)
		c.pushFront(i)
		return
	}

	n := int64(len(b))
	if n > c.capacity {
		return
	}
	// Evict before reserving so the budget sees the released bytes.
	for c.bytes+n > c.capacity && c.tail != nilSlot {
		c.remove(c.tail)
		c.evictions++
	}
	if c.mem != nil {
		if err := c.mem.AcquireMemory(n); err != nil {
			return
		}
	}

	var i int32
	if k := len(c.free); k > 0 {
		i = c.free[k-1]
		c.free = c.free[:k-1]
	} else {
		c.slots = append(c.slots, slot{})
		i = int32(len(c.slots) - 1) //nolint:gosec // slot count is bounded by cached blocks
	}
	c.slots[i] = slot{key: key, data: b}
	c.pushFront(i)

	blocks := c.index[key.Path]
	if blocks == nil {
		blocks = make(map[uint64]int32)
		c.index[key.Path] = blocks
	}
	blocks[key.Block] = i
	c.bytes += n
}

// Drop removes every cached block of path.
func (c *LRU) Drop(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	blocks := c.index[path]
	n := len(blocks)
	for _, i := range blocks {
		c.remove(i)
	}
	return n
}

// Stats returns a snapshot of the counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Bytes:     c.bytes,
		Blocks:    len(c.slots) - len(c.free),
	}
}

// Size returns the cached payload bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

func (c *LRU) remove(i int32) {
	s := &c.slots[i]
	c.unlink(i)

	blocks := c.index[s.key.Path]
	delete(blocks, s.key.Block)
	if len(blocks) == 0 {
		delete(c.index, s.key.Path)
	}

	n := int64(len(s.data))
	c.bytes -= n
	if c.mem != nil {
		c.mem.ReleaseMemory(n)
	}
	*s = slot{}
	c.free = append(c.free, i)
}

func (c *LRU) unlink(i int32) {
	s := &c.slots[i]
	if s.prev != nilSlot {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != nilSlot {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = nilSlot, nilSlot
}

func (c *LRU) pushFront(i int32) {
	s := &c.slots[i]
	s.prev = nilSlot
	s.next = c.head
	if c.head != nilSlot {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == nilSlot {
		c.tail = i
	}
}
