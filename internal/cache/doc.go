// Package cache keeps recently read blocks of remote asset blobs in memory.
//
// LRU is a single byte-bounded cache; Sharded fans keys out over 64 of them
// for concurrent loader workers. Both can charge cached bytes to a memory
// budget such as resource.Controller.
package cache
