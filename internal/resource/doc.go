// Package resource arbitrates the memory budget and read bandwidth shared by
// the allocators, the block cache and the loader.
//
// Memory reservations never block. Arenas and pools reserve their whole
// capacity when created and fail with ErrMemoryLimitExceeded if it does not
// fit; the caller decides what to shrink.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	frame, err := arena.New(4<<20, arena.WithMemoryAcquirer(rc))
//
// Reads block in AcquireIO until the token bucket admits them, so background
// streaming cannot starve the rest of the process of disk bandwidth.
//
// Every method is safe for concurrent use, and a nil *Controller is a valid
// unlimited controller.
package resource
