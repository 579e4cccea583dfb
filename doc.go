// Package enginecore provides the memory and concurrency core of a game
// engine: allocators for short-lived and fixed-size data, an asynchronous
// asset loader and a reference-counted completion counter.
//
// # Quick Start
//
//	core, err := enginecore.New(
//	    enginecore.WithMemoryLimit(256<<20),
//	    enginecore.WithFrameArenaSize(8<<20),
//	    enginecore.WithLoaderConfig(loader.Config{Workers: 2, Decompress: true}),
//	)
//	if err != nil { ... }
//	defer core.Close()
//
//	// Preload a level before the first frame.
//	err = core.Preload(ctx, "levels/1.json", func(res loader.Result) {
//	    if res.Success {
//	        upload(res.Path, res.Data)
//	    }
//	})
//
//	for running {
//	    cmds, _ := arena.AllocSlice[DrawCmd](core.FrameArena(), len(visible))
//	    ...
//	    core.EndFrame()
//	}
//
// # Packages
//
//   - arena: bump allocator for per-frame data
//   - pool: fixed-block allocator with O(1) alloc and free
//   - typedpool: typed bump pool handing out views
//   - loader: bounded-queue file loader with worker goroutines
//   - counter: shared atomic counter used as completion barrier
//   - blobstore: local, in-memory, S3 and MinIO asset stores
//
// # Memory Budget
//
// The frame arena and every allocator created with NewArena or NewPool
// reserve their capacity from one budget (WithMemoryLimit). Allocation fails
// with an error wrapping ErrMemoryLimitExceeded when the budget is spent.
//
// # Build Profiles
//
// Building with the `checked` tag turns on strict mode for all allocators:
// memory poisoning, allocation records, double-free and use-after-free
// detection. WithStrict overrides the profile at runtime.
package enginecore
