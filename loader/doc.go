// Package loader reads asset files asynchronously on a fixed set of workers.
//
// # Usage
//
//	l, err := loader.New(loader.Config{Workers: 2, Decompress: true})
//	if err != nil { ... }
//	defer l.Close()
//
//	err = l.Submit(ctx, loader.Request{
//	    Path: "textures/hero.ktx",
//	    Callback: func(res loader.Result) {
//	        if !res.Success { ... }
//	        upload(res.Data)
//	    },
//	})
//
// A request completes exactly once, either through its callback or, in flag
// mode, by filling Out and Err and then setting Done. Completion always
// happens on a worker goroutine.
//
// # Backpressure
//
// The request queue is bounded (DefaultQueueCapacity). Submit blocks while it
// is full; TrySubmit reports false instead.
//
// # Shutdown
//
// Close stops admission and then either loads (ShutdownDrain) or fails with
// ErrClosed (ShutdownAbort) everything still queued. It returns once every
// worker has exited.
//
// # Batches
//
// LoadAll and LoadManifest submit a group of paths and wait for all of them,
// using a counter.Counter as completion barrier.
package loader
