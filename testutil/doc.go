// Package testutil provides testing utilities for enginecore.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating asset payloads, writing asset trees
// and producing compressed frames.
//
// # Random Payloads
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(4096)        // incompressible
//	text := rng.Text(4096)         // compressible
//
// # Asset Trees
//
//	paths := testutil.WriteAssets(t, dir, 1000) // asset-0000.bin ...
//
// # Compressed Frames
//
//	zst := testutil.Zstd(t, data)
//	lz := testutil.LZ4(t, data)
package testutil
