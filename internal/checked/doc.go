// Package checked selects the default allocator profile.
//
// Two build profiles exist:
//
//   - fast (default): no poisoning, no ownership assertions.
//   - checked (go build -tags checked): allocators poison memory and panic on
//     double frees, foreign pointers and capacity overflow.
//
// Every allocator also accepts an explicit WithStrict option that overrides the
// build default, so both code paths run under a plain `go test`.
package checked
