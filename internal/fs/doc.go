// Package fs is the file system seam under loader.FileSource.
//
// Production code reads through [Default] ([OS]). Tests wrap it in a
// [FaultyFS] to make chosen asset files fail or stall:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("*.ktx", fs.Fault{Fail: fs.OpOpen, Times: 1}) // one transient failure
//	ffs.AddRule("huge.bin", fs.Fault{Delay: 50 * time.Millisecond})
//
// There is no context parameter; local reads cannot be interrupted. Remote
// sources go through blobstore, which takes a context.
package fs
