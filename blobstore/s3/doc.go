// Package s3 serves game assets from an S3 bucket through the
// blobstore.BlobStore interface.
//
//	store, err := s3.New(ctx, "my-assets",
//	    s3.WithPrefix("game/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	l, err := loader.New(loader.Config{Source: loader.NewBlobSource(store)})
//
// Blob.ReadAt issues a single ranged GET. Whole-asset reads through
// blobstore.ReadAll go through the feature/s3/manager Downloader, which
// fetches WithPartSize chunks WithDownloadConcurrency at a time. Tests
// substitute the Client interface.
package s3
