// Package blobstore provides storage abstraction for asset data.
//
// BlobStore is the interface the file loader reads assets through when they
// do not live on the local file system. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory, for tests and generated assets
//   - CachingStore: Block cache in front of any other store
//   - s3.Store: Amazon S3 with parallel ranged downloads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can fetch their whole content in one go should implement
// Downloader; ReadAll prefers it over ReadAt.
package blobstore
