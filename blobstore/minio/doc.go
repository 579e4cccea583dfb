// Package minio serves game assets from MinIO or another S3-compatible
// server through the blobstore.BlobStore interface.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "assets", "game/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	l, err := loader.New(loader.Config{Source: loader.NewBlobSource(store)})
//
// Use NewStore to pass a preconfigured *minio.Client (region, transport).
// Whole-asset reads stream the object in one GET; ReadAt issues ranged GETs.
package minio
