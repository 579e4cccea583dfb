// Package hash provides the CRC32-Castagnoli checksum used to verify loaded
// assets against their manifest entry.
//
// Go's hash/crc32 uses hardware instructions for the Castagnoli polynomial
// on amd64 (SSE4.2) and arm64, so verification is cheap next to the read.
//
//	if err := hash.Verify(data, asset.CRC32C); err != nil {
//	    // errors.Is(err, hash.ErrChecksumMismatch)
//	}
package hash
