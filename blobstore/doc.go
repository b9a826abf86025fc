// Package blobstore provides the storage abstraction used for snapshots.
//
// BlobStore is the interface for reading and writing immutable blobs (segments,
// manifests, the CURRENT pointer). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with mmap reads
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - s3.DDBCommitStore: S3 plus DynamoDB for atomic CURRENT commits
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error   // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blob names use forward slashes regardless of the backend.
package blobstore
