// Package blobstore provides storage for emitted artifacts and build manifests.
//
// BlobStore is the interface for reading and writing data blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap reads and atomic writes
//   - MemoryStore: In-memory store for tests and dry runs
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - s3.DDBCommitStore: S3 plus DynamoDB for atomic manifest commits
//   - minio.Store: MinIO and other S3-compatible storage
//
// Blobs are immutable once written; writers replace them as a whole.
package blobstore
