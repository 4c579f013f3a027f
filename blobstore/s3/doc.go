// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("relations/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checked puts, multipart uploads for large artifacts
//   - Conditional creates (If-None-Match) for versioned manifests
//   - DynamoDB-backed CURRENT pointer for concurrent builds (DDBCommitStore)
package s3
