// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage (Ceph, Garage,
// SeaweedFS) without any AWS dependency.
//
// # Basic Usage
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "artifacts", "relations/")
//
// Uploads created with Store.Create are streamed; the object appears when the
// writer is closed.
package minio
