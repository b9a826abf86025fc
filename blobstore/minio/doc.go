// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage (Ceph, Garage, SeaweedFS)
// without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial(minioblob.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "quarry",
//	    Prefix:    "snapshots/",
//	})
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
