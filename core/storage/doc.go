// Package storage provides read access to record streams kept in object storage.
//
// It wraps the MinIO Go client so s3://bucket/key inputs work against both AWS S3
// and self-hosted MinIO. The client connects lazily; nothing is contacted until an
// input is actually opened.
//
// # Client Interface
//
// The Client interface abstracts the underlying provider so reads can be mocked in
// unit tests (see core/storage/mocks).
//
// # Operations
//
//   - StatObject: Checks that an input exists before a run starts.
//   - GetObject: Streams an input object.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	info, err := client.StatObject(ctx, "snapshots", "2024-06.jsonl", minio.StatObjectOptions{})
package storage
