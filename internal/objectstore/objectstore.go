// Package objectstore reads document bytes from the bucket that holds
// reference documents and from short-lived signed URLs.
package objectstore

import "context"

// Fetcher is the read side of the object store consumed by the export pipeline.
type Fetcher interface {
	// FetchBytes returns the object stored at path inside the bucket.
	FetchBytes(ctx context.Context, path string) ([]byte, error)
	// FetchURL downloads an object through a pre-authorized URL.
	FetchURL(ctx context.Context, url string) ([]byte, error)
}
