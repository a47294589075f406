// Package storage defines the blob-storage collaborator used for cover
// image uploads. Providers turn raw bytes into a stable public URL;
// failures are opaque transient errors.
package storage

import "context"

// Uploader stores a blob and returns the public URL it will be served
// from.
type Uploader interface {
	Upload(ctx context.Context, name string, content []byte, contentType string) (string, error)
}
