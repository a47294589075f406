// Package localdisk stores uploaded blobs on the local filesystem and
// serves them under a configured public prefix.
package localdisk

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"libroteca/internal/utils"
)

// Client writes blobs into a directory. Object keys are uuid-prefixed
// so repeated uploads of the same filename never collide.
type Client struct {
	dir     string
	baseURL string
}

// NewClient creates the provider, making sure the directory exists.
func NewClient(dir, baseURL string) (*Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Client{dir: dir, baseURL: baseURL}, nil
}

// Upload writes the blob and returns its public URL. The content type
// is carried by the file extension here; a cloud provider would set it
// as object metadata instead.
func (c *Client) Upload(ctx context.Context, name string, content []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s-%s", uuid.NewString(), utils.SanitizeFilename(filepath.Base(name)))
	if err := os.WriteFile(filepath.Join(c.dir, key), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path.Join(c.baseURL, key), nil
}
