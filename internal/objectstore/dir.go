package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/taxwise/taxwise-server/internal/model"
)

// DirStore serves bucket objects from a local directory (local build target).
// Signed URLs are always remote and still go over HTTP.
type DirStore struct {
	root   string
	signed *resty.Client
}

// NewDirStore roots object paths at dir.
func NewDirStore(dir string, timeout time.Duration) *DirStore {
	return &DirStore{root: dir, signed: NewURLClient(timeout)}
}

// FetchBytes implements Fetcher.
func (s *DirStore) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(path, "/")))
	if path == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("invalid object path %q", path)
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read object %s: %w", path, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return data, nil
}

// FetchURL implements Fetcher.
func (s *DirStore) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	return fetchURL(ctx, s.signed, rawURL)
}

// HealthPing implements health.HealthPinger; the root must be a readable directory.
func (s *DirStore) HealthPing(ctx context.Context) error {
	fi, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("object store root %s is not a directory", s.root)
	}
	return nil
}
