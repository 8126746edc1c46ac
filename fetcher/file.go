package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// FileFetcher reads file:// URLs from the local filesystem, decompressing
// gzip and xz files
type FileFetcher struct{}

// NewFileFetcher creates a FileFetcher
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (f *FileFetcher) Name() string { return "file" }

// IsSupport implements Fetcher.IsSupport
func (f *FileFetcher) IsSupport(url string) bool {
	return strings.HasPrefix(url, "file://")
}

// Fetch implements Fetcher.Fetch
func (f *FileFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(rawURL, "file://")
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return decompress(data)
}
