package fetcher

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
)

// AssetPrefix marks a URL that names a bundled resource
const AssetPrefix = "asset://"

// AssetFetcher reads bundled resources without network I/O
type AssetFetcher struct {
	fsys fs.FS
}

// NewAssetFetcher creates an AssetFetcher over fsys
func NewAssetFetcher(fsys fs.FS) *AssetFetcher {
	return &AssetFetcher{fsys: fsys}
}

func (f *AssetFetcher) Name() string { return "asset" }

// IsSupport implements Fetcher.IsSupport
func (f *AssetFetcher) IsSupport(url string) bool {
	return strings.HasPrefix(url, AssetPrefix)
}

// Fetch implements Fetcher.Fetch
func (f *AssetFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(strings.TrimPrefix(url, AssetPrefix), "/")
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", name, err)
	}
	return data, nil
}
