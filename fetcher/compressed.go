package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ulikunitz/xz"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// CompressedFetcher fetches remote .gz and .xz files and returns the
// decompressed content
type CompressedFetcher struct {
	transport Transport
}

// NewCompressedFetcher creates a CompressedFetcher; a nil transport uses
// NewHTTPTransport()
func NewCompressedFetcher(transport Transport) *CompressedFetcher {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	return &CompressedFetcher{transport: transport}
}

func (f *CompressedFetcher) Name() string { return "compressed" }

// IsSupport implements Fetcher.IsSupport
func (f *CompressedFetcher) IsSupport(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	path := strings.ToLower(u.Path)
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".xz")
}

// Fetch implements Fetcher.Fetch
func (f *CompressedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	_, body, err := f.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return decompress(body)
}

// decompress sniffs gzip and xz magic bytes; other content is returned as is
func decompress(data []byte) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		var gz *gzip.Reader
		gz, err = gzip.NewReader(bytes.NewReader(data))
		if err == nil {
			defer gz.Close()
			r = gz
		}
	case bytes.HasPrefix(data, xzMagic):
		r, err = xz.NewReader(bytes.NewReader(data))
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed content: %w", err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress content: %w", err)
	}
	return out, nil
}
