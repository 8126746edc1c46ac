package fetcher

import (
	"context"
	"strings"
)

// HTTPFetcher fetches http and https URLs through a Transport
type HTTPFetcher struct {
	transport Transport
}

// NewHTTPFetcher creates an HTTPFetcher; a nil transport uses NewHTTPTransport()
func NewHTTPFetcher(transport Transport) *HTTPFetcher {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	return &HTTPFetcher{transport: transport}
}

func (f *HTTPFetcher) Name() string { return "http" }

// IsSupport implements Fetcher.IsSupport
func (f *HTTPFetcher) IsSupport(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Fetch implements Fetcher.Fetch
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	_, body, err := f.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return body, nil
}
