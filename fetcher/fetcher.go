// Package fetcher retrieves raw source bytes for a URL. Implementations are
// chosen through a registry in priority order: bundled assets, local files,
// compressed remote files, then plain HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/scipunch/mytv/registry"
)

// Fetcher retrieves the bytes behind a URL
type Fetcher interface {
	IsSupport(url string) bool
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Registry selects a Fetcher for a URL
type Registry = registry.Registry[string, Fetcher]

// Observer receives fetch timings. *metrics.Metrics satisfies it.
type Observer interface {
	FetchObserved(fetcher string, d time.Duration, err error)
}

type namer interface {
	Name() string
}

// NewRegistry creates a registry with the given fetchers in priority order
func NewRegistry(fetchers ...Fetcher) *Registry {
	return registry.New[string, Fetcher]("fetcher", fetchers...)
}

// DefaultRegistry returns asset, file, compressed and HTTP fetchers in that
// order. assets may be nil when no bundled resources exist.
func DefaultRegistry(transport Transport, assets fs.FS) *Registry {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	fetchers := make([]Fetcher, 0, 4)
	if assets != nil {
		fetchers = append(fetchers, NewAssetFetcher(assets))
	}
	fetchers = append(fetchers,
		NewFileFetcher(),
		NewCompressedFetcher(transport),
		NewHTTPFetcher(transport),
	)
	return NewRegistry(fetchers...)
}

// Fetch selects the fetcher for url from reg and runs it
func Fetch(ctx context.Context, reg *Registry, url string, obs Observer) ([]byte, error) {
	f, err := reg.Select(url)
	if err != nil {
		return nil, err
	}

	name := Name(f)
	slog.Debug("fetching source", "url", url, "fetcher", name)

	start := time.Now()
	data, err := f.Fetch(ctx, url)
	elapsed := time.Since(start)
	if obs != nil {
		obs.FetchObserved(name, elapsed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	slog.Debug("fetched source", "url", url, "fetcher", name, "bytes", len(data), "duration", elapsed)
	return data, nil
}

// Name returns a short label for a fetcher
func Name(f Fetcher) string {
	if n, ok := f.(namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", f)
}
