package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scipunch/mytv/cache"
	"github.com/scipunch/mytv/fetcher"
	"github.com/scipunch/mytv/filter"
	"github.com/scipunch/mytv/iptv"
	"github.com/scipunch/mytv/parser"
)

// IptvRepository serves the grouped playlist. Only the raw playlist is
// cached; parsing runs on every call.
type IptvRepository struct {
	cache    *cache.Cache
	fetchers *fetcher.Registry
	parsers  *parser.Registry
	opts     options
}

// NewIptvRepository creates an IptvRepository
func NewIptvRepository(c *cache.Cache, fetchers *fetcher.Registry, parsers *parser.Registry, opts ...Option) *IptvRepository {
	return &IptvRepository{
		cache:    c,
		fetchers: fetchers,
		parsers:  parsers,
		opts:     newOptions(opts),
	}
}

// GetIptvGroupList returns the playlist at sourceURL, refetching it once the
// cached copy is cacheTTL old. simplify keeps only mainstream channels.
func (r *IptvRepository) GetIptvGroupList(ctx context.Context, sourceURL string, cacheTTL time.Duration, simplify bool) (iptv.IptvGroupList, error) {
	payload, err := r.cache.GetOrRefresh(ctx, KeyIptv, cache.TTL(cacheTTL), func(ctx context.Context) ([]byte, error) {
		return fetcher.Fetch(ctx, r.fetchers, sourceURL, r.opts.observer)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist from %q: %w", sourceURL, err)
	}

	p, err := r.parsers.Select(sourceURL, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to select playlist parser: %w", err)
	}
	groups, err := p.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse playlist from %q: %w", sourceURL, err)
	}

	if simplify {
		groups = filter.Simplify(groups)
	}
	if len(r.opts.predicates) > 0 {
		groups = filter.Apply(groups, r.opts.predicates...)
	}

	slog.Debug("playlist ready", "url", sourceURL, "groups", len(groups), "channels", groups.ChannelCount(), "simplify", simplify)
	return groups, nil
}
