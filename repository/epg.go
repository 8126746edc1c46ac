package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/scipunch/mytv/cache"
	"github.com/scipunch/mytv/epg"
	"github.com/scipunch/mytv/fetcher"
)

const kindEpg = "epg"

// EpgRepository serves the parsed programme guide. The raw document and the
// parsed list live in separate slots; the parsed list is rebuilt once per
// local day or when the source or channel filter changes.
type EpgRepository struct {
	cache    *cache.Cache
	fetchers *fetcher.Registry
	opts     options
}

// NewEpgRepository creates an EpgRepository
func NewEpgRepository(c *cache.Cache, fetchers *fetcher.Registry, opts ...Option) *EpgRepository {
	return &EpgRepository{
		cache:    c,
		fetchers: fetchers,
		opts:     newOptions(opts),
	}
}

// GetEpgList returns the guide for xmlURL restricted to the channels named
// in filter (all channels when empty). Before refreshHour local time it
// returns an empty list without touching the cache or the network. An
// empty xmlURL is an empty guide.
func (r *EpgRepository) GetEpgList(ctx context.Context, xmlURL string, filter []string, refreshHour int) (epg.EpgList, error) {
	now := r.opts.now().In(r.opts.loc)
	if now.Hour() < refreshHour {
		slog.Debug("guide refresh gated", "hour", now.Hour(), "refresh_hour", refreshHour)
		return epg.EpgList{}, nil
	}

	source := fingerprint(xmlURL, filter)
	raw := r.cache.Slot(KeyEpgXML, cache.TTL(0))
	structured := r.cache.Slot(KeyEpgJSON, cache.AnyOf(cache.DayChanged(r.opts.loc), sourceChanged(source)))

	payload, err := structured.Get(ctx, func(ctx context.Context) ([]byte, error) {
		doc, err := raw.Get(ctx, func(ctx context.Context) ([]byte, error) {
			if xmlURL == "" {
				return []byte{}, nil
			}
			return fetcher.Fetch(ctx, r.fetchers, xmlURL, r.opts.observer)
		})
		if err != nil {
			return nil, err
		}

		list, err := epg.Parse(doc, epg.WithChannelFilter(filter), epg.WithLocation(r.opts.loc))
		if err != nil {
			return nil, err
		}
		slog.Info("guide parsed", "url", xmlURL, "channels", len(list), "programmes", list.ProgrammeCount())
		return cache.Encode(kindEpg, source, list)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get guide from %q: %w", xmlURL, err)
	}

	list, err := cache.Decode[epg.EpgList](kindEpg, payload)
	if err != nil {
		return nil, &cache.ParseError{Key: KeyEpgJSON, Err: err}
	}
	if list == nil {
		list = epg.EpgList{}
	}
	return list, nil
}

// sourceChanged is stale when the cached payload is not a guide list or was
// built from another source fingerprint
func sourceChanged(source string) cache.Predicate {
	return func(_ time.Time, payload []byte) bool {
		env, err := cache.Open(payload)
		return err != nil || env.Kind != kindEpg || env.Source != source
	}
}

// fingerprint identifies a guide source and channel filter; filter order
// does not matter
func fingerprint(url string, filter []string) string {
	names := slices.Clone(filter)
	slices.Sort(names)

	h := sha256.New()
	h.Write([]byte(url))
	for _, n := range names {
		h.Write([]byte{0})
		h.Write([]byte(n))
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
