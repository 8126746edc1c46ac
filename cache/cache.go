package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc produces a new payload for a stale slot
type RefreshFunc func(ctx context.Context) ([]byte, error)

// Observer receives cache outcomes per key. *metrics.Metrics satisfies it.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
	RefreshFailed(key string)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)      {}
func (nopObserver) CacheMiss(string)     {}
func (nopObserver) RefreshFailed(string) {}

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithObserver reports hits, misses and failed refreshes
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// Cache serves stored payloads while they are fresh and refreshes them on demand
type Cache struct {
	store    Store
	now      func() time.Time
	observer Observer
	flights  singleflight.Group
}

// New creates a Cache over store
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		now:      time.Now,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing store
func (c *Cache) Store() Store {
	return c.store
}

// GetOrRefresh returns the payload stored under key, running refresh first
// when the slot is absent or stale. A failed refresh never touches the slot.
func (c *Cache) GetOrRefresh(ctx context.Context, key string, freshness Freshness, refresh RefreshFunc) ([]byte, error) {
	payload, fresh, err := c.lookup(ctx, key, freshness)
	if err != nil {
		return nil, err
	}
	if fresh {
		return payload, nil
	}

	ch := c.flights.DoChan(key, func() (any, error) {
		// Another flight may have refreshed the slot since the first lookup
		payload, fresh, err := c.lookup(ctx, key, freshness)
		if err != nil {
			return nil, err
		}
		if fresh {
			return payload, nil
		}
		return c.refresh(ctx, key, payload != nil, refresh)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			slog.Debug("joined cache refresh", "key", key)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// lookup returns the stored payload (nil when absent) and whether it is fresh
func (c *Cache) lookup(ctx context.Context, key string, freshness Freshness) ([]byte, bool, error) {
	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache slot %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	payload := entry.Payload
	if payload == nil {
		payload = []byte{}
	}
	if freshness.IsStale(entry.ModifiedAt, payload, c.now()) {
		return payload, false, nil
	}

	slog.Debug("cache hit", "key", key, "modified_at", entry.ModifiedAt)
	c.observer.CacheHit(key)
	return payload, true, nil
}

func (c *Cache) refresh(ctx context.Context, key string, hasPrior bool, refresh RefreshFunc) ([]byte, error) {
	slog.Debug("cache miss, refreshing", "key", key, "has_prior", hasPrior)
	c.observer.CacheMiss(key)

	payload, err := refresh(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		slog.Warn("cache refresh failed", "key", key, "error", err)
		c.observer.RefreshFailed(key)
		if !hasPrior {
			return nil, &RefreshError{Key: key, Err: err}
		}
		return nil, fmt.Errorf("failed to refresh %s: %w", key, err)
	}
	if payload == nil {
		payload = []byte{}
	}

	if err := c.store.Set(ctx, key, payload, c.now()); err != nil {
		return nil, fmt.Errorf("failed to store refreshed %s: %w", key, err)
	}
	return payload, nil
}

// Slot binds a key to its freshness policy
type Slot struct {
	cache     *Cache
	key       string
	freshness Freshness
}

// Slot returns a handle on key governed by freshness
func (c *Cache) Slot(key string, freshness Freshness) *Slot {
	return &Slot{cache: c, key: key, freshness: freshness}
}

// Key returns the slot key
func (s *Slot) Key() string {
	return s.key
}

// Get is GetOrRefresh bound to the slot key and policy
func (s *Slot) Get(ctx context.Context, refresh RefreshFunc) ([]byte, error) {
	return s.cache.GetOrRefresh(ctx, s.key, s.freshness, refresh)
}
