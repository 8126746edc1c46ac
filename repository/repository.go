// Package repository joins the cache, fetchers and parsers into the two
// feeds the application consumes: the programme guide and the playlist.
package repository

import (
	"time"

	"github.com/scipunch/mytv/fetcher"
	"github.com/scipunch/mytv/filter"
)

// Cache slot keys
const (
	KeyEpgXML  = "epg.xml"
	KeyEpgJSON = "epg.json"
	KeyIptv    = "iptv.txt"
)

type options struct {
	loc        *time.Location
	now        func() time.Time
	observer   fetcher.Observer
	predicates []filter.Predicate
}

// Option configures a repository
type Option func(*options)

// WithLocation sets the zone for the refresh gate, day rollover and bare
// guide timestamps
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFetchObserver reports fetch timings
func WithFetchObserver(obs fetcher.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithChannelPredicates adds playlist filters applied after parsing
func WithChannelPredicates(predicates ...filter.Predicate) Option {
	return func(o *options) {
		o.predicates = append(o.predicates, predicates...)
	}
}

func newOptions(opts []Option) options {
	o := options{loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
