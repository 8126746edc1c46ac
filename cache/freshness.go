package cache

import "time"

// Freshness decides whether a stored payload must be refreshed
type Freshness interface {
	IsStale(modifiedAt time.Time, payload []byte, now time.Time) bool
}

type ttl time.Duration

// TTL is stale once the payload is at least d old. TTL(0) is always stale.
func TTL(d time.Duration) Freshness {
	return ttl(d)
}

func (t ttl) IsStale(modifiedAt time.Time, _ []byte, now time.Time) bool {
	return now.Sub(modifiedAt) >= time.Duration(t)
}

// Predicate reports staleness from the slot content alone
type Predicate func(modifiedAt time.Time, payload []byte) bool

func (p Predicate) IsStale(modifiedAt time.Time, payload []byte, _ time.Time) bool {
	return p(modifiedAt, payload)
}

type dayChanged struct {
	loc *time.Location
}

// DayChanged is stale once the calendar date in loc differs from the one
// the payload was written on
func DayChanged(loc *time.Location) Freshness {
	if loc == nil {
		loc = time.UTC
	}
	return dayChanged{loc: loc}
}

func (d dayChanged) IsStale(modifiedAt time.Time, _ []byte, now time.Time) bool {
	my, mm, md := modifiedAt.In(d.loc).Date()
	ny, nm, nd := now.In(d.loc).Date()
	return my != ny || mm != nm || md != nd
}

type anyOf []Freshness

// AnyOf is stale when any of the given policies is stale
func AnyOf(policies ...Freshness) Freshness {
	return anyOf(policies)
}

func (a anyOf) IsStale(modifiedAt time.Time, payload []byte, now time.Time) bool {
	for _, f := range a {
		if f.IsStale(modifiedAt, payload, now) {
			return true
		}
	}
	return false
}
