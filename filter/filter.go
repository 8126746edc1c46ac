package filter

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/scipunch/mytv/iptv"
)

// Predicate reports whether a channel is kept
type Predicate func(ch iptv.Iptv) bool

// Apply keeps the channels accepted by every predicate. Groups left empty
// are dropped; group and channel order is preserved. The input is not
// modified.
func Apply(groups iptv.IptvGroupList, predicates ...Predicate) iptv.IptvGroupList {
	result := make(iptv.IptvGroupList, 0, len(groups))
	for _, g := range groups {
		var kept []iptv.Iptv
		for _, ch := range g.List {
			if keep(ch, predicates) {
				kept = append(kept, ch)
			}
		}
		if len(kept) > 0 {
			result = append(result, iptv.IptvGroup{Name: g.Name, List: kept})
		}
	}
	return result
}

func keep(ch iptv.Iptv, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p(ch) {
			return false
		}
	}
	return true
}

// Simplify keeps national (CCTV*) and satellite (*卫视) channels
func Simplify(groups iptv.IptvGroupList) iptv.IptvGroupList {
	return Apply(groups, IsMainstream)
}

// IsMainstream reports whether the channel name starts with "CCTV" in any
// case or ends with "卫视"
func IsMainstream(ch iptv.Iptv) bool {
	return strings.HasPrefix(strings.ToUpper(ch.Name), "CCTV") || strings.HasSuffix(ch.Name, "卫视")
}

// ExcludePatterns drops channels whose name matches any of the patterns.
// Invalid patterns are logged and ignored.
func ExcludePatterns(patterns []string) Predicate {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("invalid regex pattern in filter", "pattern", pattern, "error", err)
			continue
		}
		compiled = append(compiled, re)
	}

	return func(ch iptv.Iptv) bool {
		for _, re := range compiled {
			if re.MatchString(ch.Name) {
				return false
			}
		}
		return true
	}
}
