package filter

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/scipunch/mytv/iptv"
)

// Match is a channel found by Search
type Match struct {
	Group          string
	Channel        iptv.Iptv
	Score          int   // higher is better
	MatchedIndexes []int // rune positions in the lowercase name
}

// channelIndex implements fuzzy.Source over lowercase channel names
type channelIndex struct {
	groups []string
	items  []iptv.Iptv
	lower  []string
}

func (idx *channelIndex) String(i int) string { return idx.lower[i] }

func (idx *channelIndex) Len() int { return len(idx.items) }

func newChannelIndex(groups iptv.IptvGroupList) *channelIndex {
	idx := &channelIndex{}
	for _, g := range groups {
		for _, ch := range g.List {
			idx.groups = append(idx.groups, g.Name)
			idx.items = append(idx.items, ch)
			idx.lower = append(idx.lower, strings.ToLower(ch.Name))
		}
	}
	return idx
}

// Search fuzzy-matches query against channel names, best first. limit <= 0
// returns every match.
func Search(groups iptv.IptvGroupList, query string, limit int) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	idx := newChannelIndex(groups)
	found := fuzzy.FindFrom(query, idx)

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	matches := make([]Match, 0, len(found))
	for _, m := range found {
		matches = append(matches, Match{
			Group:          idx.groups[m.Index],
			Channel:        idx.items[m.Index],
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
	}
	return matches
}
