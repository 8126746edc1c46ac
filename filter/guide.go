package filter

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/scipunch/mytv/epg"
	"github.com/scipunch/mytv/iptv"
)

// GuideFor finds the guide entry of a playlist channel. Exact matches on
// ChannelName then Name win; otherwise the closest guide name that contains
// the normalized channel name is used ("cctv1" matches "CCTV-1").
func GuideFor(ch iptv.Iptv, guide epg.EpgList) (epg.Epg, bool) {
	for _, name := range []string{ch.ChannelName, ch.Name} {
		if name == "" {
			continue
		}
		if e, ok := guide.Find(name); ok {
			return e, true
		}
	}

	needle := normalize(ch.ChannelName)
	if needle == "" {
		needle = normalize(ch.Name)
	}
	if needle == "" || len(guide) == 0 {
		return epg.Epg{}, false
	}

	names := make([]string, len(guide))
	for i, e := range guide {
		names[i] = normalize(e.Channel)
	}

	ranks := fuzzy.RankFindNormalizedFold(needle, names)
	if len(ranks) == 0 {
		return epg.Epg{}, false
	}
	sort.Sort(ranks)

	best := ranks[0]
	// Loose subsequence hits across long names are noise
	if best.Distance > len(needle) {
		return epg.Epg{}, false
	}
	return guide[best.OriginalIndex], true
}

func normalize(name string) string {
	return strings.NewReplacer("-", "", " ", "", "_", "").Replace(strings.TrimSpace(name))
}
