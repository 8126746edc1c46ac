package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scipunch/mytv/epg"
	"github.com/scipunch/mytv/filter"
	"github.com/scipunch/mytv/iptv"
)

const searchLimit = 20

type summary struct {
	GuideChannels int `json:"guideChannels"`
	Programmes    int `json:"programmes"`
	Groups        int `json:"groups"`
	Channels      int `json:"channels"`
	WithGuide     int `json:"withGuide"`
}

type airing struct {
	Group   string `json:"group"`
	Channel string `json:"channel"`
	Title   string `json:"title"`
	StartAt int64  `json:"startAt"`
	EndAt   int64  `json:"endAt"`
}

type match struct {
	Group string   `json:"group"`
	Name  string   `json:"name"`
	Score int      `json:"score"`
	URLs  []string `json:"urls"`
}

type report struct {
	Guide    epg.EpgList        `json:"guide"`
	Playlist iptv.IptvGroupList `json:"playlist"`
	Summary  summary            `json:"summary"`
	Airing   []airing           `json:"airing,omitempty"`
	Query    string             `json:"query,omitempty"`
	Matches  []match            `json:"matches,omitempty"`

	loc *time.Location
}

// build fills the summary, the now-airing list and the search results
func (r *report) build(query string, now time.Time) {
	r.loc = now.Location()
	r.Summary = summary{
		GuideChannels: len(r.Guide),
		Programmes:    r.Guide.ProgrammeCount(),
		Groups:        len(r.Playlist),
		Channels:      r.Playlist.ChannelCount(),
	}

	r.Airing = nil
	for _, g := range r.Playlist {
		for _, ch := range g.List {
			guide, ok := filter.GuideFor(ch, r.Guide)
			if !ok {
				continue
			}
			r.Summary.WithGuide++
			if p, ok := guide.Current(now); ok {
				r.Airing = append(r.Airing, airing{
					Group:   g.Name,
					Channel: ch.Name,
					Title:   p.Title,
					StartAt: p.StartAt,
					EndAt:   p.EndAt,
				})
			}
		}
	}

	r.Query = query
	r.Matches = nil
	if query == "" {
		return
	}
	for _, m := range filter.Search(r.Playlist, query, searchLimit) {
		r.Matches = append(r.Matches, match{
			Group: m.Group,
			Name:  m.Channel.Name,
			Score: m.Score,
			URLs:  m.Channel.URLs,
		})
	}
}

func (r *report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *report) writeText(w io.Writer) error {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "guide: %d channels, %d programmes\n", s.GuideChannels, s.Programmes)
	fmt.Fprintf(&b, "playlist: %d groups, %d channels, %d with guide\n", s.Groups, s.Channels, s.WithGuide)

	if len(r.Airing) > 0 {
		fmt.Fprintln(&b, "now airing:")
		for _, a := range r.Airing {
			fmt.Fprintf(&b, "  %s  %s (%s-%s)\n", a.Channel, a.Title, r.clock(a.StartAt), r.clock(a.EndAt))
		}
	}

	if r.Query != "" {
		fmt.Fprintf(&b, "search %q: %d matches\n", r.Query, len(r.Matches))
		for _, m := range r.Matches {
			url := ""
			if len(m.URLs) > 0 {
				url = m.URLs[0]
			}
			fmt.Fprintf(&b, "  %s / %s  %s\n", m.Group, m.Name, url)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *report) clock(ms int64) string {
	if ms == 0 {
		return "??:??"
	}
	loc := r.loc
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format("15:04")
}
