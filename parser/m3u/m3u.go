// Package m3u parses extended M3U playlists
package m3u

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/scipunch/mytv/iptv"
)

const maxLineSize = 1 << 20 // 1 MiB per line

var bom = []byte("\xef\xbb\xbf")

type Parser struct{}

func New() Parser {
	return Parser{}
}

// IsSupport accepts content starting with #EXTM3U or a .m3u/.m3u8 URL
func (p Parser) IsSupport(rawURL string, content []byte) bool {
	if bytes.HasPrefix(bytes.TrimSpace(bytes.TrimPrefix(content, bom)), []byte("#EXTM3U")) {
		return true
	}
	path := strings.ToLower(urlPath(rawURL))
	return strings.HasSuffix(path, ".m3u") || strings.HasSuffix(path, ".m3u8")
}

// Parse reads #EXTINF entries. The group comes from group-title or a
// preceding #EXTGRP line; the guide name from tvg-name. An #EXTINF without a
// stream URL is dropped.
func (p Parser) Parse(content []byte) (iptv.IptvGroupList, error) {
	b := iptv.NewBuilder()

	sc := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(content, bom)))
	sc.Buffer(nil, maxLineSize)

	var (
		current *entry
		extgrp  string
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTINF:"):
			e := parseExtinf(line)
			current = &e
			extgrp = ""
		case strings.HasPrefix(line, "#EXTGRP:"):
			extgrp = strings.TrimSpace(strings.TrimPrefix(line, "#EXTGRP:"))
		case strings.HasPrefix(line, "#"):
		case current != nil:
			group := current.group
			if group == "" {
				group = extgrp
			}
			name := current.name
			if name == "" {
				name = current.tvgName
			}
			if name == "" {
				current = nil
				continue
			}
			b.Add(group, iptv.Iptv{
				Name:        name,
				ChannelName: current.tvgName,
				URLs:        []string{line},
			})
			current = nil
			extgrp = ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan m3u playlist: %w", err)
	}

	return b.Groups(), nil
}

type entry struct {
	name    string
	tvgName string
	group   string
}

// parseExtinf splits `#EXTINF:-1 key="value" ...,Display Name` at the first
// comma outside quotes
func parseExtinf(line string) entry {
	var e entry

	body := strings.TrimPrefix(line, "#EXTINF:")
	inQuotes := false
	split := -1
	for i, r := range body {
		if r == '"' {
			inQuotes = !inQuotes
		}
		if r == ',' && !inQuotes {
			split = i
			break
		}
	}

	attrs := body
	if split >= 0 {
		attrs = body[:split]
		e.name = strings.TrimSpace(body[split+1:])
	}
	e.tvgName = extractAttribute(attrs, "tvg-name")
	e.group = extractAttribute(attrs, "group-title")
	return e
}

func extractAttribute(attrs, attr string) string {
	marker := attr + `="`
	i := strings.Index(attrs, marker)
	if i < 0 {
		return ""
	}
	rest := attrs[i+len(marker):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:j])
}

func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	return rawURL
}
