// Package txt parses "genre" channel lists:
//
//	Group,#genre#
//	Name,url[#url2...]
package txt

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/scipunch/mytv/iptv"
)

const (
	genreMarker = "#genre#"
	maxLineSize = 1 << 20
)

type Parser struct{}

func New() Parser {
	return Parser{}
}

// IsSupport accepts every source; register it last
func (p Parser) IsSupport(string, []byte) bool {
	return true
}

// Parse reads one channel per line. Lines without a comma or without a URL
// are skipped. Channels before the first group header go to
// iptv.DefaultGroup.
func (p Parser) Parse(content []byte) (iptv.IptvGroupList, error) {
	b := iptv.NewBuilder()

	sc := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	sc.Buffer(nil, maxLineSize)

	group := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		name, rest, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		rest = strings.TrimSpace(rest)

		if rest == genreMarker {
			group = name
			continue
		}
		if name == "" {
			continue
		}

		var urls []string
		for _, u := range strings.Split(rest, "#") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			continue
		}
		b.Add(group, iptv.Iptv{Name: name, URLs: urls})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan txt playlist: %w", err)
	}

	return b.Groups(), nil
}
