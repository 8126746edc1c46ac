// Package structured parses playlists published as JSON or YAML documents
// of groups: [{name, list: [{name, channelName, urls}]}]
package structured

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scipunch/mytv/iptv"
)

type Parser struct{}

func New() Parser {
	return Parser{}
}

type document []group

type group struct {
	Name string    `yaml:"name"`
	List []channel `yaml:"list"`
}

type channel struct {
	Name        string   `yaml:"name"`
	ChannelName string   `yaml:"channelName"`
	URL         string   `yaml:"url"`
	URLs        []string `yaml:"urls"`
}

// IsSupport accepts JSON-looking content or a .json/.yaml/.yml URL
func (p Parser) IsSupport(rawURL string, content []byte) bool {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")))
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return true
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Parse decodes the document with yaml.v3, which also reads JSON. A single
// object is treated as a one-group document.
func (p Parser) Parse(content []byte) (iptv.IptvGroupList, error) {
	var doc document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		var single group
		if errSingle := yaml.Unmarshal(content, &single); errSingle != nil {
			return nil, fmt.Errorf("failed to decode structured playlist: %w", err)
		}
		doc = document{single}
	}

	b := iptv.NewBuilder()
	for _, g := range doc {
		for _, ch := range g.List {
			name := strings.TrimSpace(ch.Name)
			if name == "" {
				continue
			}
			urls := ch.URLs
			if ch.URL != "" {
				urls = append([]string{ch.URL}, urls...)
			}
			if len(urls) == 0 {
				continue
			}
			b.Add(strings.TrimSpace(g.Name), iptv.Iptv{
				Name:        name,
				ChannelName: strings.TrimSpace(ch.ChannelName),
				URLs:        urls,
			})
		}
	}
	return b.Groups(), nil
}
