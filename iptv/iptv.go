package iptv

import "slices"

// DefaultGroup holds entries whose source names no group
const DefaultGroup = "Other"

// Iptv is a playable channel. URLs keeps every stream address seen for the
// same name within a group, in document order.
type Iptv struct {
	Name        string   `json:"name" yaml:"name"`
	ChannelName string   `json:"channelName,omitempty" yaml:"channelName,omitempty"`
	URLs        []string `json:"urls" yaml:"urls"`
}

// IptvGroup is a named, ordered set of channels
type IptvGroup struct {
	Name string `json:"name" yaml:"name"`
	List []Iptv `json:"list" yaml:"list"`
}

// IptvGroupList is the parsed playlist
type IptvGroupList []IptvGroup

// ChannelCount returns the number of channels across all groups
func (l IptvGroupList) ChannelCount() int {
	n := 0
	for _, g := range l {
		n += len(g.List)
	}
	return n
}

// All flattens the groups into a single ordered channel list
func (l IptvGroupList) All() []Iptv {
	all := make([]Iptv, 0, l.ChannelCount())
	for _, g := range l {
		all = append(all, g.List...)
	}
	return all
}

// Builder accumulates channels into groups preserving first-seen order of
// both groups and channel names. Channels repeating a name inside a group
// contribute their URLs to the first entry.
type Builder struct {
	groups  IptvGroupList
	byGroup map[string]int
	byName  map[string]map[string]int
}

// NewBuilder creates an empty Builder
func NewBuilder() *Builder {
	return &Builder{
		byGroup: make(map[string]int),
		byName:  make(map[string]map[string]int),
	}
}

// Add appends a channel to the named group
func (b *Builder) Add(group string, ch Iptv) {
	if group == "" {
		group = DefaultGroup
	}
	gi, ok := b.byGroup[group]
	if !ok {
		gi = len(b.groups)
		b.byGroup[group] = gi
		b.byName[group] = make(map[string]int)
		b.groups = append(b.groups, IptvGroup{Name: group})
	}
	g := &b.groups[gi]
	if ci, ok := b.byName[group][ch.Name]; ok {
		existing := &g.List[ci]
		existing.URLs = append(existing.URLs, ch.URLs...)
		if existing.ChannelName == "" {
			existing.ChannelName = ch.ChannelName
		}
		return
	}
	if ch.ChannelName == "" {
		ch.ChannelName = ch.Name
	}
	ch.URLs = slices.Clone(ch.URLs)
	b.byName[group][ch.Name] = len(g.List)
	g.List = append(g.List, ch)
}

// Groups returns the accumulated groups
func (b *Builder) Groups() IptvGroupList {
	if b.groups == nil {
		return IptvGroupList{}
	}
	return b.groups
}
