// Package parser turns raw playlist bytes into grouped channel lists. The
// parser for a source is picked by URL and content sniffing, in registry
// order.
package parser

import (
	"github.com/scipunch/mytv/iptv"
	"github.com/scipunch/mytv/parser/m3u"
	"github.com/scipunch/mytv/parser/structured"
	"github.com/scipunch/mytv/parser/txt"
	"github.com/scipunch/mytv/registry"
)

type Type = string

var (
	M3U        = Type("m3u")
	Structured = Type("structured")
	TXT        = Type("txt")
)

type Parser interface {
	IsSupport(url string, content []byte) bool
	Parse(content []byte) (iptv.IptvGroupList, error)
}

// Source is what a parser is selected by
type Source struct {
	URL     string
	Content []byte
}

type candidate struct {
	Parser
}

func (c candidate) IsSupport(s Source) bool {
	return c.Parser.IsSupport(s.URL, s.Content)
}

// Registry selects a Parser for a source
type Registry struct {
	inner *registry.Registry[Source, candidate]
}

// NewRegistry creates a registry with the given parsers in priority order
func NewRegistry(parsers ...Parser) *Registry {
	inner := registry.New[Source, candidate]("parser", wrap(parsers)...)
	inner.WithDescriber(func(s Source) string { return s.URL })
	return &Registry{inner: inner}
}

// DefaultRegistry returns m3u, structured and txt parsers in that order.
// txt accepts anything and must stay last.
func DefaultRegistry() *Registry {
	return NewRegistry(m3u.New(), structured.New(), txt.New())
}

// New returns the parser for a type
func New(t Type) (Parser, bool) {
	switch t {
	case M3U:
		return m3u.New(), true
	case Structured:
		return structured.New(), true
	case TXT:
		return txt.New(), true
	default:
		return nil, false
	}
}

// Prepend registers parsers ahead of the existing ones
func (r *Registry) Prepend(parsers ...Parser) {
	r.inner.Prepend(wrap(parsers)...)
}

// Append registers parsers after the existing ones
func (r *Registry) Append(parsers ...Parser) {
	r.inner.Append(wrap(parsers)...)
}

// Order returns the parsers in selection order
func (r *Registry) Order() []Parser {
	candidates := r.inner.Order()
	parsers := make([]Parser, len(candidates))
	for i, c := range candidates {
		parsers[i] = c.Parser
	}
	return parsers
}

// Select returns the first parser supporting url and content
func (r *Registry) Select(url string, content []byte) (Parser, error) {
	c, err := r.inner.Select(Source{URL: url, Content: content})
	if err != nil {
		return nil, err
	}
	return c.Parser, nil
}

func wrap(parsers []Parser) []candidate {
	candidates := make([]candidate, len(parsers))
	for i, p := range parsers {
		candidates[i] = candidate{p}
	}
	return candidates
}
