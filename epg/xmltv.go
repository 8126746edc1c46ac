package epg

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// Parser reads XMLTV guides in a single forward pass
type Parser struct {
	filter map[string]struct{}
	loc    *time.Location
}

// ParseOption configures a Parser
type ParseOption func(*Parser)

// WithChannelFilter keeps only channels whose display name is listed. An
// empty list keeps every channel.
func WithChannelFilter(names []string) ParseOption {
	return func(p *Parser) {
		if len(names) == 0 {
			p.filter = nil
			return
		}
		p.filter = make(map[string]struct{}, len(names))
		for _, n := range names {
			p.filter[n] = struct{}{}
		}
	}
}

// WithLocation sets the zone for timestamps that carry no offset
func WithLocation(loc *time.Location) ParseOption {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// NewParser creates a Parser
func NewParser(opts ...ParseOption) *Parser {
	p := &Parser{loc: time.UTC}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is a shorthand for NewParser(opts...).Parse over content
func Parse(content []byte, opts ...ParseOption) (EpgList, error) {
	return NewParser(opts...).Parse(bytes.NewReader(content))
}

type element int

const (
	elementNone element = iota
	elementChannel
	elementProgramme
)

// parseState tracks the element being read. The display name of a channel
// and the title of a programme come from the text of their first child
// element; once that child closes nothing else is read.
type parseState struct {
	in        element
	depth     int  // child element nesting inside in
	textTaken bool // first child closed or text already read
	text      string

	channelID string
	programme EpgProgramme
	target    string

	list  EpgList
	index map[string]int // channel id -> position in list
	seen  map[string]struct{}
}

// Parse reads a guide document. Channels keep their document order; the
// source channel ids are dropped from the result.
func (p *Parser) Parse(r io.Reader) (EpgList, error) {
	st := &parseState{
		list:  EpgList{},
		index: make(map[string]int),
		seen:  make(map[string]struct{}),
	}

	dec := xpp.NewXMLPullParser(r, false, charset.NewReaderLabel)
	skipped := 0
	for {
		event, err := dec.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to parse guide: %w", err)
		}

		switch event {
		case xpp.EndDocument:
			slog.Debug("guide parsed", "channels", len(st.list), "programmes", st.list.ProgrammeCount(), "skipped_programmes", skipped)
			return st.list, nil

		case xpp.StartTag:
			if st.in != elementNone {
				st.depth++
				continue
			}
			switch dec.Name {
			case "channel":
				st.begin(elementChannel)
				st.channelID = dec.Attribute("id")
			case "programme":
				st.begin(elementProgramme)
				st.target = dec.Attribute("channel")
				st.programme = EpgProgramme{
					StartAt: ParseTimestamp(dec.Attribute("start"), p.loc),
					EndAt:   ParseTimestamp(dec.Attribute("stop"), p.loc),
				}
			}

		case xpp.Text:
			if st.in != elementNone && !st.textTaken {
				if text := strings.TrimSpace(dec.Text); text != "" {
					st.text = text
					st.textTaken = true
				}
			}

		case xpp.EndTag:
			if st.depth > 0 {
				if st.depth == 1 {
					st.textTaken = true
				}
				st.depth--
				continue
			}
			switch {
			case dec.Name == "channel" && st.in == elementChannel:
				p.register(st)
				st.in = elementNone
			case dec.Name == "programme" && st.in == elementProgramme:
				if i, ok := st.index[st.target]; ok {
					st.programme.Title = st.text
					st.list[i].Programmes = append(st.list[i].Programmes, st.programme)
				} else {
					skipped++
				}
				st.in = elementNone
			}
		}
	}
}

func (st *parseState) begin(e element) {
	st.in = e
	st.depth = 0
	st.textTaken = false
	st.text = ""
}

// register adds the channel just closed. A repeated id keeps the first entry.
func (p *Parser) register(st *parseState) {
	if _, dup := st.seen[st.channelID]; dup {
		return
	}
	st.seen[st.channelID] = struct{}{}

	if p.filter != nil {
		if _, ok := p.filter[st.text]; !ok {
			return
		}
	}
	st.index[st.channelID] = len(st.list)
	st.list = append(st.list, Epg{Channel: st.text, Programmes: []EpgProgramme{}})
}
