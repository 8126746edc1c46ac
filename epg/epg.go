package epg

import "time"

// Epg is a guide channel with its programmes in document order
type Epg struct {
	Channel    string         `json:"channel"`
	Programmes []EpgProgramme `json:"programmes"`
}

// EpgProgramme is a single scheduled programme. StartAt and EndAt are epoch
// milliseconds; zero means the source timestamp could not be read.
type EpgProgramme struct {
	StartAt int64  `json:"startAt"`
	EndAt   int64  `json:"endAt"`
	Title   string `json:"title"`
}

// EpgList is the parsed guide, ordered by first appearance of each channel
type EpgList []Epg

// ProgrammeCount returns the number of programmes across all channels
func (l EpgList) ProgrammeCount() int {
	n := 0
	for _, e := range l {
		n += len(e.Programmes)
	}
	return n
}

// Find returns the guide entry for a channel display name
func (l EpgList) Find(channel string) (Epg, bool) {
	for _, e := range l {
		if e.Channel == channel {
			return e, true
		}
	}
	return Epg{}, false
}

// Current returns the programme airing at the given instant
func (e Epg) Current(at time.Time) (EpgProgramme, bool) {
	ms := at.UnixMilli()
	for _, p := range e.Programmes {
		if p.StartAt <= ms && ms < p.EndAt {
			return p, true
		}
	}
	return EpgProgramme{}, false
}
