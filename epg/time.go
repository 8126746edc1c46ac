package epg

import (
	"strings"
	"time"
)

const (
	layoutOffset        = "20060102150405 -0700"
	layoutOffsetNoSpace = "20060102150405-0700"
	layoutBare          = "20060102150405"
)

// ParseTimestamp converts an XMLTV `yyyyMMddHHmmss ±HHMM` timestamp to epoch
// milliseconds. A bare 14-digit value is read in loc. Anything shorter than
// 14 characters or unparseable yields 0.
func ParseTimestamp(raw string, loc *time.Location) int64 {
	s := strings.TrimSpace(raw)
	if len(s) < len(layoutBare) {
		return 0
	}

	for _, layout := range []string{layoutOffset, layoutOffsetNoSpace} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}

	if len(s) == len(layoutBare) {
		if loc == nil {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layoutBare, s, loc); err == nil {
			return t.UnixMilli()
		}
	}

	return 0
}
