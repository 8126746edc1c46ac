package epg

import (
	"strings"
	"testing"
	"time"
)

const sampleGuide = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE tv SYSTEM "xmltv.dtd">
<tv generator-info-name="test">
  <channel id="1">
    <display-name lang="en">News</display-name>
  </channel>
  <programme channel="1" start="20240101060000 +0000" stop="20240101063000 +0000">
    <title lang="en">Morning</title>
    <desc>Headlines</desc>
  </programme>
  <programme channel="99" start="20240101060000 +0000" stop="20240101063000 +0000">
    <title>Orphan</title>
  </programme>
</tv>`

func TestParse_RoundTrip(t *testing.T) {
	list, err := Parse([]byte(sampleGuide))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("Got %d channels, want 1", len(list))
	}
	if list[0].Channel != "News" {
		t.Errorf("Channel = %q, want News", list[0].Channel)
	}
	if len(list[0].Programmes) != 1 {
		t.Fatalf("Got %d programmes, want 1", len(list[0].Programmes))
	}

	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	want := EpgProgramme{
		StartAt: start.UnixMilli(),
		EndAt:   start.Add(30 * time.Minute).UnixMilli(),
		Title:   "Morning",
	}
	if got := list[0].Programmes[0]; got != want {
		t.Errorf("Programme = %+v, want %+v", got, want)
	}
}

func TestParse_ShortTimestamp(t *testing.T) {
	doc := `<tv>
  <channel id="1"><display-name>News</display-name></channel>
  <programme channel="1" start="202401010600" stop="202401010630"><title>Morning</title></programme>
</tv>`

	list, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	p := list[0].Programmes[0]
	if p.StartAt != 0 || p.EndAt != 0 {
		t.Errorf("Programme = %+v, want zero timestamps", p)
	}
	if p.Title != "Morning" {
		t.Errorf("Title = %q", p.Title)
	}
}

func TestParse_ChannelFilter(t *testing.T) {
	doc := `<tv>
  <channel id="a"><display-name>CCTV-1</display-name></channel>
  <channel id="b"><display-name>CCTV-2</display-name></channel>
  <channel id="c"><display-name>湖南卫视</display-name></channel>
  <programme channel="a" start="20240101060000 +0800" stop="20240101070000 +0800"><title>新闻</title></programme>
  <programme channel="b" start="20240101060000 +0800" stop="20240101070000 +0800"><title>财经</title></programme>
  <programme channel="c" start="20240101060000 +0800" stop="20240101070000 +0800"><title>综艺</title></programme>
</tv>`

	tests := []struct {
		name   string
		filter []string
		want   []string
	}{
		{"no filter", nil, []string{"CCTV-1", "CCTV-2", "湖南卫视"}},
		{"subset keeps document order", []string{"湖南卫视", "CCTV-1"}, []string{"CCTV-1", "湖南卫视"}},
		{"unknown name", []string{"BBC"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := Parse([]byte(doc), WithChannelFilter(tt.filter))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("Got %d channels, want %d", len(list), len(tt.want))
			}
			for i, name := range tt.want {
				if list[i].Channel != name {
					t.Errorf("Channel[%d] = %q, want %q", i, list[i].Channel, name)
				}
				if len(list[i].Programmes) != 1 {
					t.Errorf("Channel %q has %d programmes", name, len(list[i].Programmes))
				}
			}
		})
	}
}

func TestParse_DuplicateChannelKeepsFirst(t *testing.T) {
	doc := `<tv>
  <channel id="1"><display-name>First</display-name></channel>
  <channel id="1"><display-name>Second</display-name></channel>
  <programme channel="1" start="20240101060000 +0000" stop="20240101063000 +0000"><title>Show</title></programme>
</tv>`

	list, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(list) != 1 || list[0].Channel != "First" || len(list[0].Programmes) != 1 {
		t.Errorf("Parse() = %+v", list)
	}
}

func TestParse_FirstTextWins(t *testing.T) {
	tests := []struct {
		name        string
		channel     string
		programme   string
		wantChannel string
		wantTitle   string
	}{
		{
			name:        "first child wins",
			channel:     `<display-name>Primary</display-name><display-name>Alias</display-name>`,
			programme:   `<title>Title</title><sub-title>Subtitle</sub-title>`,
			wantChannel: "Primary",
			wantTitle:   "Title",
		},
		{
			name:        "surrounding whitespace trimmed",
			channel:     "\n    <display-name>  News  </display-name>\n  ",
			programme:   "\n    <title>\n Morning \n</title>\n  ",
			wantChannel: "News",
			wantTitle:   "Morning",
		},
		{
			name:        "empty title does not borrow desc",
			channel:     `<display-name>News</display-name>`,
			programme:   `<title/><desc>only desc</desc>`,
			wantChannel: "News",
			wantTitle:   "",
		},
		{
			name:        "blank display name stays blank",
			channel:     `<display-name>  </display-name><display-name>Alias</display-name>`,
			programme:   `<title></title><desc>x</desc>`,
			wantChannel: "",
			wantTitle:   "",
		},
		{
			name:        "bare text",
			channel:     `News`,
			programme:   `Morning`,
			wantChannel: "News",
			wantTitle:   "Morning",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<tv><channel id="1">` + tt.channel + `</channel>` +
				`<programme channel="1" start="20240101060000 +0000" stop="20240101063000 +0000">` +
				tt.programme + `</programme></tv>`

			list, err := Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(list) != 1 || len(list[0].Programmes) != 1 {
				t.Fatalf("Unexpected list %+v", list)
			}
			if list[0].Channel != tt.wantChannel {
				t.Errorf("Channel = %q, want %q", list[0].Channel, tt.wantChannel)
			}
			if got := list[0].Programmes[0].Title; got != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, doc := range []string{"", "   \n\t", `<?xml version="1.0"?><tv></tv>`} {
		list, err := Parse([]byte(doc))
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", doc, err)
			continue
		}
		if list == nil || len(list) != 0 {
			t.Errorf("Parse(%q) = %#v, want empty list", doc, list)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte(`<tv><channel id="1"><display-name>News`)); err == nil {
		t.Error("Expected error for truncated document")
	}
}

func TestParse_Charset(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<tv><channel id=\"1\"><display-name>Caf\xe9</display-name></channel></tv>"

	list, err := NewParser().Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(list) != 1 || list[0].Channel != "Café" {
		t.Errorf("Parse() = %+v", list)
	}
}

func TestParseTimestamp(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	at := func(y int, mo time.Month, d, h, mi int, loc *time.Location) int64 {
		return time.Date(y, mo, d, h, mi, 0, 0, loc).UnixMilli()
	}

	tests := []struct {
		name string
		raw  string
		loc  *time.Location
		want int64
	}{
		{"utc offset", "20240101060000 +0000", time.UTC, at(2024, 1, 1, 6, 0, time.UTC)},
		{"positive offset", "20240101060000 +0800", time.UTC, at(2024, 1, 1, 6, 0, shanghai)},
		{"offset without space", "20240101060000+0800", time.UTC, at(2024, 1, 1, 6, 0, shanghai)},
		{"bare uses location", "20240101060000", shanghai, at(2024, 1, 1, 6, 0, shanghai)},
		{"bare nil location is utc", "20240101060000", nil, at(2024, 1, 1, 6, 0, time.UTC)},
		{"surrounding space", "  20240101060000 +0000 ", time.UTC, at(2024, 1, 1, 6, 0, time.UTC)},
		{"too short", "202401010600", time.UTC, 0},
		{"empty", "", time.UTC, 0},
		{"garbage", "2024-01-01T06:00:00Z", time.UTC, 0},
		{"bad month", "20241301060000 +0000", time.UTC, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTimestamp(tt.raw, tt.loc); got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEpg_Current(t *testing.T) {
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	e := Epg{Channel: "News", Programmes: []EpgProgramme{
		{StartAt: start.UnixMilli(), EndAt: start.Add(30 * time.Minute).UnixMilli(), Title: "Morning"},
		{StartAt: start.Add(30 * time.Minute).UnixMilli(), EndAt: start.Add(time.Hour).UnixMilli(), Title: "Weather"},
	}}

	tests := []struct {
		at   time.Time
		want string
		ok   bool
	}{
		{start, "Morning", true},
		{start.Add(30 * time.Minute), "Weather", true},
		{start.Add(time.Hour), "", false},
		{start.Add(-time.Minute), "", false},
	}
	for _, tt := range tests {
		p, ok := e.Current(tt.at)
		if ok != tt.ok || p.Title != tt.want {
			t.Errorf("Current(%v) = (%q, %v), want (%q, %v)", tt.at, p.Title, ok, tt.want, tt.ok)
		}
	}

	list := EpgList{e, {Channel: "Sport"}}
	if list.ProgrammeCount() != 2 {
		t.Errorf("ProgrammeCount() = %d", list.ProgrammeCount())
	}
	if _, ok := list.Find("Sport"); !ok {
		t.Error("Find(Sport) not found")
	}
}
