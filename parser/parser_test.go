package parser

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scipunch/mytv/iptv"
	"github.com/scipunch/mytv/parser/m3u"
	"github.com/scipunch/mytv/parser/structured"
	"github.com/scipunch/mytv/parser/txt"
)

type TestData struct {
	Name             string `json:"name"`
	URL              string `json:"url"`
	Input            string `json:"input"`
	ExpectedParser   string `json:"expectedParser"`
	ExpectedGroups   int    `json:"expectedGroups"`
	ExpectedChannels int    `json:"expectedChannels"`
}

func TestDefaultRegistry(t *testing.T) {
	// Load test data files from _test_data directory
	testDataFiles, err := loadTestDataFiles()
	if err != nil {
		t.Fatalf("Failed to load test data files: %v", err)
	}
	if len(testDataFiles) == 0 {
		t.Skip("No test data files found in _test_data directory")
	}

	reg := DefaultRegistry()
	for _, tc := range testDataFiles {
		t.Run(tc.Name, func(t *testing.T) {
			p, err := reg.Select(tc.URL, []byte(tc.Input))
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if got := typeOf(p); got != tc.ExpectedParser {
				t.Errorf("Selected %s parser, want %s", got, tc.ExpectedParser)
			}

			groups, err := p.Parse([]byte(tc.Input))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(groups) != tc.ExpectedGroups {
				t.Errorf("Got %d groups, want %d", len(groups), tc.ExpectedGroups)
			}
			if groups.ChannelCount() != tc.ExpectedChannels {
				t.Errorf("Got %d channels, want %d", groups.ChannelCount(), tc.ExpectedChannels)
			}
		})
	}
}

func TestRegistry_Order(t *testing.T) {
	order := DefaultRegistry().Order()
	want := []Type{M3U, Structured, TXT}
	if len(order) != len(want) {
		t.Fatalf("Order() has %d parsers, want %d", len(order), len(want))
	}
	for i, p := range order {
		if got := typeOf(p); got != want[i] {
			t.Errorf("Order()[%d] = %s, want %s", i, got, want[i])
		}
	}
}

type fixedParser struct{ groups iptv.IptvGroupList }

func (p fixedParser) IsSupport(url string, _ []byte) bool {
	return strings.HasPrefix(url, "custom://")
}

func (p fixedParser) Parse([]byte) (iptv.IptvGroupList, error) {
	return p.groups, nil
}

func TestRegistry_PrependAndAppend(t *testing.T) {
	reg := NewRegistry(m3u.New())
	custom := fixedParser{groups: iptv.IptvGroupList{{Name: "custom"}}}

	if _, err := reg.Select("custom://x", []byte("name,url")); err == nil {
		t.Error("Expected unsupported source error")
	}

	reg.Append(txt.New())
	reg.Prepend(custom)

	p, err := reg.Select("custom://x", []byte("#EXTM3U"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, ok := p.(fixedParser); !ok {
		t.Errorf("Prepended parser should win, got %T", p)
	}

	p, err = reg.Select("https://x/list", []byte("name,url"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if typeOf(p) != TXT {
		t.Errorf("Appended fallback should be selected, got %T", p)
	}
}

func TestNew(t *testing.T) {
	for _, typ := range []Type{M3U, Structured, TXT} {
		if _, ok := New(typ); !ok {
			t.Errorf("New(%s) not found", typ)
		}
	}
	if _, ok := New("xspf"); ok {
		t.Error("New(xspf) should not exist")
	}
}

func typeOf(p Parser) Type {
	switch p.(type) {
	case m3u.Parser:
		return M3U
	case structured.Parser:
		return Structured
	case txt.Parser:
		return TXT
	default:
		return "unknown"
	}
}

func loadTestDataFiles() ([]TestData, error) {
	var testDataFiles []TestData
	testDataDir := "_test_data"

	err := filepath.WalkDir(testDataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			var testData TestData
			if err := json.Unmarshal(data, &testData); err != nil {
				return err
			}

			testDataFiles = append(testDataFiles, testData)
		}

		return nil
	})

	return testDataFiles, err
}
