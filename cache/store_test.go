package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type storeFactory struct {
	name string
	open func(t *testing.T, dir string) Store
}

var storeFactories = []storeFactory{
	{
		name: "sqlite",
		open: func(t *testing.T, dir string) Store {
			s, err := NewSQLiteStore(filepath.Join(dir, "cache.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			return s
		},
	},
	{
		name: "bolt",
		open: func(t *testing.T, dir string) Store {
			s, err := NewBoltStore(filepath.Join(dir, "cache.bolt"))
			if err != nil {
				t.Fatalf("NewBoltStore failed: %v", err)
			}
			return s
		},
	},
	{
		name: "memory",
		open: func(t *testing.T, dir string) Store {
			return NewMemoryStore()
		},
	},
}

func TestStore_Miss(t *testing.T) {
	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, t.TempDir())
			defer s.Close()

			_, found, err := s.Get(context.Background(), "epg.xml")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if found {
				t.Error("Expected cache miss, got hit")
			}
		})
	}
}

func TestStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	modified := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, t.TempDir())
			defer s.Close()

			if err := s.Set(ctx, "iptv.txt", []byte("CCTV-1,http://a"), modified); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			entry, found, err := s.Get(ctx, "iptv.txt")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !found {
				t.Fatal("Expected cache hit, got miss")
			}
			if string(entry.Payload) != "CCTV-1,http://a" {
				t.Errorf("Payload = %q", entry.Payload)
			}
			if !entry.ModifiedAt.Equal(modified) {
				t.Errorf("ModifiedAt = %v, want %v", entry.ModifiedAt, modified)
			}
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, t.TempDir())
			defer s.Close()

			if err := s.Set(ctx, "epg.json", []byte("old"), first); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, "epg.json", []byte("new"), second); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			entry, _, err := s.Get(ctx, "epg.json")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(entry.Payload) != "new" || !entry.ModifiedAt.Equal(second) {
				t.Errorf("Got (%q, %v), want (new, %v)", entry.Payload, entry.ModifiedAt, second)
			}
		})
	}
}

func TestStore_EmptyPayload(t *testing.T) {
	ctx := context.Background()

	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, t.TempDir())
			defer s.Close()

			if err := s.Set(ctx, "epg.xml", []byte{}, time.Now()); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			entry, found, err := s.Get(ctx, "epg.xml")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !found {
				t.Error("Empty payload should still be a hit")
			}
			if len(entry.Payload) != 0 {
				t.Errorf("Payload = %q, want empty", entry.Payload)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()

	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, t.TempDir())
			defer s.Close()

			for _, key := range []string{"epg.xml", "epg.json", "iptv.txt"} {
				if err := s.Set(ctx, key, []byte(key), time.Now()); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}
			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if _, found, _ := s.Get(ctx, "epg.json"); found {
				t.Error("Expected miss after Clear")
			}
		})
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, f := range storeFactories {
		if f.name == "memory" {
			continue
		}
		t.Run(f.name, func(t *testing.T) {
			dir := t.TempDir()

			s := f.open(t, dir)
			if err := s.Set(ctx, "iptv.txt", []byte("payload"), modified); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			s = f.open(t, dir)
			defer s.Close()
			entry, found, err := s.Get(ctx, "iptv.txt")
			if err != nil || !found {
				t.Fatalf("Get after reopen = (found %v, err %v)", found, err)
			}
			if string(entry.Payload) != "payload" {
				t.Errorf("Payload = %q", entry.Payload)
			}
		})
	}
}

func TestNewSQLiteStore_CreatesFile(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "nested", "cache.db")

	s, err := NewSQLiteStore(cachePath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	// Verify database file was created
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		t.Error("Cache database file was not created")
	}
}

func TestSQLiteStore_Stats(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	oldest := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Set(ctx, "epg.xml", []byte("a"), oldest)
	s.Set(ctx, "iptv.txt", []byte("b"), oldest.Add(time.Hour))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if !stats.OldestEntry.Equal(oldest) {
		t.Errorf("OldestEntry = %v, want %v", stats.OldestEntry, oldest)
	}
}

func TestDefaultCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if got := DefaultCachePath("cache.db"); got != "/tmp/xdg/mytv/cache.db" {
		t.Errorf("DefaultCachePath() = %q", got)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/u")
	if got := DefaultCachePath("cache.db"); got != "/home/u/.cache/mytv/cache.db" {
		t.Errorf("DefaultCachePath() = %q", got)
	}
}
