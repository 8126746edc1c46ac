package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Entry is the content of one cache slot
type Entry struct {
	Key        string
	Payload    []byte
	ModifiedAt time.Time
}

// Store is the durable key-named blob store behind a Cache. Set must replace
// payload and timestamp atomically: readers see the old entry or the new
// one, never a mix.
type Store interface {
	// Get returns the entry for key; found is false if the slot was never written
	Get(ctx context.Context, key string) (entry Entry, found bool, err error)

	// Set overwrites the slot for key
	Set(ctx context.Context, key string, payload []byte, modifiedAt time.Time) error

	// Clear removes every slot
	Clear(ctx context.Context) error

	// Close releases the underlying resources
	Close() error
}

// DefaultCachePath returns the default cache database path for a backend file name
func DefaultCachePath(name string) string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return name // Fallback to current directory
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "mytv", name)
}
