package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSlots = []byte("slots")

type boltEntry struct {
	Payload    []byte `json:"payload"`
	ModifiedAt int64  `json:"modified_at"`
}

// BoltStore keeps cache slots in a BoltDB bucket, one JSON value per key
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the BoltDB file at path
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSlots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Get implements Store.Get
func (s *BoltStore) Get(_ context.Context, key string) (Entry, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSlots).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache slot %q: %w", key, err)
	}
	if data == nil {
		return Entry{}, false, nil
	}

	var be boltEntry
	if err := json.Unmarshal(data, &be); err != nil {
		return Entry{}, false, fmt.Errorf("failed to unmarshal cache slot %q: %w", key, err)
	}

	return Entry{
		Key:        key,
		Payload:    be.Payload,
		ModifiedAt: time.UnixMilli(be.ModifiedAt),
	}, true, nil
}

// Set implements Store.Set
func (s *BoltStore) Set(_ context.Context, key string, payload []byte, modifiedAt time.Time) error {
	data, err := json.Marshal(boltEntry{Payload: payload, ModifiedAt: modifiedAt.UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to marshal cache slot %q: %w", key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSlots).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache slot %q: %w", key, err)
	}
	return nil
}

// Clear implements Store.Clear
func (s *BoltStore) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketSlots); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketSlots)
		return err
	})
}

// Close implements Store.Close
func (s *BoltStore) Close() error {
	return s.db.Close()
}
