package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps cache slots in a single SQLite table
type SQLiteStore struct {
	db     *sql.DB
	ownsDB bool
}

// SQLiteStats contains cache statistics
type SQLiteStats struct {
	Entries     int
	OldestEntry time.Time
}

// NewSQLiteStore opens (or creates) the cache database at the given path
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewSQLiteStoreFromDB initializes the cache schema on an existing connection
func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get implements Store.Get
func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		payload    []byte
		modifiedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, modified_at FROM cache_slot WHERE key = ?", key,
	).Scan(&payload, &modifiedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		slog.Warn("cache read error", "error", err, "key", key)
		return Entry{}, false, fmt.Errorf("failed to read cache slot %q: %w", key, err)
	}

	return Entry{
		Key:        key,
		Payload:    payload,
		ModifiedAt: time.UnixMilli(modifiedAt),
	}, true, nil
}

// Set implements Store.Set
func (s *SQLiteStore) Set(ctx context.Context, key string, payload []byte, modifiedAt time.Time) error {
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cache_slot (key, payload, modified_at)
		VALUES (?, ?, ?)
	`, key, payload, modifiedAt.UnixMilli())

	if err != nil {
		slog.Warn("cache write error", "error", err, "key", key)
		return fmt.Errorf("failed to write cache slot %q: %w", key, err)
	}

	return nil
}

// Clear implements Store.Clear
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_slot"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stats returns cache statistics
func (s *SQLiteStore) Stats(ctx context.Context) (SQLiteStats, error) {
	var stats SQLiteStats

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache_slot").Scan(&stats.Entries)
	if err != nil {
		return stats, err
	}

	var oldest sql.NullInt64
	err = s.db.QueryRowContext(ctx, "SELECT MIN(modified_at) FROM cache_slot").Scan(&oldest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, err
	}
	if oldest.Valid && oldest.Int64 > 0 {
		stats.OldestEntry = time.UnixMilli(oldest.Int64)
	}

	return stats, nil
}

// Close closes the database if the store opened it
func (s *SQLiteStore) Close() error {
	if s.db != nil && s.ownsDB {
		return s.db.Close()
	}
	return nil
}
