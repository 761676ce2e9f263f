// Package cache provides SQLite-backed caching of module comparison
// results. The cache is stored in .pydiff/cache.db and is keyed by the
// content hashes of the two compared sources, so unchanged file pairs are
// never re-analyzed during directory walks.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache manages the .pydiff/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the given .pydiff directory.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all cached comparison results.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM module_diffs"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// HashSource returns the cache key component for a source text.
func HashSource(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Entry is one cached comparison result.
type Entry struct {
	// HasDiff records whether the pair differed at all.
	HasDiff bool
	// Text is the rendered diff with highlight markers intact. Empty when
	// HasDiff is false.
	Text string
}

// Get retrieves the cached result for a source-hash pair. The second
// return value reports whether an entry was found.
func (c *Cache) Get(oldHash, newHash string) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}
	var entry Entry
	err := c.db.QueryRow(`
		SELECT has_diff, diff_text FROM module_diffs
		WHERE old_hash = ? AND new_hash = ?`,
		oldHash, newHash).Scan(&entry.HasDiff, &entry.Text)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get cached diff: %w", err)
	}
	return entry, true, nil
}

// Put stores the comparison result for a source-hash pair, replacing any
// previous entry.
func (c *Cache) Put(oldHash, newHash string, entry Entry) error {
	if c == nil {
		return nil
	}
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO module_diffs (old_hash, new_hash, has_diff, diff_text, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		oldHash, newHash, entry.HasDiff, entry.Text, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store cached diff: %w", err)
	}
	return nil
}

// Stats returns cache statistics.
type Stats struct {
	DiffCount int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats
	if err := c.db.QueryRow("SELECT COUNT(*) FROM module_diffs").Scan(&stats.DiffCount); err != nil {
		return nil, fmt.Errorf("count cached diffs: %w", err)
	}
	return &stats, nil
}
