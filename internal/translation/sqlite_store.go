package translation

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the caches of all feeds in one SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS translations (
			feed       TEXT NOT NULL,
			original   TEXT NOT NULL,
			translated TEXT NOT NULL,
			PRIMARY KEY (feed, original)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// Load reads every cached title of feedName
func (s *SQLiteStore) Load(feedName string) (*TranslationCache, error) {
	rows, err := s.db.Query(`SELECT original, translated FROM translations WHERE feed = ?`, feedName)
	if err != nil {
		return nil, fmt.Errorf("failed to query translation cache: %w", err)
	}
	defer rows.Close()

	cache := NewTranslationCache()
	for rows.Next() {
		var original, translated string
		if err := rows.Scan(&original, &translated); err != nil {
			return nil, &CorruptCacheError{Feed: feedName, Path: "sqlite", Err: err}
		}
		cache.Add(original, translated)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read translation cache: %w", err)
	}

	return cache, nil
}

// Save upserts every entry of cache. Keys are never deleted, which keeps the
// cache monotonic even when the in-memory copy is stale.
func (s *SQLiteStore) Save(feedName string, cache *TranslationCache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO translations (feed, original, translated)
		VALUES (?, ?, ?)
		ON CONFLICT(feed, original) DO UPDATE SET translated = excluded.translated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cache statement: %w", err)
	}
	defer stmt.Close()

	for original, translated := range cache.translations {
		if _, err := stmt.Exec(feedName, original, translated); err != nil {
			return fmt.Errorf("failed to save translation of %q: %w", original, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit translation cache: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
