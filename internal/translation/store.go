package translation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"codeberg.org/snonux/rsstranslator/internal"
	"codeberg.org/snonux/rsstranslator/internal/config"
)

// Store persists one TranslationCache per feed name
type Store interface {
	// Load returns the cache of feedName, or an empty cache if nothing was
	// persisted yet.
	Load(feedName string) (*TranslationCache, error)
	// Save replaces the persisted cache of feedName.
	Save(feedName string, cache *TranslationCache) error
	Close() error
}

// CorruptCacheError reports a persisted cache that cannot be decoded
type CorruptCacheError struct {
	Feed string
	Path string
	Err  error
}

func (e *CorruptCacheError) Error() string {
	return fmt.Sprintf("corrupt translation cache for feed %s (%s): %v", e.Feed, e.Path, e.Err)
}

func (e *CorruptCacheError) Unwrap() error {
	return e.Err
}

// OpenStore opens the cache backend selected in cfg
func OpenStore(cfg *config.Config) (Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendJSON:
		return NewFileStore(cfg.DataDir), nil
	case config.CacheBackendSQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.CacheBackend)
	}
}

// FileStore keeps each feed's cache as a JSON object in <dir>/<feed>.json
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the cache file of feedName
func (s *FileStore) Path(feedName string) string {
	return filepath.Join(s.dir, feedName+".json")
}

// Load reads the cache file of feedName. A missing file is an empty cache,
// a file that does not decode is a CorruptCacheError.
func (s *FileStore) Load(feedName string) (*TranslationCache, error) {
	path := s.Path(feedName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTranslationCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read translation cache: %w", err)
	}

	translations := make(map[string]string)
	if err := json.Unmarshal(data, &translations); err != nil {
		return nil, &CorruptCacheError{Feed: feedName, Path: path, Err: err}
	}

	return NewTranslationCacheFrom(translations), nil
}

// Save writes the full cache of feedName, replacing the previous file
func (s *FileStore) Save(feedName string, cache *TranslationCache) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cache.translations); err != nil {
		return fmt.Errorf("failed to encode translation cache: %w", err)
	}

	if err := internal.WriteFileAtomic(s.Path(feedName), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save translation cache: %w", err)
	}

	return nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}
