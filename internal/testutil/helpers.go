package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"codeberg.org/snonux/rsstranslator/internal/config"
)

// CreateTestConfig returns a config rooted in a fresh temporary directory
func CreateTestConfig(t *testing.T) *config.Config {
	t.Helper()

	tempDir := t.TempDir()

	cfg := &config.Config{
		PublicDir:          filepath.Join(tempDir, "www"),
		DataDir:            filepath.Join(tempDir, "data"),
		CredentialsFile:    filepath.Join(tempDir, "ai_key.json"),
		Provider:           config.ProviderOpenAI,
		Model:              config.DefaultOpenAIModel,
		Language:           config.DefaultLanguage,
		TranslationTimeout: config.DefaultTranslationTimeout,
		MaxTitleLength:     config.DefaultMaxTitleLength,
		BreakerFailures:    config.DefaultBreakerFailures,
		CacheBackend:       config.CacheBackendJSON,
		SiteURL:            config.DefaultSiteURL,
		OPMLTitle:          config.DefaultOPMLTitle,
		ServerAddr:         config.DefaultServerAddr,
	}
	cfg.RegistryFile = filepath.Join(cfg.PublicDir, "feeds_list.json")
	cfg.OPMLFile = filepath.Join(cfg.PublicDir, "translated.opml")
	cfg.SQLitePath = filepath.Join(cfg.DataDir, "translations.db")

	for _, dir := range []string{cfg.PublicDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create test directory %s: %v", dir, err)
		}
	}

	return cfg
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// ReadTestFile reads a file or fails the test
func ReadTestFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return data
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual := ReadTestFile(t, path)
	if !bytes.Equal(actual, expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content := ReadTestFile(t, path)
	if !bytes.Contains(content, []byte(substring)) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// SafeBuffer is a bytes.Buffer usable as output writer from several goroutines
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
