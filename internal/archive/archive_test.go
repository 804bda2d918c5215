package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArchiveCache(t *testing.T) {
	tmpDir := t.TempDir()

	// Create cache directory with two feed caches
	cacheDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		t.Fatalf("Failed to create cache directory: %v", err)
	}
	for _, name := range []string{"go_blog.json", "lwn.json"} {
		if err := os.WriteFile(filepath.Join(cacheDir, name), []byte(`{"a":"b"}`), 0644); err != nil {
			t.Fatalf("Failed to create cache file: %v", err)
		}
	}

	var out bytes.Buffer
	archivePath, err := ArchiveCache(cacheDir, &out)
	if err != nil {
		t.Fatalf("ArchiveCache failed: %v", err)
	}

	// Check that cache directory no longer exists
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Error("Cache directory still exists after archiving")
	}

	if filepath.Dir(archivePath) != filepath.Join(tmpDir, "archive") {
		t.Errorf("Unexpected archive location: %s", archivePath)
	}
	if !strings.HasPrefix(filepath.Base(archivePath), "data-") {
		t.Errorf("Archive name doesn't have expected prefix: %s", archivePath)
	}

	// Check that files were preserved
	content, err := os.ReadFile(filepath.Join(archivePath, "lwn.json"))
	if err != nil {
		t.Fatalf("Failed to read archived cache: %v", err)
	}
	if string(content) != `{"a":"b"}` {
		t.Errorf("Archived cache content mismatch: %s", content)
	}

	if !strings.Contains(out.String(), archivePath) {
		t.Errorf("Expected archive path in output, got: %s", out.String())
	}
}

func TestArchiveCache_Twice(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "data")

	var paths []string
	for i := 0; i < 2; i++ {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			t.Fatalf("Failed to create cache directory: %v", err)
		}
		path, err := ArchiveCache(cacheDir, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("ArchiveCache run %d failed: %v", i+1, err)
		}
		paths = append(paths, path)
	}

	if paths[0] == paths[1] {
		t.Errorf("Archives should not collide: %s", paths[0])
	}
}

func TestArchiveCache_NonExistent(t *testing.T) {
	_, err := ArchiveCache(filepath.Join(t.TempDir(), "missing"), &bytes.Buffer{})
	if err == nil {
		t.Error("Expected error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestArchiveCache_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if _, err := ArchiveCache(path, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for a regular file")
	}
}
