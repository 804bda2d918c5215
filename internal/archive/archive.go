package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ArchiveCache moves the translation cache directory to an archive with
// timestamp, so the next run starts from an empty cache. Returns the archive
// path.
func ArchiveCache(cacheDir string, out io.Writer) (string, error) {
	info, err := os.Stat(cacheDir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("cache directory does not exist: %s", cacheDir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat cache directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", cacheDir)
	}

	// Get parent directory and create archive path
	parentDir := filepath.Dir(filepath.Clean(cacheDir))
	archiveDir := filepath.Join(parentDir, "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(filepath.Clean(cacheDir))
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, timestamp))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, timestamp))
	}

	if err := os.Rename(cacheDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive cache directory: %w", err)
	}

	fmt.Fprintf(out, "Cache directory archived to: %s\n", archivePath)
	return archivePath, nil
}
