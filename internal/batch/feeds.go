package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FeedLine is one feed read from a feed list file
type FeedLine struct {
	// Name is empty when the line only holds a URL
	Name string
	URL  string
	Line int
}

// ReadFeedFile reads feeds to register from a file
// Supports formats:
// - URL only: "https://example.com/feed.xml" (name taken from the feed title)
// - With name: "example = https://example.com/feed.xml"
// An '=' inside the URL, as in "https://example.com/?format=rss", does not
// start a name.
// Empty lines and lines starting with '#' are ignored.
func ReadFeedFile(filename string) ([]FeedLine, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}
	defer file.Close()

	var entries []FeedLine
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := FeedLine{URL: line, Line: lineNo}
		if name, url, found := splitNamedLine(line); found {
			entry.Name = name
			entry.URL = url
		}

		if entry.URL == "" {
			return nil, fmt.Errorf("%s:%d: missing feed URL", filename, lineNo)
		}
		if !strings.HasPrefix(entry.URL, "http://") && !strings.HasPrefix(entry.URL, "https://") {
			return nil, fmt.Errorf("%s:%d: not an http(s) URL: %s", filename, lineNo, entry.URL)
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}

	return entries, nil
}

// splitNamedLine splits "name = url". Only an '=' before the URL scheme
// separator counts.
func splitNamedLine(line string) (name, url string, found bool) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", "", false
	}
	if scheme := strings.Index(line, "://"); scheme >= 0 && scheme < eq {
		return "", "", false
	}
	return strings.TrimSpace(line[:eq]), strings.TrimSpace(line[eq+1:]), true
}
