package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadFeedFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []FeedLine
		wantErr     bool
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace and comments",
			fileContent: "   \n\t\r\n# my feeds\n   ",
			want:        nil,
		},
		{
			name: "named feeds",
			fileContent: `go_blog = https://go.dev/blog/feed.atom
lwn = https://lwn.net/headlines/rss`,
			want: []FeedLine{
				{Name: "go_blog", URL: "https://go.dev/blog/feed.atom", Line: 1},
				{Name: "lwn", URL: "https://lwn.net/headlines/rss", Line: 2},
			},
		},
		{
			name: "mixed format",
			fileContent: `https://go.dev/blog/feed.atom

  lwn   =   https://lwn.net/headlines/rss  
`,
			want: []FeedLine{
				{URL: "https://go.dev/blog/feed.atom", Line: 1},
				{Name: "lwn", URL: "https://lwn.net/headlines/rss", Line: 3},
			},
		},
		{
			name: "windows line endings",
			fileContent: "a = http://a.example/rss\r\nhttp://b.example/rss\r\n",
			want: []FeedLine{
				{Name: "a", URL: "http://a.example/rss", Line: 1},
				{URL: "http://b.example/rss", Line: 2},
			},
		},
		{
			name: "query strings",
			fileContent: `https://www.blogger.com/feeds/123/posts/default?alt=rss
hn = https://hnrss.org/newest?points=100&count=20
reddit=https://www.reddit.com/r/golang/.rss?sort=new`,
			want: []FeedLine{
				{URL: "https://www.blogger.com/feeds/123/posts/default?alt=rss", Line: 1},
				{Name: "hn", URL: "https://hnrss.org/newest?points=100&count=20", Line: 2},
				{Name: "reddit", URL: "https://www.reddit.com/r/golang/.rss?sort=new", Line: 3},
			},
		},
		{
			name:        "missing URL",
			fileContent: "lwn =",
			wantErr:     true,
		},
		{
			name:        "not a URL",
			fileContent: "lwn = ftp://lwn.net/rss",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "feeds.txt")
			if err := os.WriteFile(path, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			got, err := ReadFeedFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFeedFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadFeedFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitNamedLine(t *testing.T) {
	tests := []struct {
		line      string
		wantName  string
		wantURL   string
		wantFound bool
	}{
		{"https://example.com/feed", "", "", false},
		{"https://example.com/feed?format=rss", "", "", false},
		{"ex = https://example.com/feed?format=rss", "ex", "https://example.com/feed?format=rss", true},
		{"ex=https://example.com/?a=b&c=d", "ex", "https://example.com/?a=b&c=d", true},
		{"ex =", "ex", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, url, found := splitNamedLine(tt.line)
			if name != tt.wantName || url != tt.wantURL || found != tt.wantFound {
				t.Errorf("splitNamedLine(%q) = %q, %q, %v, want %q, %q, %v",
					tt.line, name, url, found, tt.wantName, tt.wantURL, tt.wantFound)
			}
		})
	}
}

func TestReadFeedFile_Missing(t *testing.T) {
	if _, err := ReadFeedFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
