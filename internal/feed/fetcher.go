package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// maxFeedSize bounds the number of bytes read from one feed
const maxFeedSize = 32 << 20

// ErrFeedTooLarge is returned for a body larger than the size limit
var ErrFeedTooLarge = errors.New("feed exceeds size limit")

// FetchError reports a feed that could not be downloaded
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads raw feed documents
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxSize   int64
}

// NewFetcher creates a fetcher. A zero timeout keeps the transport default
// (no overall deadline).
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	// Keep the default dial, TLS handshake and HTTP/2 settings
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.IdleConnTimeout = 30 * time.Second
	transport.MaxIdleConnsPerHost = 5

	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
		maxSize:   maxFeedSize,
	}
}

// Fetch returns the body of url. Transport failures, non-2xx responses and
// bodies over the size limit are returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	// One extra byte tells a truncated body from one that fits exactly
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if int64(len(data)) > f.maxSize {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w of %d bytes", ErrFeedTooLarge, f.maxSize)}
	}

	return data, nil
}

// Info describes a feed found by Probe
type Info struct {
	Title    string
	FeedType string
	Items    int
}

// Probe downloads and fully parses url to confirm it is an RSS or Atom feed
func (f *Fetcher) Probe(ctx context.Context, url string) (*Info, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.userAgent

	parsed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", url, err)
	}

	if parsed.FeedType != "rss" && parsed.FeedType != "atom" {
		return nil, fmt.Errorf("unsupported feed type %q at %s: only RSS and Atom feeds can be translated", parsed.FeedType, url)
	}

	return &Info{
		Title:    parsed.Title,
		FeedType: parsed.FeedType,
		Items:    len(parsed.Items),
	}, nil
}
