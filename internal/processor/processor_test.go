package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/rsstranslator/internal/config"
	"codeberg.org/snonux/rsstranslator/internal/feed"
	"codeberg.org/snonux/rsstranslator/internal/registry"
	"codeberg.org/snonux/rsstranslator/internal/testutil"
	"codeberg.org/snonux/rsstranslator/internal/translation"
)

const blogFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>A Blog</title>
    <item><title>Hello World</title></item>
    <item><title>A Blog</title></item>
  </channel>
</rss>
`

func newTestProcessor(t *testing.T, tr *testutil.MockTranslator, store translation.Store, fetcher *testutil.MockFetcher) (*Processor, *config.Config, *bytes.Buffer) {
	t.Helper()

	cfg := testutil.CreateTestConfig(t)
	p := NewProcessor(cfg, tr, store, fetcher)

	var out bytes.Buffer
	p.SetOutput(&out, &out)

	return p, cfg, &out
}

func TestNewProcessor(t *testing.T) {
	cfg := testutil.CreateTestConfig(t)
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{}

	p := NewProcessor(cfg, tr, store, fetcher)
	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}
	if p.cfg != cfg {
		t.Error("Processor config not set correctly")
	}
	if p.out != os.Stdout || p.errOut != os.Stderr {
		t.Error("Processor should default to stdout and stderr")
	}
}

func TestTranslateFeed_ConcreteScenario(t *testing.T) {
	tr := &testutil.MockTranslator{Responses: map[string]string{"Hello World": "你好世界"}}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"http://example.com/a": []byte(blogFeed)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	result, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "http://example.com/a"})
	if err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	if len(tr.Calls) != 1 || tr.Calls[0] != "Hello World" {
		t.Errorf("Expected one call for 'Hello World', got %q", tr.Calls)
	}

	cache := store.Caches["a"]
	if len(cache) != 1 || cache["Hello World"] != "你好世界" {
		t.Errorf("Unexpected cache: %v", cache)
	}
	if _, ok := cache["A Blog"]; ok {
		t.Error("Feed title must not be cached")
	}

	expected := strings.Replace(blogFeed, "<title>Hello World</title>", "<title>你好世界</title>", 1)
	testutil.AssertFileContent(t, cfg.OutputFile("a"), []byte(expected))

	if result.FeedTitle != "A Blog" || result.Titles != 2 || result.Translated != 1 || result.Skipped != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestTranslateFeed_Idempotent(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)
	entry := registry.Entry{Name: "a", URL: "u"}

	if _, err := p.TranslateFeed(context.Background(), entry); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	first := testutil.ReadTestFile(t, cfg.OutputFile("a"))
	calls := len(tr.Calls)
	saves := store.SaveCalls

	result, err := p.TranslateFeed(context.Background(), entry)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if len(tr.Calls) != calls {
		t.Errorf("Second run issued %d translation calls", len(tr.Calls)-calls)
	}
	if store.SaveCalls != saves {
		t.Errorf("Second run saved the unchanged cache %d times", store.SaveCalls-saves)
	}
	if result.Cached != 1 {
		t.Errorf("Expected 1 cache hit, got %d", result.Cached)
	}
	testutil.AssertFileContent(t, cfg.OutputFile("a"), first)
}

func TestTranslateFeed_CacheMonotonic(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	store.Caches["a"] = map[string]string{"Old Post": "旧文章"}
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, _, _ := newTestProcessor(t, tr, store, fetcher)

	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	cache := store.Caches["a"]
	if cache["Old Post"] != "旧文章" {
		t.Error("Existing cache entry was dropped")
	}
	if cache["Hello World"] != "[zh] Hello World" {
		t.Errorf("New title not cached: %v", cache)
	}
}

func TestTranslateFeed_FeedTitleNeverTranslated(t *testing.T) {
	raw := `<rss><channel><title>Hello World</title><item><title>Hello World</title></item><item><title>Other</title></item></channel></rss>`

	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	// A cached translation of the feed title must not be applied either
	store.Caches["a"] = map[string]string{"Hello World": "你好世界"}
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(raw)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	expected := `<rss><channel><title>Hello World</title><item><title>Hello World</title></item><item><title>[zh] Other</title></item></channel></rss>`
	testutil.AssertFileContent(t, cfg.OutputFile("a"), []byte(expected))
}

func TestTranslateFeed_LengthGuard(t *testing.T) {
	long := strings.Repeat("長", config.DefaultMaxTitleLength)
	justShort := strings.Repeat("x", config.DefaultMaxTitleLength-1)
	raw := "<rss><channel><title>F</title><item><title>" + long + "</title></item><item><title>" + justShort + "</title></item></channel></rss>"

	tr := &testutil.MockTranslator{Translate: func(string) string { return "ok" }}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(raw)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	if _, ok := store.Caches["a"][long]; ok {
		t.Error("Overlong title must not be cached")
	}
	if store.Caches["a"][justShort] != "ok" {
		t.Error("Title below the limit should be translated")
	}
	testutil.AssertFileContains(t, cfg.OutputFile("a"), "<title>"+long+"</title>")
}

func TestTranslateFeed_Fallback(t *testing.T) {
	tr := &testutil.MockTranslator{Err: translation.ErrTimeout}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, cfg, out := newTestProcessor(t, tr, store, fetcher)

	result, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"})
	if err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	if store.Caches["a"]["Hello World"] != "Hello World" {
		t.Errorf("Expected fallback cache entry, got %v", store.Caches["a"])
	}
	if result.Fallbacks != 1 {
		t.Errorf("Expected 1 fallback, got %d", result.Fallbacks)
	}
	testutil.AssertFileContent(t, cfg.OutputFile("a"), []byte(blogFeed))
	if !strings.Contains(out.String(), "Warning: keeping original title") {
		t.Errorf("Expected warning, got: %s", out.String())
	}

	// The fallback is never retried
	tr.Err = nil
	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(tr.Calls) != 1 {
		t.Errorf("Fallback title was retried: %q", tr.Calls)
	}
}

func TestTranslateFeed_BreakerOpenNotCached(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"open", gobreaker.ErrOpenState},
		{"half-open limit", gobreaker.ErrTooManyRequests},
		{"wrapped", fmt.Errorf("translator unavailable: %w", gobreaker.ErrOpenState)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &testutil.MockTranslator{Err: tt.err}
			store := testutil.NewMockStore()
			fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
			p, cfg, out := newTestProcessor(t, tr, store, fetcher)

			result, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"})
			if err != nil {
				t.Fatalf("TranslateFeed failed: %v", err)
			}

			if _, ok := store.Caches["a"]["Hello World"]; ok {
				t.Errorf("Title must not be cached while the breaker is open: %v", store.Caches["a"])
			}
			if store.SaveCalls != 0 {
				t.Errorf("Expected no cache saves, got %d", store.SaveCalls)
			}
			if result.Deferred != 1 || result.Fallbacks != 0 {
				t.Errorf("Expected 1 deferred and 0 fallbacks, got %d / %d", result.Deferred, result.Fallbacks)
			}
			testutil.AssertFileContent(t, cfg.OutputFile("a"), []byte(blogFeed))
			if !strings.Contains(out.String(), "Warning: not translating") {
				t.Errorf("Expected warning, got: %s", out.String())
			}

			// Retried once the service is back
			tr.Err = nil
			tr.Responses = map[string]string{"Hello World": "你好世界"}
			if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err != nil {
				t.Fatalf("Second run failed: %v", err)
			}
			if len(tr.Calls) != 2 {
				t.Errorf("Expected the title to be retried, got calls %q", tr.Calls)
			}
			if store.Caches["a"]["Hello World"] != "你好世界" {
				t.Errorf("Unexpected cache after retry: %v", store.Caches["a"])
			}
		})
	}
}

func TestTranslateFeed_EmptyCachedValueRetranslated(t *testing.T) {
	tr := &testutil.MockTranslator{Responses: map[string]string{"Hello World": "你好世界"}}
	store := testutil.NewMockStore()
	store.Caches["a"] = map[string]string{"Hello World": ""}
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	result, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"})
	if err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	if len(tr.Calls) != 1 || tr.Calls[0] != "Hello World" {
		t.Errorf("Expected one call for 'Hello World', got %q", tr.Calls)
	}
	if result.Cached != 0 || result.Translated != 1 {
		t.Errorf("Expected 0 cached and 1 translated, got %d / %d", result.Cached, result.Translated)
	}
	if store.Caches["a"]["Hello World"] != "你好世界" {
		t.Errorf("Empty cache value was not replaced: %v", store.Caches["a"])
	}
	testutil.AssertFileContent(t, cfg.OutputFile("a"), []byte(strings.Replace(blogFeed, "<item><title>Hello World", "<item><title>你好世界", 1)))
}

func TestTranslateFeed_EmptyAndNestedTitlesSkipped(t *testing.T) {
	raw := `<rss><channel><title>F</title><item><title>  </title></item><item><title>Hi <b>there</b></title></item></channel></rss>`

	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(raw)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	result, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"})
	if err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	if len(tr.Calls) != 0 || len(store.Caches["a"]) != 0 {
		t.Errorf("Expected no calls and no cache entries, got %q / %v", tr.Calls, store.Caches["a"])
	}
	if result.Skipped != 2 {
		t.Errorf("Expected 2 skipped titles, got %d", result.Skipped)
	}
	testutil.AssertFileContent(t, cfg.OutputFile("a"), []byte(raw))
}

func TestTranslateFeed_FetchFailure(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Errors: map[string]error{"u": &feed.FetchError{URL: "u", StatusCode: 503}}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	_, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"})

	var fetchErr *feed.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %v", err)
	}
	testutil.AssertFileNotExists(t, cfg.OutputFile("a"))
	if store.SaveCalls != 0 {
		t.Error("Cache must not be written after a fetch failure")
	}
}

func TestTranslateFeed_ParseFailure(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte("<html><body>502 Bad Gateway")}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	_, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"})

	var malformed *feed.MalformedFeedError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedFeedError, got: %v", err)
	}
	testutil.AssertFileNotExists(t, cfg.OutputFile("a"))
}

func TestTranslateFeed_CacheSaveFailure(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	store.SaveErr = errors.New("disk full")
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err == nil {
		t.Fatal("Expected error when the cache cannot be saved")
	}
	testutil.AssertFileNotExists(t, cfg.OutputFile("a"))
}

func TestTranslateFeed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tr := &testutil.MockTranslator{Translate: func(text string) string {
		cancel()
		return "partial"
	}}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	_, err := p.TranslateFeed(ctx, registry.Entry{Name: "a", URL: "u"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if len(store.Caches["a"]) != 0 {
		t.Errorf("Interrupted translation was cached: %v", store.Caches["a"])
	}
	testutil.AssertFileNotExists(t, cfg.OutputFile("a"))
}

func TestTranslateFeed_InvalidName(t *testing.T) {
	p, _, _ := newTestProcessor(t, &testutil.MockTranslator{}, testutil.NewMockStore(), &testutil.MockFetcher{})

	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "../evil", URL: "u"}); err == nil {
		t.Error("Expected error for invalid feed name")
	}
}

func TestTranslateFeed_FileStore(t *testing.T) {
	cfg := testutil.CreateTestConfig(t)
	store := translation.NewFileStore(cfg.DataDir)
	tr := &testutil.MockTranslator{}
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}

	p := NewProcessor(cfg, tr, store, fetcher)
	p.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	if _, err := p.TranslateFeed(context.Background(), registry.Entry{Name: "a", URL: "u"}); err != nil {
		t.Fatalf("TranslateFeed failed: %v", err)
	}

	cache, err := store.Load("a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, _ := cache.Get("Hello World"); got != "[zh] Hello World" {
		t.Errorf("Unexpected persisted translation %q", got)
	}
}

func TestProcessBatch_FailureIsolation(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	fetcher := &testutil.MockFetcher{
		Feeds:  map[string][]byte{"good": []byte(blogFeed)},
		Errors: map[string]error{"bad": &feed.FetchError{URL: "bad", Err: errors.New("connection refused")}},
	}
	p, cfg, out := newTestProcessor(t, tr, store, fetcher)

	previous := []byte("<rss>previous run</rss>")
	testutil.CreateTestFile(t, cfg.OutputFile("broken"), previous)

	results := p.ProcessBatch(context.Background(), []registry.Entry{
		{Name: "broken", URL: "bad"},
		{Name: "working", URL: "good"},
	})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Error("Expected error for the broken feed")
	}
	if results[1].Err != nil {
		t.Errorf("Unexpected error for the working feed: %v", results[1].Err)
	}

	testutil.AssertFileContent(t, cfg.OutputFile("broken"), previous)
	testutil.AssertFileContains(t, cfg.OutputFile("working"), "[zh] Hello World")

	if fetcher.Calls[0] != "bad" || fetcher.Calls[1] != "good" {
		t.Errorf("Feeds not processed in registry order: %q", fetcher.Calls)
	}
	if !strings.Contains(out.String(), "=== Batch Translation Summary ===") || !strings.Contains(out.String(), "Errors: 1") {
		t.Errorf("Unexpected summary:\n%s", out.String())
	}
}

func TestProcessBatch_CorruptCacheFailsOneFeed(t *testing.T) {
	tr := &testutil.MockTranslator{}
	store := testutil.NewMockStore()
	store.LoadErrs["corrupt"] = &translation.CorruptCacheError{Feed: "corrupt", Path: "data/corrupt.json", Err: errors.New("unexpected EOF")}
	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, cfg, _ := newTestProcessor(t, tr, store, fetcher)

	results := p.ProcessBatch(context.Background(), []registry.Entry{
		{Name: "corrupt", URL: "u"},
		{Name: "fine", URL: "u"},
	})

	var corrupt *translation.CorruptCacheError
	if !errors.As(results[0].Err, &corrupt) {
		t.Errorf("Expected CorruptCacheError, got: %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("Second feed failed: %v", results[1].Err)
	}
	testutil.AssertFileNotExists(t, cfg.OutputFile("corrupt"))
	testutil.AssertFileExists(t, cfg.OutputFile("fine"))
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &testutil.MockFetcher{Feeds: map[string][]byte{"u": []byte(blogFeed)}}
	p, _, _ := newTestProcessor(t, &testutil.MockTranslator{}, testutil.NewMockStore(), fetcher)

	results := p.ProcessBatch(ctx, []registry.Entry{{Name: "a", URL: "u"}})
	if len(results) != 0 || len(fetcher.Calls) != 0 {
		t.Errorf("Cancelled batch should not process feeds, got %d results", len(results))
	}
}
