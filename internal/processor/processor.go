package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/rsstranslator/internal"
	"codeberg.org/snonux/rsstranslator/internal/config"
	"codeberg.org/snonux/rsstranslator/internal/feed"
	"codeberg.org/snonux/rsstranslator/internal/registry"
	"codeberg.org/snonux/rsstranslator/internal/translation"
)

// TitleTranslator translates a single title
type TitleTranslator interface {
	TranslateTitle(ctx context.Context, text string) (string, error)
}

// FeedFetcher downloads a raw feed document
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Processor translates feeds one at a time
type Processor struct {
	cfg        *config.Config
	translator TitleTranslator
	store      translation.Store
	fetcher    FeedFetcher
	out        io.Writer
	errOut     io.Writer
}

// NewProcessor creates a new feed processor
func NewProcessor(cfg *config.Config, translator TitleTranslator, store translation.Store, fetcher FeedFetcher) *Processor {
	return &Processor{
		cfg:        cfg,
		translator: translator,
		store:      store,
		fetcher:    fetcher,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// SetOutput redirects progress and warning output
func (p *Processor) SetOutput(out, errOut io.Writer) {
	p.out = out
	p.errOut = errOut
}

// FeedResult counts what happened to the item titles of one feed
type FeedResult struct {
	Name       string
	FeedTitle  string
	Titles     int // item titles in the document
	Translated int // new translations from the service
	Cached     int // titles resolved from the cache
	Fallbacks  int // failed translations kept in the original text
	Deferred   int // not attempted while the circuit breaker was open
	Skipped    int // too long, feed title, empty or not plain text
	Err        error
}

// TranslateFeed runs the full pipeline for one feed: load the cache, fetch,
// parse, translate item titles and write the translated document. A fetch,
// parse or cache error aborts the feed before any output is written.
func (p *Processor) TranslateFeed(ctx context.Context, entry registry.Entry) (*FeedResult, error) {
	result := &FeedResult{Name: entry.Name}
	fmt.Fprintf(p.out, "Translating feed: %s...\n", entry.Name)

	if !internal.ValidFeedName(entry.Name) {
		return result, fmt.Errorf("invalid feed name %q", entry.Name)
	}

	// Load already translated titles
	cache, err := p.store.Load(entry.Name)
	if err != nil {
		return result, fmt.Errorf("failed to load translation cache: %w", err)
	}

	// Fetch raw feed content first
	raw, err := p.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		return result, err
	}

	doc, err := feed.Parse(raw)
	if err != nil {
		return result, err
	}

	titles := doc.Titles()
	if len(titles) > 0 {
		// Don't translate the feed title
		result.FeedTitle = titles[0].Text()
		result.Titles = len(titles) - 1

		for _, node := range titles[1:] {
			if err := p.translateTitle(ctx, entry.Name, doc, node, cache, result); err != nil {
				return result, err
			}
		}
	}

	if err := internal.WriteFileAtomic(p.cfg.OutputFile(entry.Name), doc.Serialize(), 0644); err != nil {
		return result, fmt.Errorf("failed to write translated feed: %w", err)
	}

	return result, nil
}

// translateTitle resolves one item title through the cache or the
// translator, rewrites the node and persists the cache if it changed
func (p *Processor) translateTitle(ctx context.Context, feedName string, doc *feed.Document, node *feed.TitleNode, cache *translation.TranslationCache, result *FeedResult) error {
	text := node.Text()

	switch {
	// Long title elements are probably not article titles. Whitespace-only
	// titles are skipped too, never sent and never cached.
	case utf8.RuneCountInString(text) >= p.cfg.MaxTitleLength,
		text == result.FeedTitle,
		strings.TrimSpace(text) == "",
		!node.Rewritable():
		result.Skipped++
		return nil
	}

	translated, found := cache.Get(text)
	// An empty cached value is treated as a miss and translated again
	// instead of being turned into a fallback
	if found && translated != "" {
		result.Cached++
	} else {
		// Lookup missed, ask the translation service
		fmt.Fprintf(p.out, "  translating: %s\n", text)

		var err error
		translated, err = p.translator.TranslateTitle(ctx, text)
		if ctxErr := ctx.Err(); ctxErr != nil {
			// An interrupted run must not poison the cache
			return ctxErr
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// The service was never asked, leave the title for the next run
			fmt.Fprintf(p.errOut, "  Warning: not translating %q: %v\n", text, err)
			result.Deferred++
			return nil
		}

		if err != nil || translated == "" {
			fmt.Fprintf(p.errOut, "  Warning: keeping original title %q: %v\n", text, err)
			translated = text
			result.Fallbacks++
		} else {
			fmt.Fprintf(p.out, "  -> %s\n", translated)
			result.Translated++
		}

		cache.Add(text, translated)
		if err := p.store.Save(feedName, cache); err != nil {
			return fmt.Errorf("failed to save translation cache: %w", err)
		}
	}

	if translated != text {
		if err := doc.RewriteTitle(node, translated); err != nil {
			return fmt.Errorf("failed to rewrite title %q: %w", text, err)
		}
	}

	return nil
}

// ProcessBatch translates every entry in registry order. A failing feed is
// reported and the batch moves on to the next one.
func (p *Processor) ProcessBatch(ctx context.Context, entries []registry.Entry) []*FeedResult {
	results := make([]*FeedResult, 0, len(entries))

	// Track statistics
	processedCount := 0
	errorCount := 0
	translatedCount := 0
	fallbackCount := 0
	deferredCount := 0

	for i, entry := range entries {
		if ctx.Err() != nil {
			fmt.Fprintf(p.errOut, "Batch interrupted: %v\n", ctx.Err())
			break
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Name)

		result, err := p.TranslateFeed(ctx, entry)
		if err != nil {
			fmt.Fprintf(p.errOut, "Error translating feed '%s': %v\n", entry.Name, err)
			result.Err = err
			errorCount++
		} else {
			processedCount++
			fmt.Fprintf(p.out, "  %d titles: %d translated, %d cached, %d kept original, %d deferred, %d skipped\n",
				result.Titles, result.Translated, result.Cached, result.Fallbacks, result.Deferred, result.Skipped)
		}

		translatedCount += result.Translated
		fallbackCount += result.Fallbacks
		deferredCount += result.Deferred
		results = append(results, result)
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Translation Summary ===\n")
	fmt.Fprintf(p.out, "Total feeds: %d\n", len(entries))
	fmt.Fprintf(p.out, "Translated feeds: %d\n", processedCount)
	fmt.Fprintf(p.out, "New title translations: %d\n", translatedCount)
	if fallbackCount > 0 {
		fmt.Fprintf(p.out, "Titles kept in original: %d\n", fallbackCount)
	}
	if deferredCount > 0 {
		fmt.Fprintf(p.out, "Titles left for the next run: %d\n", deferredCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "=================================\n")

	return results
}
