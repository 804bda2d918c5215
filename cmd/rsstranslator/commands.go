package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"codeberg.org/snonux/rsstranslator/internal"
	"codeberg.org/snonux/rsstranslator/internal/archive"
	"codeberg.org/snonux/rsstranslator/internal/batch"
	"codeberg.org/snonux/rsstranslator/internal/cli"
	"codeberg.org/snonux/rsstranslator/internal/config"
	"codeberg.org/snonux/rsstranslator/internal/feed"
	"codeberg.org/snonux/rsstranslator/internal/models"
	"codeberg.org/snonux/rsstranslator/internal/opml"
	"codeberg.org/snonux/rsstranslator/internal/processor"
	"codeberg.org/snonux/rsstranslator/internal/registry"
	"codeberg.org/snonux/rsstranslator/internal/server"
	"codeberg.org/snonux/rsstranslator/internal/translation"
)

// loadRegistry loads the feed registry, seeding it with the default feeds
// and writing the OPML when it does not exist yet
func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg, seeded, err := registry.LoadOrSeed(cfg.RegistryFile)
	if err != nil {
		return nil, err
	}

	if seeded {
		fmt.Printf("Created feed registry with %d default feeds: %s\n", len(reg.Entries()), reg.Path())
		if err := opml.Write(cfg, reg.Entries()); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// newProcessor wires the translation pipeline for cfg. The returned close
// function releases the cache store.
func newProcessor(ctx context.Context, cfg *config.Config) (*processor.Processor, func(), error) {
	translator, err := translation.NewTranslator(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := translation.OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	fetcher := feed.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)
	proc := processor.NewProcessor(cfg, translator, store, fetcher)

	closeStore := func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close translation cache: %v\n", err)
		}
	}

	return proc, closeStore, nil
}

func runAll(ctx context.Context) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	proc, closeStore, err := newProcessor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Printf("Translating %d feeds to %s with %s (%s)\n", len(reg.Entries()), cfg.Language, cfg.Provider, cfg.Model)
	proc.ProcessBatch(ctx, reg.Entries())

	return ctx.Err()
}

func translateOne(ctx context.Context, name string) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	entry, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("feed %q is not registered in %s", name, reg.Path())
	}

	proc, closeStore, err := newProcessor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := proc.TranslateFeed(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to translate feed %s: %w", name, err)
	}

	fmt.Printf("Translated %d of %d titles (%d cached, %d kept original): %s\n",
		result.Translated, result.Titles, result.Cached, result.Fallbacks, cfg.OutputFile(name))
	return nil
}

// register probes url and adds it to reg. Returns the name used and whether
// the feed was new.
func register(ctx context.Context, fetcher *feed.Fetcher, reg *registry.Registry, name, url string, probe bool) (string, bool, error) {
	if reg.HasURL(url) {
		return name, false, nil
	}

	if probe {
		info, err := fetcher.Probe(ctx, url)
		if err != nil {
			return "", false, err
		}
		fmt.Printf("  Found %s feed %q with %d items\n", info.FeedType, info.Title, info.Items)

		if name == "" {
			name = internal.SanitizeFeedName(info.Title)
		}
	}

	if name == "" {
		return "", false, errors.New("no feed name given and none could be derived from the feed title")
	}

	added, err := reg.Add(name, url)
	return name, added, err
}

func addFeed(ctx context.Context, name, url string, probe bool) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	fetcher := feed.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)

	fmt.Printf("Adding feed: %s\n", url)
	name, added, err := register(ctx, fetcher, reg, name, url, probe)
	if err != nil {
		return fmt.Errorf("failed to add feed: %w", err)
	}
	if !added {
		fmt.Printf("Feed already registered: %s\n", url)
		return nil
	}

	fmt.Printf("Registered feed '%s': %s\n", name, cfg.FeedURL(name))
	return opml.Write(cfg, reg.Entries())
}

func addFromFile(ctx context.Context, path string, probe bool) error {
	lines, err := batch.ReadFeedFile(path)
	if err != nil {
		return err
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	fetcher := feed.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)

	// Track statistics
	addedCount := 0
	skippedCount := 0
	errorCount := 0

	for i, line := range lines {
		if ctx.Err() != nil {
			break
		}

		fmt.Printf("\nAdding %d/%d: %s\n", i+1, len(lines), line.URL)

		name, added, err := register(ctx, fetcher, reg, line.Name, line.URL, probe)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error adding %s (line %d): %v\n", line.URL, line.Line, err)
			errorCount++
		case !added:
			fmt.Printf("  Already registered\n")
			skippedCount++
		default:
			fmt.Printf("  Registered as '%s'\n", name)
			addedCount++
		}
	}

	fmt.Printf("\n=== Feed Import Summary ===\n")
	fmt.Printf("Feeds in file: %d\n", len(lines))
	fmt.Printf("Registered: %d\n", addedCount)
	fmt.Printf("Already registered: %d\n", skippedCount)
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
	}
	fmt.Printf("===========================\n")

	if addedCount == 0 {
		return ctx.Err()
	}
	return opml.Write(cfg, reg.Entries())
}

func buildRegistry() error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	reg, err := registry.Seed(cfg.RegistryFile)
	if err != nil {
		return err
	}
	fmt.Printf("Feed registry reset to %d default feeds: %s\n", len(reg.Entries()), reg.Path())

	if err := opml.Write(cfg, reg.Entries()); err != nil {
		return err
	}
	fmt.Printf("OPML written: %s\n", cfg.OPMLFile)
	return nil
}

func writeOPML() error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	reg, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	if err := opml.Write(cfg, reg.Entries()); err != nil {
		return err
	}
	fmt.Printf("OPML written with %d feeds: %s\n", len(reg.Entries()), cfg.OPMLFile)
	return nil
}

func serve(ctx context.Context) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	return server.Run(ctx, cfg, os.Stdout)
}

func listModels(ctx context.Context) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	return models.NewLister(cfg).ListAvailableModels(ctx)
}

func archiveCache() error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	if _, err := archive.ArchiveCache(cfg.DataDir, os.Stdout); err != nil {
		return fmt.Errorf("failed to archive translation cache: %w", err)
	}
	return nil
}
