// Package processor contains the core translation pipeline. For each
// registered feed it loads the translation cache, fetches and parses the
// feed, translates the item titles that are not cached yet and writes the
// rewritten document to the public directory. ProcessBatch runs the
// pipeline for every feed in registry order.
package processor
