// Package server publishes the translated feeds, the OPML subscription list
// and the feed registry over HTTP.
package server
