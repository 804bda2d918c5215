// Package registry manages the list of feeds to translate. The list is a
// JSON object mapping feed names to source URLs; its key order is the order
// in which feeds are processed and listed in the OPML document.
package registry
